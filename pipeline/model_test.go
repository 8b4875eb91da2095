/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package pipeline_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/nexio/pipeline"
	"github.com/nabbar/nexio/promise"
)

func TestPipeline(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "pipeline Suite")
}

type noopUnsafe struct {
	wrote    []interface{}
	flushed  int
	writeErr error
}

func (u *noopUnsafe) Bind(string, promise.Promise)       {}
func (u *noopUnsafe) Connect(string, promise.Promise)    {}
func (u *noopUnsafe) Disconnect(promise.Promise)         {}
func (u *noopUnsafe) Close(promise.Promise)              {}
func (u *noopUnsafe) Deregister(promise.Promise)         {}
func (u *noopUnsafe) BeginRead()                         {}
func (u *noopUnsafe) Write(msg interface{}, p promise.Promise) {
	u.wrote = append(u.wrote, msg)
	if p != nil {
		p.SetSuccess()
	}
}
func (u *noopUnsafe) Flush() { u.flushed++ }

type recordingHandler struct {
	pipeline.InboundAdapter
	reads []interface{}
}

func (h *recordingHandler) ChannelRead(ctx pipeline.HandlerContext, msg interface{}) {
	h.reads = append(h.reads, msg)
	ctx.FireChannelRead(msg)
}

var _ = Describe("Pipeline", func() {
	It("propagates channelRead through an added handler to the default tail", func() {
		unsafe := &noopUnsafe{}
		p := pipeline.New(unsafe, pipeline.NewDefaultTail(nil), nil)

		h := &recordingHandler{}
		Expect(p.AddLast("recorder", h)).To(BeNil())

		p.FireChannelRead("hello")
		Expect(h.reads).To(Equal([]interface{}{"hello"}))
	})

	It("routes an outbound write through to the Unsafe adapter", func() {
		unsafe := &noopUnsafe{}
		p := pipeline.New(unsafe, pipeline.NewDefaultTail(nil), nil)

		prom := promise.New(nil)
		p.Write("payload", prom)
		Expect(unsafe.wrote).To(Equal([]interface{}{"payload"}))
		Expect(prom.IsSuccess()).To(BeTrue())
	})

	It("calls handlerAdded immediately once the pipeline is registered", func() {
		unsafe := &noopUnsafe{}
		p := pipeline.New(unsafe, pipeline.NewDefaultTail(nil), nil)
		p.OnRegistered()

		h := &recordingHandler{}
		Expect(p.AddLast("late", h)).To(BeNil())
		Expect(p.Context("late").State()).To(Equal(pipeline.StateAddComplete))
	})

	It("rejects adding two handlers under the same name", func() {
		unsafe := &noopUnsafe{}
		p := pipeline.New(unsafe, pipeline.NewDefaultTail(nil), nil)

		Expect(p.AddLast("dup", &recordingHandler{})).To(BeNil())
		Expect(p.AddLast("dup", &recordingHandler{})).ToNot(BeNil())
	})

	It("removes a handler and skips it on the next propagation", func() {
		unsafe := &noopUnsafe{}
		p := pipeline.New(unsafe, pipeline.NewDefaultTail(nil), nil)

		h := &recordingHandler{}
		Expect(p.AddLast("removable", h)).To(BeNil())
		Expect(p.Remove("removable")).To(BeNil())

		p.FireChannelRead("x")
		Expect(h.reads).To(BeEmpty())
	})
})
