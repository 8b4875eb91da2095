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

package promise_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/nexio/promise"
)

func TestPromise(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "promise Suite")
}

type inlineExecutor struct {
	loop bool
}

func (e *inlineExecutor) InEventLoop() bool    { return e.loop }
func (e *inlineExecutor) Execute(task func())  { task() }

var _ = Describe("Promise", func() {
	It("completes listeners added before completion", func() {
		p := promise.New(nil)
		got := false
		p.AddListener(func(f promise.Future) { got = true })
		p.SetSuccess()
		Expect(got).To(BeTrue())
		Expect(p.IsSuccess()).To(BeTrue())
	})

	It("runs listeners added after completion inline", func() {
		p := promise.New(nil)
		p.SetSuccess()
		got := false
		p.AddListener(func(f promise.Future) { got = true })
		Expect(got).To(BeTrue())
	})

	It("fails exactly once and exposes the cause", func() {
		p := promise.New(nil)
		cause := promise.ErrorCancelled.Error(nil)
		Expect(p.TryFailure(cause)).To(BeTrue())
		Expect(p.TryFailure(cause)).To(BeFalse())
		Expect(p.IsSuccess()).To(BeFalse())
		Expect(p.Cause()).ToNot(BeNil())
	})

	It("unblocks Sync once completed from another goroutine", func() {
		p := promise.New(nil)
		go func() {
			time.Sleep(10 * time.Millisecond)
			p.SetSuccess()
		}()
		Expect(p.Sync()).To(BeNil())
	})

	It("refuses to Sync from the owning event loop thread", func() {
		p := promise.New(&inlineExecutor{loop: true})
		err := p.Sync()
		Expect(err).ToNot(BeNil())
	})
})
