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

package outbound_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/nexio/buffer"
	"github.com/nabbar/nexio/outbound"
	"github.com/nabbar/nexio/promise"
)

func TestOutbound(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "outbound Suite")
}

var _ = Describe("Buffer", func() {
	It("completes a message's promise on remove", func() {
		b := outbound.New()
		bb := buffer.NewFrom([]byte("hello"))
		p := promise.New(nil)

		Expect(b.AddMessage(bb, 5, p)).To(BeNil())
		b.AddFlush()
		Expect(b.Current()).ToNot(BeNil())

		b.Remove()
		Expect(p.IsSuccess()).To(BeTrue())
		Expect(b.TotalPendingBytes()).To(Equal(int64(0)))
	})

	It("consumes bytes across entry boundaries", func() {
		b := outbound.New()
		p1 := promise.New(nil)
		p2 := promise.New(nil)

		Expect(b.AddMessage(buffer.NewFrom([]byte("abc")), 3, p1)).To(BeNil())
		Expect(b.AddMessage(buffer.NewFrom([]byte("de")), 2, p2)).To(BeNil())
		b.AddFlush()

		b.RemoveBytes(4)
		Expect(p1.IsSuccess()).To(BeTrue())
		Expect(p2.IsDone()).To(BeFalse())
		Expect(b.TotalPendingBytes()).To(Equal(int64(1)))
	})

	It("flips writability crossing the high then low watermark", func() {
		b := outbound.New()
		Expect(b.SetWatermarks(10, 20)).To(BeNil())

		var states []bool
		b.OnWritabilityChanged(func(w bool) { states = append(states, w) })

		p := promise.New(nil)
		big := make([]byte, 25)
		Expect(b.AddMessage(buffer.NewFrom(big), 25, p)).To(BeNil())
		Expect(b.IsWritable()).To(BeFalse())

		b.AddFlush()
		b.RemoveBytes(20)
		Expect(b.IsWritable()).To(BeTrue())
		Expect(states).To(Equal([]bool{false, true}))
	})

	It("fails flushed entries and rejects further writes once closed", func() {
		b := outbound.New()
		p := promise.New(nil)
		Expect(b.AddMessage(buffer.NewFrom([]byte("x")), 1, p)).To(BeNil())
		b.AddFlush()

		b.Close()
		Expect(p.IsSuccess()).To(BeFalse())
		Expect(p.IsDone()).To(BeTrue())

		err := b.AddMessage(buffer.NewFrom([]byte("y")), 1, promise.New(nil))
		Expect(err).ToNot(BeNil())
	})
})
