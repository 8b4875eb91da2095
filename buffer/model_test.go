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

package buffer_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/nexio/buffer"
)

func TestBuffer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "buffer Suite")
}

var _ = Describe("ByteBuf cursors", func() {
	It("writes then reads the same value for every integer width", func() {
		b := buffer.New(0, 1024)

		Expect(b.WriteByte(0x42)).To(BeNil())
		Expect(b.WriteUint16(0xBEEF)).To(BeNil())
		Expect(b.WriteUint32(0xDEADBEEF)).To(BeNil())
		Expect(b.WriteUint64(0x0102030405060708)).To(BeNil())
		Expect(b.WriteInt32LE(-12345)).To(BeNil())
		Expect(b.WriteFloat64(3.14159)).To(BeNil())

		v1, e1 := b.ReadByte()
		Expect(e1).To(BeNil())
		Expect(v1).To(Equal(byte(0x42)))

		v2, e2 := b.ReadUint16()
		Expect(e2).To(BeNil())
		Expect(v2).To(Equal(uint16(0xBEEF)))

		v3, e3 := b.ReadUint32()
		Expect(e3).To(BeNil())
		Expect(v3).To(Equal(uint32(0xDEADBEEF)))

		v4, e4 := b.ReadUint64()
		Expect(e4).To(BeNil())
		Expect(v4).To(Equal(uint64(0x0102030405060708)))

		v5, e5 := b.ReadInt32LE()
		Expect(e5).To(BeNil())
		Expect(v5).To(Equal(int32(-12345)))

		v6, e6 := b.ReadFloat64()
		Expect(e6).To(BeNil())
		Expect(v6).To(BeNumerically("~", 3.14159, 0.00001))
	})

	It("fails out-of-bounds access", func() {
		b := buffer.New(4, 4)
		_, err := b.GetByte(10)
		Expect(err).ToNot(BeNil())
	})

	It("grows writable capacity on demand", func() {
		b := buffer.New(1, 1024)
		Expect(b.Capacity()).To(Equal(1))
		Expect(b.WriteBytes(make([]byte, 100))).To(BeNil())
		Expect(b.Capacity()).To(BeNumerically(">=", 101))
	})

	It("discards read bytes and rewinds cursors", func() {
		b := buffer.New(0, 16)
		_ = b.WriteBytes([]byte("hello"))
		_, _ = b.ReadBytes(2)
		b.DiscardReadBytes()
		Expect(b.ReaderIndex()).To(Equal(0))
		Expect(b.ReadableBytes()).To(Equal(3))
	})
})

var _ = Describe("Derived views", func() {
	It("slice reads the same bytes as the parent at the same offset", func() {
		b := buffer.New(0, 16)
		_ = b.WriteBytes([]byte("0123456789"))

		s, err := b.Slice(2, 4)
		Expect(err).To(BeNil())

		for i := 0; i < 4; i++ {
			pv, _ := b.GetByte(2 + i)
			sv, _ := s.GetByte(i)
			Expect(sv).To(Equal(pv))
		}
	})

	It("copy produces an independent buffer with identical content", func() {
		b := buffer.New(0, 16)
		_ = b.WriteBytes([]byte("abcdef"))

		c := b.Copy()
		Expect(c.Bytes()).To(Equal(b.Bytes()))

		_ = c.WriteByte('Z')
		Expect(c.Bytes()).ToNot(Equal(b.Bytes()))
	})
})

var _ = Describe("reference counting", func() {
	It("fails accessors once released", func() {
		b := buffer.New(0, 16)
		_, err := b.Release()
		Expect(err).To(BeNil())

		_, gerr := b.GetByte(0)
		Expect(gerr).ToNot(BeNil())
	})
})

var _ = Describe("CompositeBuffer", func() {
	It("reads across component boundaries via binary search", func() {
		c := buffer.NewComposite()
		a := buffer.New(0, 8)
		_ = a.WriteBytes([]byte("abc"))
		b := buffer.New(0, 8)
		_ = b.WriteBytes([]byte("def"))

		c.AddComponent(a)
		c.AddComponent(b)

		Expect(c.Capacity()).To(Equal(6))
		v, err := c.GetByte(4)
		Expect(err).To(BeNil())
		Expect(v).To(Equal(byte('e')))
	})
})
