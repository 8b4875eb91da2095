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

package pool_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/nexio/buffer/pool"
	"github.com/nabbar/nexio/logger"
	"github.com/nabbar/nexio/refcount"
)

func TestPool(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "pool Suite")
}

var _ = Describe("Normalize", func() {
	It("rounds tiny sizes up to a multiple of 16", func() {
		class, size := pool.Normalize(15)
		Expect(class).To(Equal(pool.ClassTiny))
		Expect(size).To(Equal(16))
	})

	It("rounds small sizes up to a power of two", func() {
		class, size := pool.Normalize(511)
		Expect(class).To(Equal(pool.ClassSmall))
		Expect(size).To(Equal(512))
	})

	It("classifies exactly one page as normal", func() {
		class, size := pool.Normalize(pool.PageSize)
		Expect(class).To(Equal(pool.ClassNormal))
		Expect(size).To(Equal(pool.PageSize))
	})

	It("rounds a page-plus-one up to the next power-of-two page count", func() {
		class, size := pool.Normalize(pool.PageSize + 1)
		Expect(class).To(Equal(pool.ClassNormal))
		Expect(size).To(Equal(pool.PageSize * 2))
	})

	It("classifies anything bigger than a chunk as huge", func() {
		class, _ := pool.Normalize(pool.ChunkSize + 1)
		Expect(class).To(Equal(pool.ClassHuge))
	})
})

var _ = Describe("Arena", func() {
	It("allocates and frees a normal block without error", func() {
		a := pool.NewArena("test")
		alloc, err := a.AllocateNormal(pool.PageSize)
		Expect(err).To(BeNil())
		Expect(len(alloc.Data)).To(Equal(pool.PageSize))

		ferr := a.Free(alloc.Chunk, alloc.Handle)
		Expect(ferr).To(BeNil())
	})

	It("carves subpage slots from a shared page", func() {
		a := pool.NewArena("test")

		first, err := a.AllocateSubpage(64)
		Expect(err).To(BeNil())
		second, err := a.AllocateSubpage(64)
		Expect(err).To(BeNil())

		Expect(first.Chunk).To(BeIdenticalTo(second.Chunk))
		Expect(first.Handle).ToNot(Equal(second.Handle))
	})
})

var _ = Describe("PooledAllocator", func() {
	It("reuses the released storage for the next same-size allocation", func() {
		arena := pool.NewArena("test")
		alloc := pool.NewPooledAllocator(arena, refcount.LeakSimple, logger.New(context.Background()))

		b1, err := alloc.Allocate(128, 128)
		Expect(err).To(BeNil())
		Expect(b1.SetByte(0, 0x5A)).To(BeNil())
		_, rerr := b1.Release()
		Expect(rerr).To(BeNil())

		b2, err := alloc.Allocate(128, 128)
		Expect(err).To(BeNil())
		Expect(b2.Capacity()).To(Equal(128))
		v, gerr := b2.GetByte(0)
		Expect(gerr).To(BeNil())
		Expect(v).To(Equal(byte(0x5A)))
	})
})
