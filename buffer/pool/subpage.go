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

package pool

import "github.com/bits-and-blooms/bitset"

// Subpage is an 8 KiB page carved into equal-sized slots for tiny/small
// allocations. Pages dedicated to a given size class are linked into a
// doubly-linked pool list so the next allocation can reuse a partially
// full page without touching the chunk's tree.
type Subpage struct {
	chunk    *Chunk
	pageID   int // leaf node id in the chunk's tree
	elemSize int
	numSlots int
	free     *bitset.BitSet

	prev, next *Subpage
}

func newSubpage(c *Chunk, pageID int, elemSize int) *Subpage {
	n := PageSize / elemSize
	s := &Subpage{
		chunk:    c,
		pageID:   pageID,
		elemSize: elemSize,
		numSlots: n,
		free:     bitset.New(uint(n)),
	}
	s.free.ClearAll()
	for i := 0; i < n; i++ {
		s.free.Set(uint(i))
	}
	return s
}

// allocateSlot returns the lowest-index free slot, or -1 if full.
func (s *Subpage) allocateSlot() int {
	for i := uint(0); i < uint(s.numSlots); i++ {
		if s.free.Test(i) {
			s.free.Clear(i)
			return int(i)
		}
	}
	return -1
}

func (s *Subpage) freeSlot(slot int) {
	s.free.Set(uint(slot))
}

func (s *Subpage) isFull() bool {
	return s.free.None()
}

func (s *Subpage) isEmpty() bool {
	return s.free.Count() == uint(s.numSlots)
}

// offset returns this slot's byte offset within the chunk.
func (s *Subpage) offset(slot int) int {
	return (s.pageID-numLeaves)*PageSize + slot*s.elemSize
}
