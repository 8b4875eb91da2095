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

// Package pool implements the jemalloc-inspired pooled memory arena: fixed
// 16 MiB chunks subdivided by a binary tree into 8 KiB pages, subpage
// slots for tiny/small requests, usage-band chunk lists, and a per-thread
// MPSC cache in front of the arena lock.
package pool

import (
	"sync"

	"github.com/nabbar/nexio/errors"
)

// Allocation is the result of a pooled allocate call: the storage slice
// backing the request plus the handle needed to free it later.
type Allocation struct {
	Handle Handle
	Chunk  *Chunk // nil for huge (unpooled) allocations
	Data   []byte
}

// Arena is a thread-independent allocator unit owning a set of chunks. It
// is safe for concurrent use; subpage-pool heads and chunk-list bands are
// each guarded by the arena's own lock, as the spec's concurrency model
// requires (no I/O ever happens under this lock).
type Arena struct {
	mu sync.Mutex

	bands      [6]*Chunk // head of each band's ring, keyed by `band`
	subpages   map[int]*Subpage // key: elemSize, head of pool list

	Name string
}

// NewArena returns an empty Arena.
func NewArena(name string) *Arena {
	return &Arena{
		Name:     name,
		subpages: make(map[int]*Subpage),
	}
}

func (a *Arena) bandHead(b band) *Chunk      { return a.bands[b] }
func (a *Arena) setBandHead(b band, c *Chunk) { a.bands[b] = c }

func (a *Arena) unlinkChunk(c *Chunk) {
	if a.bands[c.band] == c {
		a.setBandHead(c.band, c.next)
	}
	if c.prev != nil {
		c.prev.next = c.next
	}
	if c.next != nil {
		c.next.prev = c.prev
	}
	c.prev, c.next = nil, nil
}

func (a *Arena) linkChunk(c *Chunk, b band) {
	c.band = b
	c.prev = nil
	c.next = a.bandHead(b)
	if c.next != nil {
		c.next.prev = c
	}
	a.setBandHead(b, c)
}

func (a *Arena) migrate(c *Chunk) {
	next := bandFor(c.usagePercent())
	if next == c.band {
		return
	}
	a.unlinkChunk(c)
	if next == bandQInit && c.usedBytes == 0 {
		// falls below q000's floor: destroy rather than relink.
		return
	}
	a.linkChunk(c, next)
}

// AllocateNormal allocates a whole-page-or-larger block by walking the
// chunk lists in the order q050, q025, q000, qInit, q075, creating a new
// chunk on total miss.
func (a *Arena) AllocateNormal(size int) (Allocation, errors.Error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	depth := depthForSize(size)

	for _, b := range allocationOrder {
		for c := a.bandHead(b); c != nil; c = c.next {
			if id, ok := c.allocateNode(depth); ok {
				a.migrate(c)
				off, sz := c.nodeOffset(id)
				return Allocation{
					Handle: encodeHandle(id, -1),
					Chunk:  c,
					Data:   c.data[off : off+sz],
				}, nil
			}
		}
	}

	c := newChunk()
	id, ok := c.allocateNode(depth)
	if !ok {
		return Allocation{}, ErrorOutOfMemory.Error(nil)
	}
	a.linkChunk(c, bandQInit)
	a.migrate(c)
	off, sz := c.nodeOffset(id)
	return Allocation{
		Handle: encodeHandle(id, -1),
		Chunk:  c,
		Data:   c.data[off : off+sz],
	}, nil
}

// AllocateSubpage allocates a tiny/small slot of exactly elemSize bytes,
// reusing a partially-used page of that size class before carving a new
// one from a whole page.
func (a *Arena) AllocateSubpage(elemSize int) (Allocation, errors.Error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if head := a.subpages[elemSize]; head != nil {
		for s := head; s != nil; s = s.next {
			if !s.isFull() {
				slot := s.allocateSlot()
				off := s.offset(slot)
				return Allocation{
					Handle: encodeHandle(s.pageID, slot),
					Chunk:  s.chunk,
					Data:   s.chunk.data[off : off+elemSize],
				}, nil
			}
		}
	}

	alloc, err := a.allocatePageLocked()
	if err != nil {
		return Allocation{}, err
	}

	s := newSubpage(alloc.Chunk, alloc.Handle.nodeID(), elemSize)
	alloc.Chunk.pages[s.pageID-numLeaves] = s

	head := a.subpages[elemSize]
	s.next = head
	if head != nil {
		head.prev = s
	}
	a.subpages[elemSize] = s

	slot := s.allocateSlot()
	off := s.offset(slot)
	return Allocation{
		Handle: encodeHandle(s.pageID, slot),
		Chunk:  s.chunk,
		Data:   s.chunk.data[off : off+elemSize],
	}, nil
}

func (a *Arena) allocatePageLocked() (Allocation, errors.Error) {
	for _, b := range allocationOrder {
		for c := a.bandHead(b); c != nil; c = c.next {
			if id, ok := c.allocateNode(maxOrder); ok {
				a.migrate(c)
				return Allocation{Handle: encodeHandle(id, -1), Chunk: c}, nil
			}
		}
	}

	c := newChunk()
	id, ok := c.allocateNode(maxOrder)
	if !ok {
		return Allocation{}, ErrorOutOfMemory.Error(nil)
	}
	a.linkChunk(c, bandQInit)
	a.migrate(c)
	return Allocation{Handle: encodeHandle(id, -1), Chunk: c}, nil
}

// Free releases a handle back to its chunk. If a subpage slot empties its
// page entirely, the page itself is returned to the chunk tree and
// unlinked from the size-class pool list.
func (a *Arena) Free(c *Chunk, h Handle) errors.Error {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := h.nodeID()

	if h.IsSubpage() {
		s := c.pages[id-numLeaves]
		if s == nil {
			return ErrorDoubleFree.Error(nil)
		}
		s.freeSlot(h.slot())

		if s.isEmpty() {
			a.unlinkSubpage(s)
			c.pages[id-numLeaves] = nil
			c.freeNode(id)
			a.migrate(c)
		}
		return nil
	}

	c.freeNode(id)
	a.migrate(c)
	return nil
}

func (a *Arena) unlinkSubpage(s *Subpage) {
	head := a.subpages[s.elemSize]
	if head == s {
		a.subpages[s.elemSize] = s.next
	}
	if s.prev != nil {
		s.prev.next = s.next
	}
	if s.next != nil {
		s.next.prev = s.prev
	}
}
