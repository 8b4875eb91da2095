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

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
)

const (
	pageShift = 13
	// PageSize is the fixed leaf granularity of a chunk's binary tree.
	PageSize = 1 << pageShift

	maxOrder = 11
	// ChunkSize is the default arena chunk size: a full binary tree of
	// height maxOrder over PageSize leaves.
	ChunkSize = PageSize << maxOrder

	numLeaves  = 1 << maxOrder
	treeSize   = 1 << (maxOrder + 1)
	unusable   = int8(maxOrder + 1)
)

// Chunk is a single 16 MiB arena region subdivided by a full binary tree
// into 8 KiB pages. memoryMap[id] holds the shallowest depth at which a
// completely free node still exists below id; unusable once the node (or
// everything below it) is fully allocated.
type Chunk struct {
	mu sync.Mutex

	memoryMap []int8
	depthMap  []int8

	// leafUsed records, at page granularity, which leaves are currently
	// handed out as single pages. Usage% accounting uses usedBytes, and
	// page allocation walks memoryMap; neither reads this bitmap.
	leafUsed *bitset.BitSet

	pages [numLeaves]*Subpage

	// data is the chunk's backing storage; pooled ByteBuf instances are
	// sliced from it directly, so freeing a handle never copies.
	data []byte

	usedBytes int

	// band-list linkage, maintained by Arena.
	prev, next *Chunk
	band       band
}

func newChunk() *Chunk {
	c := &Chunk{
		memoryMap: make([]int8, treeSize),
		depthMap:  make([]int8, treeSize),
		leafUsed:  bitset.New(numLeaves),
		data:      make([]byte, ChunkSize),
	}

	for d := 0; d <= maxOrder; d++ {
		lo := 1 << uint(d)
		hi := 1 << uint(d+1)
		for id := lo; id < hi; id++ {
			c.depthMap[id] = int8(d)
			c.memoryMap[id] = int8(d)
		}
	}

	return c
}

func depthSize(depth int8) int {
	return ChunkSize >> uint(depth)
}

// allocateNode walks the tree top-down, taking the leftmost free node at
// the requested depth, marking it and its ancestors in-use.
func (c *Chunk) allocateNode(depth int8) (int, bool) {
	if c.memoryMap[1] > depth {
		return 0, false
	}

	id := 1
	for c.depthMap[id] != depth {
		left := id * 2
		right := id*2 + 1
		if c.memoryMap[left] <= depth {
			id = left
		} else if c.memoryMap[right] <= depth {
			id = right
		} else {
			return 0, false
		}
	}

	c.memoryMap[id] = unusable
	c.bubbleUp(id)

	if depth == maxOrder {
		c.leafUsed.Set(uint(id - numLeaves))
	}

	c.usedBytes += depthSize(depth)
	return id, true
}

func (c *Chunk) freeNode(id int) {
	depth := c.depthMap[id]
	c.usedBytes -= depthSize(depth)

	c.memoryMap[id] = depth
	c.bubbleUp(id)

	if depth == maxOrder {
		c.leafUsed.Clear(uint(id - numLeaves))
	}
}

func (c *Chunk) bubbleUp(id int) {
	for id > 1 {
		parent := id / 2
		sibling := id ^ 1
		m := c.memoryMap[id]
		if c.memoryMap[sibling] < m {
			m = c.memoryMap[sibling]
		}
		c.memoryMap[parent] = m
		id = parent
	}
}

// nodeOffset returns the byte offset and size of the block addressed by a
// full-page or normal-block node id.
func (c *Chunk) nodeOffset(id int) (offset, size int) {
	depth := c.depthMap[id]
	size = depthSize(depth)
	offset = (id - (1 << uint(depth))) * size
	return
}

// usagePercent returns the chunk's current usage as an integer 0..100,
// used to decide its band-list membership.
func (c *Chunk) usagePercent() int {
	return c.usedBytes * 100 / ChunkSize
}

// depthForSize returns the smallest tree depth whose node size is >= the
// requested byte size (size must already be page-aligned and <= ChunkSize).
func depthForSize(size int) int8 {
	pages := (size + PageSize - 1) / PageSize
	blockPages := 1
	for blockPages < pages {
		blockPages <<= 1
	}
	depth := maxOrder
	for blockPages > 1 {
		blockPages >>= 1
		depth--
	}
	return int8(depth)
}
