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

import "sync"

// cachedEntry is one recently-released allocation held by a Cache for
// fast reuse, avoiding the Arena lock on the common allocate/free path.
type cachedEntry struct {
	alloc Allocation
}

// sizeQueue is a small bounded MPSC queue of cached entries for one size
// class. Release (the producer side, potentially from any goroutine that
// drops the last reference) pushes; Get (the owning worker) pops.
type sizeQueue struct {
	mu      sync.Mutex
	entries []cachedEntry
	max     int
}

func newSizeQueue(max int) *sizeQueue {
	return &sizeQueue{max: max}
}

func (q *sizeQueue) push(a Allocation) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) >= q.max {
		return false
	}
	q.entries = append(q.entries, cachedEntry{alloc: a})
	return true
}

func (q *sizeQueue) pop() (Allocation, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return Allocation{}, false
	}
	n := len(q.entries) - 1
	e := q.entries[n]
	q.entries = q.entries[:n]
	return e.alloc, true
}

func (q *sizeQueue) trim(keep int) []Allocation {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) <= keep {
		return nil
	}
	dropped := make([]Allocation, 0, len(q.entries)-keep)
	for _, e := range q.entries[keep:] {
		dropped = append(dropped, e.alloc)
	}
	q.entries = q.entries[:keep]
	return dropped
}

// Cache is a per-worker front-end to an Arena: one small queue per size
// class, trimmed back to the arena every trimInterval allocations.
type Cache struct {
	arena *Arena

	mu       sync.Mutex
	queues   map[int]*sizeQueue
	queueCap int

	trimInterval int
	ops          int
}

// NewCache returns a Cache fronting arena. queueCap bounds each size
// class's queue depth; trimInterval is the allocation count between
// periodic trims (the allocator's default is 8192).
func NewCache(arena *Arena, queueCap, trimInterval int) *Cache {
	return &Cache{
		arena:        arena,
		queues:       make(map[int]*sizeQueue),
		queueCap:     queueCap,
		trimInterval: trimInterval,
	}
}

func (c *Cache) queueFor(size int) *sizeQueue {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.queues[size]
	if q == nil {
		q = newSizeQueue(c.queueCap)
		c.queues[size] = q
	}
	return q
}

// Get returns a cached allocation of exactly size bytes, or ok=false on a
// cache miss (the caller falls through to the arena).
func (c *Cache) Get(size int) (Allocation, bool) {
	return c.queueFor(size).pop()
}

// Put offers a released allocation back to the cache; returns false if
// the queue for that size is full (caller must free to the arena
// directly). Also triggers a periodic trim every trimInterval calls.
func (c *Cache) Put(size int, a Allocation) bool {
	ok := c.queueFor(size).push(a)

	c.mu.Lock()
	c.ops++
	due := c.trimInterval > 0 && c.ops >= c.trimInterval
	if due {
		c.ops = 0
	}
	c.mu.Unlock()

	if due {
		c.Trim()
	}

	return ok
}

// Trim releases every cached entry beyond a small per-class floor back to
// the arena, bounding memory held idle by an inactive worker.
func (c *Cache) Trim() {
	const keepPerClass = 4

	c.mu.Lock()
	queues := make([]*sizeQueue, 0, len(c.queues))
	for _, q := range c.queues {
		queues = append(queues, q)
	}
	c.mu.Unlock()

	for _, q := range queues {
		for _, a := range q.trim(keepPerClass) {
			_ = c.arena.Free(a.Chunk, a.Handle)
		}
	}
}
