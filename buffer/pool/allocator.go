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
	"github.com/nabbar/nexio/buffer"
	"github.com/nabbar/nexio/errors"
	"github.com/nabbar/nexio/refcount"
)

const defaultTrimInterval = 8192
const defaultQueueCap = 32

// PooledAllocator implements buffer.Allocator against an Arena fronted by
// a worker-local Cache. One PooledAllocator is typically created per
// event-loop worker so each gets its own cache without contending with
// the others beyond the arena's internal locks.
type PooledAllocator struct {
	arena  *Arena
	cache  *Cache
	leak   *refcount.Detector
	logger Logger
}

// NewPooledAllocator returns a PooledAllocator over arena with a fresh
// worker-local cache. level controls leak-detector sampling (LeakDisabled
// turns it off); logger may be nil, in which case leak findings are
// dropped instead of logged.
func NewPooledAllocator(arena *Arena, level refcount.LeakLevel, logger Logger) *PooledAllocator {
	p := &PooledAllocator{
		arena:  arena,
		cache:  NewCache(arena, defaultQueueCap, defaultTrimInterval),
		logger: logger,
	}
	p.leak = refcount.NewDetector(level, func(kind string, hints []string) {
		if p.logger != nil {
			p.logger.Warning("pooled buffer leaked without being released", hints, kind, arena.Name)
		}
	})
	return p
}

// Allocate implements buffer.Allocator, following the allocator's
// normalize -> cache -> arena path for tiny/small/normal requests, and an
// unpooled plain allocation for huge ones.
func (p *PooledAllocator) Allocate(initialCapacity, maxCapacity int) (buffer.ByteBuf, errors.Error) {
	class, size := Normalize(initialCapacity)

	if class == ClassHuge {
		data := make([]byte, size)
		return buffer.NewPooledTracked(data, size, func() {}, p.leak, "huge"), nil
	}

	if a, ok := p.cache.Get(size); ok {
		return p.wrap(size, a), nil
	}

	var (
		a   Allocation
		err errors.Error
	)

	if class == ClassNormal {
		a, err = p.arena.AllocateNormal(size)
	} else {
		a, err = p.arena.AllocateSubpage(size)
	}
	if err != nil {
		return nil, err
	}

	return p.wrap(size, a), nil
}

func (p *PooledAllocator) wrap(size int, a Allocation) buffer.ByteBuf {
	dealloc := func() {
		if !p.cache.Put(size, a) {
			_ = p.arena.Free(a.Chunk, a.Handle)
		}
	}
	return buffer.NewPooledTracked(a.Data, size, dealloc, p.leak, "pooled")
}
