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

package refcount

import (
	"sync/atomic"

	"github.com/nabbar/nexio/errors"
)

const maxRefCount = 1<<31 - 1

// Counter is a standalone atomic reference counter. Buffers and other
// participants embed one and delegate ReferenceCounted to it.
type Counter struct {
	n       atomic.Int32
	dealloc Deallocator
	tracker *tracker
}

// NewCounter returns a Counter initialized at 1, invoking dealloc exactly
// once when the count reaches zero.
func NewCounter(dealloc Deallocator) *Counter {
	c := &Counter{dealloc: dealloc}
	c.n.Store(1)
	return c
}

// NewCounterTracked is like NewCounter but attaches the given detector for
// leak sampling; detector may be nil.
func NewCounterTracked(dealloc Deallocator, d *Detector, kind string) *Counter {
	c := NewCounter(dealloc)
	if d != nil {
		c.tracker = d.sample(kind)
	}
	return c
}

func (c *Counter) RefCnt() int32 {
	return c.n.Load()
}

func (c *Counter) Retain() (*Counter, errors.Error) {
	return c.RetainN(1)
}

func (c *Counter) RetainN(n int32) (*Counter, errors.Error) {
	for {
		cur := c.n.Load()
		if cur <= 0 {
			return c, ErrorIllegalReferenceCount.Error(nil)
		}
		nxt := cur + n
		if nxt < cur {
			return c, ErrorOverflow.Error(nil)
		}
		if c.n.CompareAndSwap(cur, nxt) {
			if c.tracker != nil {
				c.tracker.record("retain")
			}
			return c, nil
		}
	}
}

func (c *Counter) Release() (bool, errors.Error) {
	return c.ReleaseN(1)
}

func (c *Counter) ReleaseN(n int32) (bool, errors.Error) {
	for {
		cur := c.n.Load()
		if cur <= 0 {
			return false, ErrorUnderflow.Error(nil)
		}
		nxt := cur - n
		if nxt < 0 {
			return false, ErrorUnderflow.Error(nil)
		}
		if c.n.CompareAndSwap(cur, nxt) {
			if c.tracker != nil {
				c.tracker.record("release")
			}
			if nxt == 0 {
				if c.tracker != nil {
					c.tracker.close()
				}
				if c.dealloc != nil {
					c.dealloc()
				}
				return true, nil
			}
			return false, nil
		}
	}
}

func (c *Counter) Touch(hint interface{}) {
	if c.tracker != nil {
		c.tracker.touch(hint)
	}
}
