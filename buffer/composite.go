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

package buffer

import (
	"sort"

	"github.com/nabbar/nexio/errors"
	"github.com/nabbar/nexio/refcount"
)

// component is one entry of a CompositeBuffer's component array: a child
// buffer plus its absolute offset and length within the composite's
// logical address space.
type component struct {
	buf    ByteBuf
	offset int
	length int
}

// CompositeBuffer logically concatenates N component buffers. Index
// lookup is O(log N) via binary search over component offsets.
type CompositeBuffer struct {
	comps []component
	rIdx  int
	wIdx  int

	counter *refcount.Counter
}

// NewComposite returns an empty CompositeBuffer.
func NewComposite() *CompositeBuffer {
	c := &CompositeBuffer{}
	c.counter = refcount.NewCounter(c.releaseAll)
	return c
}

func (c *CompositeBuffer) releaseAll() {
	for _, cm := range c.comps {
		_, _ = cm.buf.Release()
	}
}

func (c *CompositeBuffer) capacity() int {
	if len(c.comps) == 0 {
		return 0
	}
	last := c.comps[len(c.comps)-1]
	return last.offset + last.length
}

// AddComponent appends buf as a new component, taking ownership of one
// reference (the composite releases it on its own release). The writer
// cursor advances past the new component's bytes.
func (c *CompositeBuffer) AddComponent(buf ByteBuf) {
	off := c.capacity()
	length := buf.ReadableBytes()
	c.comps = append(c.comps, component{buf: buf, offset: off, length: length})
	c.wIdx = off + length
}

// RemoveComponent drops the component at the given index, renumbering the
// offsets of every following component.
func (c *CompositeBuffer) RemoveComponent(index int) errors.Error {
	if index < 0 || index >= len(c.comps) {
		return ErrorIndexOutOfBounds.Error(nil)
	}

	removed := c.comps[index]
	_, _ = removed.buf.Release()
	c.comps = append(c.comps[:index], c.comps[index+1:]...)

	off := 0
	for i := range c.comps {
		c.comps[i].offset = off
		off += c.comps[i].length
	}
	if c.wIdx > off {
		c.wIdx = off
	}
	if c.rIdx > c.wIdx {
		c.rIdx = c.wIdx
	}
	return nil
}

// find returns the component index containing absolute index idx via
// binary search over component offsets.
func (c *CompositeBuffer) find(idx int) int {
	return sort.Search(len(c.comps), func(i int) bool {
		return c.comps[i].offset+c.comps[i].length > idx
	})
}

func (c *CompositeBuffer) ReaderIndex() int { return c.rIdx }
func (c *CompositeBuffer) WriterIndex() int { return c.wIdx }
func (c *CompositeBuffer) Capacity() int    { return c.capacity() }

func (c *CompositeBuffer) ReadableBytes() int { return c.wIdx - c.rIdx }
func (c *CompositeBuffer) WritableBytes() int { return c.capacity() - c.wIdx }

func (c *CompositeBuffer) RefCnt() int32 { return c.counter.RefCnt() }

func (c *CompositeBuffer) Retain() (refcount.ReferenceCounted, errors.Error) {
	_, err := c.counter.Retain()
	return c, err
}

func (c *CompositeBuffer) Release() (bool, errors.Error) {
	return c.counter.Release()
}

// GetByte reads the byte at absolute index idx, delegating to the owning
// component after binary-searching for it.
func (c *CompositeBuffer) GetByte(idx int) (byte, errors.Error) {
	if idx < 0 || idx >= c.capacity() {
		return 0, ErrorIndexOutOfBounds.Error(nil)
	}
	i := c.find(idx)
	cm := c.comps[i]
	return cm.buf.GetByte(idx - cm.offset)
}

// Bytes flattens the readable region [reader, writer) across all
// components into one freshly allocated slice.
func (c *CompositeBuffer) Bytes() []byte {
	out := make([]byte, 0, c.ReadableBytes())
	remaining := c.ReadableBytes()
	idx := c.rIdx

	for remaining > 0 {
		i := c.find(idx)
		cm := c.comps[i]
		localOff := idx - cm.offset
		n := cm.length - localOff
		if n > remaining {
			n = remaining
		}
		tmp := make([]byte, n)
		_ = cm.buf.GetBytes(localOff, tmp)
		out = append(out, tmp...)
		idx += n
		remaining -= n
	}

	return out
}
