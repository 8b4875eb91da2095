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

package outbound

import (
	"sync"
	"sync/atomic"

	"github.com/nabbar/nexio/buffer"
	"github.com/nabbar/nexio/errors"
	errpool "github.com/nabbar/nexio/errors/pool"
	"github.com/nabbar/nexio/promise"
)

type entry struct {
	buf      buffer.ByteBuf
	size     int64
	progress int64
	prom     promise.Promise
	next     *entry
}

type buf struct {
	mu sync.Mutex

	flushedHead *entry
	flushedTail *entry
	flushedLen  int

	unflushedHead *entry
	unflushedTail *entry

	pending atomic.Int64

	low  int64
	high int64

	writable atomic.Bool
	onWrite  WritabilityListener

	closed bool
	inFail bool
}

// New returns an empty Buffer using the default high/low watermarks
// (64 KiB / 32 KiB).
func New() Buffer {
	b := &buf{low: DefaultLowWaterMark, high: DefaultHighWaterMark}
	b.writable.Store(true)
	return b
}

func (b *buf) AddMessage(bb buffer.ByteBuf, size int64, prom promise.Promise) errors.Error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrorClosedChannel.Error(nil)
	}

	e := &entry{buf: bb, size: size, prom: prom}
	if b.unflushedTail == nil {
		b.unflushedHead, b.unflushedTail = e, e
	} else {
		b.unflushedTail.next = e
		b.unflushedTail = e
	}
	b.mu.Unlock()

	b.pending.Add(size)
	b.updateWritability()
	return nil
}

func (b *buf) AddFlush() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.unflushedHead == nil {
		return
	}

	if b.flushedTail == nil {
		b.flushedHead = b.unflushedHead
	} else {
		b.flushedTail.next = b.unflushedHead
	}
	b.flushedTail = b.unflushedTail

	n := b.unflushedHead
	for n != nil {
		b.flushedLen++
		n = n.next
	}

	b.unflushedHead, b.unflushedTail = nil, nil
}

func (b *buf) Current() buffer.ByteBuf {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.flushedHead == nil {
		return nil
	}
	return b.flushedHead.buf
}

func (b *buf) Progress(n int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.flushedHead != nil {
		b.flushedHead.progress += n
	}
}

func (b *buf) Remove() bool {
	b.mu.Lock()
	e := b.flushedHead
	if e == nil {
		b.mu.Unlock()
		return false
	}
	b.flushedHead = e.next
	if b.flushedHead == nil {
		b.flushedTail = nil
	}
	b.flushedLen--
	b.mu.Unlock()

	remaining := e.size - e.progress
	if remaining > 0 {
		b.pending.Add(-remaining)
	}
	if e.prom != nil {
		e.prom.TrySuccess()
	}
	if e.buf != nil {
		_, _ = e.buf.Release()
	}
	b.updateWritability()
	return true
}

func (b *buf) RemoveBytes(n int64) {
	for n > 0 {
		b.mu.Lock()
		e := b.flushedHead
		b.mu.Unlock()
		if e == nil {
			return
		}

		avail := e.size - e.progress
		if n < avail {
			b.Progress(n)
			b.pending.Add(-n)
			b.updateWritability()
			return
		}

		n -= avail
		b.Remove()
	}
}

func (b *buf) NioBuffers(maxCount int, maxBytes int64) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([][]byte, 0, maxCount)
	var total int64
	n := b.flushedHead
	for n != nil && len(out) < maxCount {
		data := n.buf.Bytes()
		if int64(n.progress) > 0 && int64(n.progress) < int64(len(data)) {
			data = data[n.progress:]
		}
		if total+int64(len(data)) > maxBytes && len(out) > 0 {
			break
		}
		out = append(out, data)
		total += int64(len(data))
		n = n.next
	}
	return out
}

func (b *buf) FailFlushed(cause errors.Error) {
	b.mu.Lock()
	if b.inFail {
		b.mu.Unlock()
		return
	}
	b.inFail = true
	head := b.flushedHead
	b.flushedHead, b.flushedTail = nil, nil
	b.flushedLen = 0
	b.mu.Unlock()

	pool := errpool.New()
	for e := head; e != nil; e = e.next {
		remaining := e.size - e.progress
		if remaining > 0 {
			b.pending.Add(-remaining)
		}
		if e.prom != nil {
			e.prom.TryFailure(cause)
		}
		if e.buf != nil {
			_, _ = e.buf.Release()
		}
		if cause != nil {
			pool.Add(cause)
		}
	}

	b.mu.Lock()
	b.inFail = false
	b.mu.Unlock()

	b.updateWritability()
}

func (b *buf) Close() {
	b.FailFlushed(ErrorClosedChannel.Error(nil))

	b.mu.Lock()
	b.closed = true
	head := b.unflushedHead
	b.unflushedHead, b.unflushedTail = nil, nil
	b.mu.Unlock()

	for e := head; e != nil; e = e.next {
		b.pending.Add(-(e.size - e.progress))
		if e.prom != nil {
			e.prom.TryFailure(ErrorClosedChannel.Error(nil))
		}
		if e.buf != nil {
			_, _ = e.buf.Release()
		}
	}
	b.updateWritability()
}

func (b *buf) TotalPendingBytes() int64 {
	return b.pending.Load()
}

func (b *buf) IsWritable() bool {
	return b.writable.Load()
}

func (b *buf) SetWatermarks(low, high int64) errors.Error {
	if low < 0 || high <= low {
		return ErrorIllegalArgument.Error(nil)
	}
	b.mu.Lock()
	b.low, b.high = low, high
	b.mu.Unlock()
	b.updateWritability()
	return nil
}

func (b *buf) OnWritabilityChanged(l WritabilityListener) {
	b.mu.Lock()
	b.onWrite = l
	b.mu.Unlock()
}

func (b *buf) updateWritability() {
	b.mu.Lock()
	pending := b.pending.Load()
	high, low := b.high, b.low
	l := b.onWrite
	b.mu.Unlock()

	if pending > high && b.writable.CompareAndSwap(true, false) {
		if l != nil {
			l(false)
		}
		return
	}
	if pending <= low && b.writable.CompareAndSwap(false, true) {
		if l != nil {
			l(true)
		}
	}
}
