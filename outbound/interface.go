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

// Package outbound implements the per-channel pending-write queue: the
// unflushed/flushed entry list, watermark-driven writability, and
// scatter-gather access to the flushed entries' backing buffers.
package outbound

import (
	"github.com/nabbar/nexio/buffer"
	"github.com/nabbar/nexio/errors"
	"github.com/nabbar/nexio/promise"
)

const (
	DefaultHighWaterMark = 64 * 1024
	DefaultLowWaterMark  = 32 * 1024
)

// WritabilityListener is invoked whenever crossing a watermark flips the
// buffer's writability.
type WritabilityListener func(writable bool)

// Buffer is one channel's outbound write queue.
type Buffer interface {
	// AddMessage appends buf (already retained by the caller) to the
	// unflushed section, to be completed via prom once written.
	AddMessage(buf buffer.ByteBuf, size int64, prom promise.Promise) errors.Error

	// AddFlush moves every unflushed entry into the flushed section,
	// making them eligible for draining.
	AddFlush()

	// Current returns the head flushed entry's buffer, or nil if empty.
	Current() buffer.ByteBuf

	// Progress advances the head flushed entry's progress counter by n
	// bytes, without removing it.
	Progress(n int64)

	// Remove pops the head flushed entry, completes its promise with
	// success and releases its buffer.
	Remove() bool

	// RemoveBytes consumes n bytes across one or more head flushed
	// entries, completing and releasing any entry fully consumed.
	RemoveBytes(n int64)

	// NioBuffers returns up to maxCount flushed entries' backing byte
	// slices, stopping once the combined length would exceed maxBytes.
	NioBuffers(maxCount int, maxBytes int64) [][]byte

	// FailFlushed fails every flushed entry with cause, releasing
	// buffers and completing promises with failure. Reentrant calls
	// (triggered by a promise listener writing back into the channel)
	// are ignored rather than recursing.
	FailFlushed(cause errors.Error)

	// Close fails every flushed and unflushed entry with
	// ErrorClosedChannel and marks the buffer closed; subsequent
	// AddMessage calls fail.
	Close()

	// TotalPendingBytes is the sum of unconsumed bytes across flushed and
	// unflushed entries.
	TotalPendingBytes() int64

	// IsWritable reports the current writability, as last computed by
	// crossing the high/low watermarks.
	IsWritable() bool

	// SetWatermarks changes the high/low watermarks; pending bytes are
	// re-evaluated against the new thresholds immediately.
	SetWatermarks(low, high int64) errors.Error

	// OnWritabilityChanged registers the listener fired on every
	// writability flip (fired synchronously from whichever goroutine
	// crossed the watermark; callers typically hop to the event loop).
	OnWritabilityChanged(l WritabilityListener)
}
