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

package channel

import (
	"github.com/nabbar/nexio/buffer"
	"github.com/nabbar/nexio/errors"
)

// recvHistoryLen is the window the adaptive guess averages over.
const recvHistoryLen = 16

// RecvByteBufAllocatorHandle guesses the next read's buffer size from a
// moving average of recent read sizes and tells the read-dispatch loop
// when to stop looping within one readReady call.
type RecvByteBufAllocatorHandle interface {
	// Guess returns the current read-size estimate, clamped to [min, max].
	Guess() int
	// AllocateBuffer allocates a buffer sized at the current guess.
	AllocateBuffer(alloc buffer.Allocator) (buffer.ByteBuf, errors.Error)
	// Record folds one read's actual byte count into the history.
	Record(actualReadBytes int)
	// ContinueReading reports whether the read-dispatch loop should
	// attempt another read this cycle.
	ContinueReading() bool
	// Reset clears the per-cycle read budget counter; called once at
	// the start of every readReady invocation.
	Reset()
}

type recvBufAllocHandle struct {
	min, max     int
	maxPerRead   int
	history      [recvHistoryLen]int
	historyLen   int
	historyNext  int
	lastRead     int
	readsThisRun int
	autoRead     func() bool
}

// newRecvBufAllocHandle builds a handle bounded to [min, max] that reads
// at most maxPerRead times per readReady cycle; autoRead is consulted so
// a handler that disabled auto-read stops the loop immediately.
func newRecvBufAllocHandle(min, max, maxPerRead int, autoRead func() bool) *recvBufAllocHandle {
	if maxPerRead <= 0 {
		maxPerRead = 16
	}
	return &recvBufAllocHandle{min: min, max: max, maxPerRead: maxPerRead, autoRead: autoRead}
}

func (h *recvBufAllocHandle) guess() int {
	if h.historyLen == 0 {
		return h.clamp(h.min)
	}

	sum := 0
	for i := 0; i < h.historyLen; i++ {
		sum += h.history[i]
	}
	return h.clamp(sum / h.historyLen)
}

func (h *recvBufAllocHandle) clamp(n int) int {
	if n < h.min {
		return h.min
	}
	if n > h.max {
		return h.max
	}
	return n
}

func (h *recvBufAllocHandle) Guess() int { return h.guess() }

func (h *recvBufAllocHandle) AllocateBuffer(alloc buffer.Allocator) (buffer.ByteBuf, errors.Error) {
	return alloc.Allocate(h.guess(), h.max)
}

func (h *recvBufAllocHandle) Record(actualReadBytes int) {
	h.lastRead = actualReadBytes
	h.readsThisRun++

	h.history[h.historyNext] = actualReadBytes
	h.historyNext = (h.historyNext + 1) % recvHistoryLen
	if h.historyLen < recvHistoryLen {
		h.historyLen++
	}
}

func (h *recvBufAllocHandle) ContinueReading() bool {
	if h.lastRead <= 0 {
		return false
	}
	if h.autoRead != nil && !h.autoRead() {
		return false
	}
	if h.readsThisRun >= h.maxPerRead {
		return false
	}
	// diminishing returns: the transport gave us noticeably less than
	// what we guessed it would, it is unlikely another read helps.
	if h.lastRead < h.guess()/2 {
		return false
	}
	return true
}

func (h *recvBufAllocHandle) Reset() {
	h.readsThisRun = 0
}
