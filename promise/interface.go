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

// Package promise implements the single-assignment completion primitive
// used throughout the reactor: every asynchronous channel operation
// (connect, write, close, register) returns a Future and completes it
// exactly once from the owning event loop.
package promise

import "github.com/nabbar/nexio/errors"

// Listener is notified once a Future completes, successfully or not.
// It runs on the executor the Future was completed on unless the
// listener was added after completion, in which case it runs inline.
type Listener func(f Future)

// Executor abstracts the event loop enough for Promise/Future to dispatch
// listeners and detect self-deadlock without importing the eventloop
// package directly.
type Executor interface {
	InEventLoop() bool
	Execute(task func())
}

// Future is the read side of a Promise. A Channel operation returns a
// Future; callers add listeners or block with Sync/Await.
type Future interface {
	IsDone() bool
	IsSuccess() bool
	IsCancelled() bool
	Cause() errors.Error

	AddListener(l Listener) Future
	RemoveListener(l Listener) Future

	// Sync blocks the calling goroutine until completion and returns an
	// error if the Future failed or was cancelled. It fails fast with
	// ErrorSelfDeadlock if called from the owning executor's own thread.
	Sync() errors.Error

	// Await blocks without returning the completion error, mirroring the
	// source library's await() used when only the side effect matters. Like
	// Sync, it returns ErrorSelfDeadlock if called from the owning
	// executor's own thread.
	Await() errors.Error
}

// Promise is the write side: exactly one of SetSuccess, SetFailure or
// Cancel may be called, exactly once.
type Promise interface {
	Future

	SetSuccess()
	SetFailure(cause errors.Error)
	Cancel() bool

	// TrySuccess and TryFailure return false instead of panicking when
	// the promise is already complete, used by code paths that race
	// benignly against a close.
	TrySuccess() bool
	TryFailure(cause errors.Error) bool
}
