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

// Package eventloop implements the single-threaded reactor that backs
// every Channel: a readiness poll, a scheduled-task wheel and an MPSC
// task queue, all run from one goroutine per Loop so handler code never
// has to synchronize against itself.
package eventloop

import (
	"time"

	"github.com/nabbar/nexio/errors"
)

// Task is a unit of work submitted to a Loop. It always runs on the
// owning Loop's single goroutine.
type Task func()

// Registrable is implemented by anything a Loop can poll for readiness
// (normally channel.Channel, kept decoupled here to avoid an import
// cycle between eventloop and channel).
type Registrable interface {
	// FD returns the pollable descriptor identity used by the Source.
	FD() uintptr
	// OnReadReady and OnWriteReady are invoked on the Loop's own
	// goroutine when the poller reports the respective readiness.
	OnReadReady()
	OnWriteReady()
}

// Source abstracts the readiness backend (epoll, kqueue, IOCP, or an
// in-memory loopback used by tests). The concrete backend is outside
// this module's scope; Loop only needs this much.
type Source interface {
	// Add registers r for read and/or write readiness notification.
	Add(r Registrable, read, write bool) error
	// Modify changes the readiness interest for an already-registered r.
	Modify(r Registrable, read, write bool) error
	// Remove deregisters r.
	Remove(r Registrable) error
	// Poll blocks up to timeout waiting for readiness events, dispatching
	// them via the registered Registrable callbacks, and returns the
	// number of ready descriptors handled.
	Poll(timeout time.Duration) (int, error)
	// Close releases the backend's resources.
	Close() error
}

// State is the Loop's lifecycle position.
type State uint8

const (
	StateStarted State = iota
	StateShuttingDown
	StateShutdown
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateStarted:
		return "started"
	case StateShuttingDown:
		return "shutting_down"
	case StateShutdown:
		return "shutdown"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// Loop is a single-threaded reactor: one OS-level goroutine services a
// readiness Source, a scheduled-task wheel, and a task queue, always in
// that order within a cycle.
type Loop interface {
	// ID uniquely identifies this loop among its Group siblings.
	ID() string

	// InEventLoop reports whether the calling goroutine is this Loop's
	// own goroutine.
	InEventLoop() bool

	// Execute submits a Task to run on the loop goroutine, waking it if
	// it is blocked in Poll. Returns ErrorShuttingDown/ErrorTerminated if
	// the loop no longer accepts work.
	Execute(t Task) errors.Error

	// Schedule submits a Task to run once after delay.
	Schedule(t Task, delay time.Duration) (Cancel, errors.Error)

	// ScheduleAtFixedRate submits a Task to run every period, starting
	// after the initial delay.
	ScheduleAtFixedRate(t Task, delay, period time.Duration) (Cancel, errors.Error)

	// Register adds r to this loop's readiness Source.
	Register(r Registrable, read, write bool) errors.Error

	// Deregister removes r from this loop's readiness Source.
	Deregister(r Registrable) errors.Error

	// State returns the current lifecycle state.
	State() State

	// ShutdownGracefully begins graceful shutdown: Execute then rejects
	// tasks submitted from outside the loop goroutine and Schedule rejects
	// every new task (Register and Deregister are not checked), the loop
	// waits quietPeriod for activity to go silent (resetting on any new
	// task), and forces termination once timeout elapses.
	ShutdownGracefully(quietPeriod, timeout time.Duration) errors.Error
}

// Cancel stops a scheduled task. Calling it after the task already ran
// is a no-op.
type Cancel func()

// Group owns a fixed-size pool of Loop instances and assigns incoming
// registrations to one of them.
type Group interface {
	// Next selects a Loop per the group's assignment strategy.
	Next() Loop
	// Loops returns every managed Loop.
	Loops() []Loop
	// ShutdownGracefully shuts every managed Loop down, returning once
	// all have reached StateTerminated or the timeout elapses.
	ShutdownGracefully(quietPeriod, timeout time.Duration) errors.Error
}

// Strategy picks the next Loop from a Group's pool given the previous
// selection index.
type Strategy func(loops []Loop, prevIdx int) (idx int)
