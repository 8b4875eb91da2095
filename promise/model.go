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

package promise

import (
	"sync"

	"github.com/nabbar/nexio/errors"
)

type state uint8

const (
	statePending state = iota
	stateSuccess
	stateFailure
	stateCancelled
)

type promise struct {
	mu   sync.Mutex
	cond *sync.Cond

	st    state
	cause errors.Error

	exec      Executor
	listeners []Listener
}

// New returns a Promise dispatching its listeners through exec. exec may
// be nil, in which case listeners run synchronously on the completing
// goroutine and Sync/Await never self-deadlock.
func New(exec Executor) Promise {
	p := &promise{exec: exec}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Done returns an already-completed, successful Future, useful for
// operations that can short-circuit synchronously.
func Done() Future {
	p := New(nil).(*promise)
	p.st = stateSuccess
	return p
}

// Failed returns an already-completed, failed Future.
func Failed(cause errors.Error) Future {
	p := New(nil).(*promise)
	p.st = stateFailure
	p.cause = cause
	return p
}

func (p *promise) IsDone() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.st != statePending
}

func (p *promise) IsSuccess() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.st == stateSuccess
}

func (p *promise) IsCancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.st == stateCancelled
}

func (p *promise) Cause() errors.Error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cause
}

func (p *promise) AddListener(l Listener) Future {
	p.mu.Lock()
	done := p.st != statePending
	if !done {
		p.listeners = append(p.listeners, l)
	}
	p.mu.Unlock()

	if done {
		l(p)
	}
	return p
}

func (p *promise) RemoveListener(l Listener) Future {
	p.mu.Lock()
	defer p.mu.Unlock()

	fn := reflectFuncPtr(l)
	for i, c := range p.listeners {
		if reflectFuncPtr(c) == fn {
			p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
			break
		}
	}
	return p
}

func (p *promise) SetSuccess() {
	if !p.complete(stateSuccess, nil) {
		panic(ErrorIllegalState.Error(nil))
	}
}

func (p *promise) SetFailure(cause errors.Error) {
	if !p.complete(stateFailure, cause) {
		panic(ErrorIllegalState.Error(nil))
	}
}

func (p *promise) Cancel() bool {
	return p.complete(stateCancelled, ErrorCancelled.Error(nil))
}

func (p *promise) TrySuccess() bool {
	return p.complete(stateSuccess, nil)
}

func (p *promise) TryFailure(cause errors.Error) bool {
	return p.complete(stateFailure, cause)
}

func (p *promise) complete(st state, cause errors.Error) bool {
	p.mu.Lock()
	if p.st != statePending {
		p.mu.Unlock()
		return false
	}
	p.st = st
	p.cause = cause
	listeners := p.listeners
	p.listeners = nil
	p.mu.Unlock()

	p.cond.Broadcast()
	p.notify(listeners)
	return true
}

func (p *promise) notify(listeners []Listener) {
	for _, l := range listeners {
		fn := l
		if p.exec != nil {
			p.exec.Execute(func() { fn(p) })
		} else {
			fn(p)
		}
	}
}

func (p *promise) Sync() errors.Error {
	if p.exec != nil && p.exec.InEventLoop() {
		return ErrorSelfDeadlock.Error(nil)
	}

	p.mu.Lock()
	for p.st == statePending {
		p.cond.Wait()
	}
	st, cause := p.st, p.cause
	p.mu.Unlock()

	if st == stateFailure || st == stateCancelled {
		if cause != nil {
			return cause
		}
		return ErrorCancelled.Error(nil)
	}
	return nil
}

func (p *promise) Await() errors.Error {
	if p.exec != nil && p.exec.InEventLoop() {
		return ErrorSelfDeadlock.Error(nil)
	}

	p.mu.Lock()
	for p.st == statePending {
		p.cond.Wait()
	}
	p.mu.Unlock()
	return nil
}

// reflectFuncPtr gives RemoveListener a stable-ish key to compare a
// previously-registered closure against. Go has no equality on func
// values; comparing the code pointer is the pragmatic approximation the
// source library itself relies on for "same listener" removal.
func reflectFuncPtr(l Listener) uintptr {
	return funcPtr(l)
}
