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

// Package refcount implements the shared-ownership discipline used by
// pooled buffers and pipeline messages: an atomic counter started at one,
// incremented by retain, decremented by release, with an optional leak
// detector sampling a subset of allocations.
package refcount

import "github.com/nabbar/nexio/errors"

// ReferenceCounted is implemented by any object participating in the
// retain/release ownership discipline (buffers, derived views, composite
// components).
type ReferenceCounted interface {
	// RefCnt returns the current reference count.
	RefCnt() int32

	// Retain increments the reference count by one and returns the
	// receiver for chaining.
	Retain() (ReferenceCounted, errors.Error)

	// RetainN increments the reference count by n.
	RetainN(n int32) (ReferenceCounted, errors.Error)

	// Release decrements the reference count by one; when it reaches
	// zero, dealloc is invoked exactly once. Returns true if this call
	// triggered deallocation.
	Release() (bool, errors.Error)

	// ReleaseN decrements the reference count by n.
	ReleaseN(n int32) (bool, errors.Error)

	// Touch records a leak-detector access hint, returning the receiver.
	Touch(hint interface{}) ReferenceCounted
}

// Deallocator is invoked exactly once when a Counter's count reaches zero.
type Deallocator func()

// LeakLevel selects the leak detector's sampling aggressiveness.
type LeakLevel uint8

const (
	// LeakDisabled performs no sampling at all.
	LeakDisabled LeakLevel = iota
	// LeakSimple samples roughly 1% of allocations and reports only the
	// fact that a leak happened.
	LeakSimple
	// LeakAdvanced samples roughly 1% of allocations and keeps the last
	// touch hints for each sampled object.
	LeakAdvanced
	// LeakParanoid samples every allocation; expensive, debug-only.
	LeakParanoid
)

func (l LeakLevel) String() string {
	switch l {
	case LeakSimple:
		return "simple"
	case LeakAdvanced:
		return "advanced"
	case LeakParanoid:
		return "paranoid"
	default:
		return "disabled"
	}
}
