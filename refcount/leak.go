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
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"
)

// LeakHook is invoked when the detector's sweep finds a sampled object that
// was garbage collected without ever reaching a zero refcount.
type LeakHook func(kind string, hints []string)

// Detector samples a subset of allocations and reports suspected leaks at
// a periodic sweep. The sampling rate and hint retention depend on level.
type Detector struct {
	level LeakLevel
	hook  LeakHook
	every time.Duration

	mu   sync.Mutex
	live map[*tracker]struct{}

	stop chan struct{}
}

// NewDetector builds a Detector at the given level. Leaks are reported only
// through hook; if hook is nil, they are dropped. Tests may pass their own
// hook to assert on leak reports.
func NewDetector(level LeakLevel, hook LeakHook) *Detector {
	d := &Detector{
		level: level,
		hook:  hook,
		every: 10 * time.Second,
		live:  make(map[*tracker]struct{}),
		stop:  make(chan struct{}),
	}
	if level != LeakDisabled {
		go d.sweepLoop()
	}
	return d
}

// Close stops the background sweep goroutine.
func (d *Detector) Close() {
	if d.level != LeakDisabled {
		close(d.stop)
	}
}

func (d *Detector) shouldSample() bool {
	switch d.level {
	case LeakParanoid:
		return true
	case LeakAdvanced, LeakSimple:
		return rand.Intn(100) == 0
	default:
		return false
	}
}

func (d *Detector) sample(kind string) *tracker {
	if !d.shouldSample() {
		return nil
	}

	t := &tracker{kind: kind, keepHints: d.level == LeakAdvanced || d.level == LeakParanoid}
	runtime.SetFinalizer(t, func(tt *tracker) {
		d.onFinalize(tt)
	})

	d.mu.Lock()
	d.live[t] = struct{}{}
	d.mu.Unlock()

	return t
}

func (d *Detector) onFinalize(t *tracker) {
	d.mu.Lock()
	_, leaked := d.live[t]
	delete(d.live, t)
	d.mu.Unlock()

	if leaked && d.hook != nil {
		d.hook(t.kind, t.snapshotHints())
	}
}

func (d *Detector) sweepLoop() {
	ticker := time.NewTicker(d.every)
	defer ticker.Stop()

	for {
		select {
		case <-d.stop:
			return
		case <-ticker.C:
			runtime.GC()
		}
	}
}

// tracker is attached to a Counter when the owning Detector decides to
// sample it. It is never referenced by the Counter's deallocation path:
// that would defeat the finalizer, which is the whole point.
type tracker struct {
	mu        sync.Mutex
	kind      string
	hints     []string
	keepHints bool
	closed    bool
}

func (t *tracker) record(op string) {
	t.touch(op)
}

func (t *tracker) touch(hint interface{}) {
	if !t.keepHints {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hints = append(t.hints, fmt.Sprintf("%v", hint))
	if len(t.hints) > 32 {
		t.hints = t.hints[len(t.hints)-32:]
	}
}

func (t *tracker) close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	runtime.SetFinalizer(t, nil)
}

func (t *tracker) snapshotHints() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.hints))
	copy(out, t.hints)
	return out
}
