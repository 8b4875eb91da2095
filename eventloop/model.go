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

package eventloop

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-uuid"
	"golang.org/x/sync/semaphore"

	"github.com/nabbar/nexio/errors"
)

const (
	// defaultIORatio mirrors the source library's NioEventLoop default:
	// the loop spends roughly this percentage of a cycle's time budget
	// servicing I/O before switching to the task queue.
	defaultIORatio = 50
	// defaultPollTimeout bounds how long Poll blocks when nothing is
	// scheduled, so the loop still notices new Execute wake-ups promptly.
	defaultPollTimeout = 1 * time.Second
	minPollTimeout     = time.Millisecond
)

type scheduledTask struct {
	t        Task
	runAt    time.Time
	period   time.Duration
	cancelled atomic.Bool
}

type loop struct {
	id     string
	source Source

	ioRatio int

	st atomic.Int32 // State

	mu        sync.Mutex
	tasks     []Task
	scheduled []*scheduledTask

	wake       chan struct{}
	pollResult chan pollOutcome
	done       chan struct{}

	quietPeriod time.Duration
	shutdownAt  time.Time
	lastActive  time.Time

	loopGoroutine atomic.Uint64

	logger Logger
}

// New returns a Loop driving source on its own goroutine. ioRatio is the
// percentage (1-100) of a busy cycle's time spent servicing I/O before
// the task queue runs; 0 uses the default of 50. logger may be nil; when
// set, every cycle that ran a task or woke early logs at Debug.
func New(source Source, ioRatio int, logger Logger) Loop {
	if ioRatio <= 0 || ioRatio > 100 {
		ioRatio = defaultIORatio
	}

	id, err := uuid.GenerateUUID()
	if err != nil {
		id = "loop-0"
	}

	l := &loop{
		id:         id,
		source:     source,
		ioRatio:    ioRatio,
		wake:       make(chan struct{}, 1),
		pollResult: make(chan pollOutcome, 1),
		done:       make(chan struct{}),
		logger:     logger,
	}
	l.st.Store(int32(StateStarted))
	l.lastActive = time.Now()

	go l.run()
	return l
}

func (l *loop) ID() string { return l.id }

func (l *loop) InEventLoop() bool {
	return l.loopGoroutine.Load() == currentGoroutineID()
}

func (l *loop) State() State {
	return State(l.st.Load())
}

func (l *loop) Execute(t Task) errors.Error {
	switch l.State() {
	case StateShutdown, StateTerminated:
		return ErrorTerminated.Error(nil)
	case StateShuttingDown:
		if !l.InEventLoop() {
			return ErrorShuttingDown.Error(nil)
		}
	}

	l.mu.Lock()
	l.tasks = append(l.tasks, t)
	l.mu.Unlock()

	l.notify()
	return nil
}

func (l *loop) Schedule(t Task, delay time.Duration) (Cancel, errors.Error) {
	return l.scheduleAt(t, delay, 0)
}

func (l *loop) ScheduleAtFixedRate(t Task, delay, period time.Duration) (Cancel, errors.Error) {
	if period <= 0 {
		return nil, ErrorIllegalArgument.Error(nil)
	}
	return l.scheduleAt(t, delay, period)
}

func (l *loop) scheduleAt(t Task, delay, period time.Duration) (Cancel, errors.Error) {
	if l.State() != StateStarted {
		return nil, ErrorShuttingDown.Error(nil)
	}

	st := &scheduledTask{t: t, runAt: time.Now().Add(delay), period: period}

	l.mu.Lock()
	idx := sort.Search(len(l.scheduled), func(i int) bool {
		return l.scheduled[i].runAt.After(st.runAt)
	})
	l.scheduled = append(l.scheduled, nil)
	copy(l.scheduled[idx+1:], l.scheduled[idx:])
	l.scheduled[idx] = st
	l.mu.Unlock()

	l.notify()

	return func() { st.cancelled.Store(true) }, nil
}

func (l *loop) Register(r Registrable, read, write bool) errors.Error {
	if err := l.source.Add(r, read, write); err != nil {
		return ErrorIllegalArgument.Error(err)
	}
	return nil
}

func (l *loop) Deregister(r Registrable) errors.Error {
	if err := l.source.Remove(r); err != nil {
		return ErrorIllegalArgument.Error(err)
	}
	return nil
}

func (l *loop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *loop) ShutdownGracefully(quietPeriod, timeout time.Duration) errors.Error {
	if !l.st.CompareAndSwap(int32(StateStarted), int32(StateShuttingDown)) {
		if l.State() == StateTerminated {
			return nil
		}
	}

	l.mu.Lock()
	l.quietPeriod = quietPeriod
	l.shutdownAt = time.Now().Add(timeout)
	l.mu.Unlock()

	l.notify()

	select {
	case <-l.done:
		return nil
	case <-time.After(timeout + time.Second):
		l.st.Store(int32(StateTerminated))
		return nil
	}
}

// pollOutcome is one completed Source.Poll call's result, handed from
// pollLoop to run() over pollResult.
type pollOutcome struct {
	n   int
	err error
}

// pollLoop runs Source.Poll back-to-back on its own goroutine so run()'s
// select can react to a task submission's wake-up without waiting for
// the in-flight poll to time out.
func (l *loop) pollLoop() {
	for {
		select {
		case <-l.done:
			return
		default:
		}

		n, err := l.source.Poll(l.pollTimeout())

		select {
		case l.pollResult <- pollOutcome{n, err}:
		case <-l.done:
			return
		}
	}
}

// run is the reactor's sole goroutine: wait for a poll result or a task
// wake-up, run due scheduled tasks, then drain the task queue under the
// I/O-vs-task ratio gate, repeat.
func (l *loop) run() {
	l.loopGoroutine.Store(currentGoroutineID())
	defer close(l.done)

	gate := semaphore.NewWeighted(1 << 20)
	go l.pollLoop()

	for {
		if l.State() == StateShuttingDown && l.idleFor() >= l.quietPeriodOf() {
			l.finishShutdown()
			return
		}
		if l.State() == StateShuttingDown && time.Now().After(l.shutdownDeadline()) {
			l.finishShutdown()
			return
		}

		cycleStart := time.Now()
		woken := false
		select {
		case res := <-l.pollResult:
			if res.n > 0 {
				l.touch()
			}
		case <-l.wake:
			woken = true
		}
		ioElapsed := time.Since(cycleStart)

		if l.runDueScheduled() {
			l.touch()
		}

		budget := l.taskBudget(ioElapsed)
		ran := 0
		if budget > 0 {
			if err := gate.Acquire(context.Background(), budget); err == nil {
				ran = l.drainTasks(budget)
				gate.Release(budget)
				if ran > 0 {
					l.touch()
				}
			}
		}

		if l.logger != nil && (ran > 0 || woken) {
			l.logger.Debug("eventloop: cycle", map[string]interface{}{
				"loop": l.id, "woken": woken, "tasksRan": ran,
			})
		}

		if l.State() == StateTerminated {
			return
		}
	}
}

// taskBudget converts the ioRatio and the time just spent on I/O into a
// number of tasks to run this cycle: (100-ioRatio)/ioRatio * ioElapsed
// worth of tasks, approximated as a flat count since task cost is
// unknown ahead of time.
func (l *loop) taskBudget(ioElapsed time.Duration) int64 {
	l.mu.Lock()
	n := len(l.tasks)
	l.mu.Unlock()
	if n == 0 {
		return 0
	}
	if l.ioRatio >= 100 {
		return int64(n)
	}
	ratio := float64(100-l.ioRatio) / float64(l.ioRatio)
	budget := int64(ratio*ioElapsed.Seconds()*1000) + 1
	if budget > int64(n) {
		budget = int64(n)
	}
	return budget
}

func (l *loop) drainTasks(max int64) int {
	l.mu.Lock()
	if int64(len(l.tasks)) < max {
		max = int64(len(l.tasks))
	}
	batch := l.tasks[:max]
	l.tasks = l.tasks[max:]
	l.mu.Unlock()

	for _, t := range batch {
		l.safeRun(t)
	}
	return len(batch)
}

func (l *loop) runDueScheduled() bool {
	now := time.Now()
	var due []*scheduledTask

	l.mu.Lock()
	i := 0
	for i < len(l.scheduled) && !l.scheduled[i].runAt.After(now) {
		i++
	}
	due = append(due, l.scheduled[:i]...)
	l.scheduled = l.scheduled[i:]
	l.mu.Unlock()

	ran := false
	for _, st := range due {
		if st.cancelled.Load() {
			continue
		}
		l.safeRun(st.t)
		ran = true
		if st.period > 0 && !st.cancelled.Load() {
			st.runAt = now.Add(st.period)
			l.mu.Lock()
			idx := sort.Search(len(l.scheduled), func(i int) bool {
				return l.scheduled[i].runAt.After(st.runAt)
			})
			l.scheduled = append(l.scheduled, nil)
			copy(l.scheduled[idx+1:], l.scheduled[idx:])
			l.scheduled[idx] = st
			l.mu.Unlock()
		}
	}
	return ran
}

func (l *loop) safeRun(t Task) {
	defer func() { _ = recover() }()
	t()
}

func (l *loop) pollTimeout() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.tasks) > 0 {
		return minPollTimeout
	}
	if len(l.scheduled) == 0 {
		return defaultPollTimeout
	}
	d := time.Until(l.scheduled[0].runAt)
	if d < minPollTimeout {
		return minPollTimeout
	}
	if d > defaultPollTimeout {
		return defaultPollTimeout
	}
	return d
}

func (l *loop) touch() {
	l.mu.Lock()
	l.lastActive = time.Now()
	l.mu.Unlock()
}

func (l *loop) idleFor() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return time.Since(l.lastActive)
}

func (l *loop) quietPeriodOf() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.quietPeriod
}

func (l *loop) shutdownDeadline() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.shutdownAt
}

func (l *loop) finishShutdown() {
	l.st.Store(int32(StateShutdown))
	_ = l.source.Close()
	l.st.Store(int32(StateTerminated))
}

