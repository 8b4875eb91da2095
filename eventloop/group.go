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
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nabbar/nexio/errors"
)

// RoundRobin cycles through loops in order, wrapping at the end.
func RoundRobin(loops []Loop, prevIdx int) int {
	if len(loops) == 0 {
		return -1
	}
	return (prevIdx + 1) % len(loops)
}

// LeastLoaded picks the loop with the smallest pending task queue. The
// source library's EventExecutorChooser has no direct load-aware
// variant; this is the natural generalization for a Group that wants
// better balance than plain round robin.
func LeastLoaded(loops []Loop, prevIdx int) int {
	best := -1
	bestLoad := -1
	for i, l := range loops {
		ll, ok := l.(*loop)
		if !ok {
			continue
		}
		ll.mu.Lock()
		load := len(ll.tasks)
		ll.mu.Unlock()
		if best == -1 || load < bestLoad {
			best = i
			bestLoad = load
		}
	}
	if best == -1 {
		return RoundRobin(loops, prevIdx)
	}
	return best
}

type group struct {
	loops    []Loop
	strategy Strategy
	idx      atomic.Int64
}

// NewGroup builds a Group of n loops, each driven by a fresh Source
// produced by newSource, selected per strategy (nil defaults to
// RoundRobin). logger may be nil; when set, every loop in the group logs
// cycle diagnostics at Debug through it.
func NewGroup(n int, ioRatio int, newSource func() Source, strategy Strategy, logger Logger) (Group, errors.Error) {
	if n <= 0 {
		return nil, ErrorIllegalArgument.Error(nil)
	}
	if strategy == nil {
		strategy = RoundRobin
	}

	g := &group{strategy: strategy}
	g.idx.Store(-1)

	for i := 0; i < n; i++ {
		src := newSource()
		g.loops = append(g.loops, New(src, ioRatio, logger))
	}

	return g, nil
}

func (g *group) Next() Loop {
	if len(g.loops) == 0 {
		return nil
	}
	prev := int(g.idx.Load())
	next := g.strategy(g.loops, prev)
	if next < 0 || next >= len(g.loops) {
		next = 0
	}
	g.idx.Store(int64(next))
	return g.loops[next]
}

func (g *group) Loops() []Loop {
	out := make([]Loop, len(g.loops))
	copy(out, g.loops)
	return out
}

func (g *group) ShutdownGracefully(quietPeriod, timeout time.Duration) errors.Error {
	var eg errgroup.Group

	for _, l := range g.loops {
		ll := l
		eg.Go(func() error {
			if err := ll.ShutdownGracefully(quietPeriod, timeout); err != nil {
				return err
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return ErrorIllegalArgument.Error(err)
	}
	return nil
}
