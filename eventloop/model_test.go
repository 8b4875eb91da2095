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

package eventloop_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/nexio/eventloop"
	"github.com/nabbar/nexio/logger"
)

func TestEventLoop(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "eventloop Suite")
}

// loopbackSource is an in-memory Source stand-in used only by these
// tests: it never reports readiness, letting the loop cycle purely on
// its task queue and scheduled tasks.
type loopbackSource struct{}

func (loopbackSource) Add(eventloop.Registrable, bool, bool) error    { return nil }
func (loopbackSource) Modify(eventloop.Registrable, bool, bool) error { return nil }
func (loopbackSource) Remove(eventloop.Registrable) error             { return nil }
func (loopbackSource) Poll(timeout time.Duration) (int, error) {
	time.Sleep(time.Millisecond)
	return 0, nil
}
func (loopbackSource) Close() error { return nil }

var _ = Describe("Loop", func() {
	It("runs submitted tasks on its own goroutine", func() {
		l := eventloop.New(loopbackSource{}, 0, logger.New(context.Background()))
		defer l.ShutdownGracefully(0, time.Second)

		var ran atomic.Bool
		var inLoop atomic.Bool
		err := l.Execute(func() {
			ran.Store(true)
			inLoop.Store(l.InEventLoop())
		})
		Expect(err).To(BeNil())

		Eventually(ran.Load, time.Second).Should(BeTrue())
		Expect(inLoop.Load()).To(BeTrue())
		Expect(l.InEventLoop()).To(BeFalse())
	})

	It("runs a scheduled task after its delay", func() {
		l := eventloop.New(loopbackSource{}, 0, nil)
		defer l.ShutdownGracefully(0, time.Second)

		var ran atomic.Bool
		_, err := l.Schedule(func() { ran.Store(true) }, 20*time.Millisecond)
		Expect(err).To(BeNil())

		Consistently(ran.Load, 5*time.Millisecond).Should(BeFalse())
		Eventually(ran.Load, time.Second).Should(BeTrue())
	})

	It("cancels a scheduled task before it runs", func() {
		l := eventloop.New(loopbackSource{}, 0, nil)
		defer l.ShutdownGracefully(0, time.Second)

		var ran atomic.Bool
		cancel, err := l.Schedule(func() { ran.Store(true) }, 20*time.Millisecond)
		Expect(err).To(BeNil())
		cancel()

		Consistently(ran.Load, 50*time.Millisecond).Should(BeFalse())
	})

	It("rejects new work once terminated", func() {
		l := eventloop.New(loopbackSource{}, 0, nil)
		Expect(l.ShutdownGracefully(0, time.Second)).To(BeNil())

		err := l.Execute(func() {})
		Expect(err).ToNot(BeNil())
	})
})

var _ = Describe("Group", func() {
	It("round robins across its loops", func() {
		g, err := eventloop.NewGroup(3, 0, func() eventloop.Source { return loopbackSource{} }, eventloop.RoundRobin, nil)
		Expect(err).To(BeNil())
		defer g.ShutdownGracefully(0, time.Second)

		first := g.Next()
		second := g.Next()
		third := g.Next()
		fourth := g.Next()

		Expect(first.ID()).ToNot(Equal(second.ID()))
		Expect(second.ID()).ToNot(Equal(third.ID()))
		Expect(fourth.ID()).To(Equal(first.ID()))
	})
})
