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

package pipeline

import (
	"sync"
	"sync/atomic"

	"github.com/nabbar/nexio/errors"
	"github.com/nabbar/nexio/promise"
)

// Logger is the narrow logging contract the pipeline needs to report
// stray exceptionCaught events at Warn; its method matches
// logger.Logger.Warning exactly, so logger.New(...) satisfies it without
// this package importing logger directly.
type Logger interface {
	Warning(message string, data interface{}, args ...interface{})
}

type ctx struct {
	name     string
	handler  Handler
	inbound  InboundHandler
	outbound OutboundHandler

	exec Executor
	st   atomic.Int32

	pl         *pipe
	prev, next *ctx
}

func newCtx(name string, h Handler, exec Executor, pl *pipe) *ctx {
	c := &ctx{name: name, handler: h, exec: exec, pl: pl}
	c.inbound, _ = h.(InboundHandler)
	c.outbound, _ = h.(OutboundHandler)
	c.st.Store(int32(StateInit))
	return c
}

func (c *ctx) Name() string          { return c.name }
func (c *ctx) Pipeline() Pipeline    { return c.pl }
func (c *ctx) Handler() Handler      { return c.handler }
func (c *ctx) Executor() Executor    { return c.exec }
func (c *ctx) State() HandlerState   { return HandlerState(c.st.Load()) }
func (c *ctx) IsInbound() bool       { return c.inbound != nil }
func (c *ctx) IsOutbound() bool      { return c.outbound != nil }

func (c *ctx) run(task func()) {
	if c.exec == nil || c.exec.InEventLoop() {
		task()
		return
	}
	c.exec.Execute(task)
}

func (c *ctx) nextInbound() *ctx {
	n := c.next
	for n != nil && !n.IsInbound() {
		n = n.next
	}
	return n
}

func (c *ctx) prevOutbound() *ctx {
	p := c.prev
	for p != nil && !p.IsOutbound() {
		p = p.prev
	}
	return p
}

func (c *ctx) FireChannelRegistered() {
	if n := c.nextInbound(); n != nil {
		n.run(func() { n.inbound.ChannelRegistered(n) })
	}
}

func (c *ctx) FireChannelUnregistered() {
	if n := c.nextInbound(); n != nil {
		n.run(func() { n.inbound.ChannelUnregistered(n) })
	}
}

func (c *ctx) FireChannelActive() {
	if n := c.nextInbound(); n != nil {
		n.run(func() { n.inbound.ChannelActive(n) })
	}
}

func (c *ctx) FireChannelInactive() {
	if n := c.nextInbound(); n != nil {
		n.run(func() { n.inbound.ChannelInactive(n) })
	}
}

func (c *ctx) FireChannelRead(msg interface{}) {
	if n := c.nextInbound(); n != nil {
		n.run(func() { n.inbound.ChannelRead(n, msg) })
	}
}

func (c *ctx) FireChannelReadComplete() {
	if n := c.nextInbound(); n != nil {
		n.run(func() { n.inbound.ChannelReadComplete(n) })
	}
}

func (c *ctx) FireChannelWritabilityChanged() {
	if n := c.nextInbound(); n != nil {
		n.run(func() { n.inbound.ChannelWritabilityChanged(n) })
	}
}

func (c *ctx) FireUserEventTriggered(evt interface{}) {
	if n := c.nextInbound(); n != nil {
		n.run(func() { n.inbound.UserEventTriggered(n, evt) })
	}
}

func (c *ctx) FireExceptionCaught(cause error) {
	if n := c.nextInbound(); n != nil {
		n.run(func() { n.inbound.ExceptionCaught(n, cause) })
		return
	}
	c.pl.logWarn("exceptionCaught reached pipeline tail with no handler: %v", cause)
}

func (c *ctx) Bind(localAddr string, prom promise.Promise) {
	if p := c.prevOutbound(); p != nil {
		p.run(func() { p.outbound.Bind(p, localAddr, prom) })
	}
}

func (c *ctx) Connect(remoteAddr string, prom promise.Promise) {
	if p := c.prevOutbound(); p != nil {
		p.run(func() { p.outbound.Connect(p, remoteAddr, prom) })
	}
}

func (c *ctx) Disconnect(prom promise.Promise) {
	if p := c.prevOutbound(); p != nil {
		p.run(func() { p.outbound.Disconnect(p, prom) })
	}
}

func (c *ctx) Close(prom promise.Promise) {
	if p := c.prevOutbound(); p != nil {
		p.run(func() { p.outbound.Close(p, prom) })
	}
}

func (c *ctx) Deregister(prom promise.Promise) {
	if p := c.prevOutbound(); p != nil {
		p.run(func() { p.outbound.Deregister(p, prom) })
	}
}

func (c *ctx) Read() {
	if p := c.prevOutbound(); p != nil {
		p.run(func() { p.outbound.Read(p) })
	}
}

func (c *ctx) Write(msg interface{}, prom promise.Promise) {
	if p := c.prevOutbound(); p != nil {
		p.run(func() { p.outbound.Write(p, msg, prom) })
	}
}

func (c *ctx) Flush() {
	if p := c.prevOutbound(); p != nil {
		p.run(func() { p.outbound.Flush(p) })
	}
}

// pipe is the concrete Pipeline: a doubly-linked context list between
// head (outbound terminal, invokes Unsafe) and tail (inbound terminal,
// drops unhandled reads).
type pipe struct {
	mu sync.RWMutex

	head *ctx
	tail *ctx

	byName map[string]*ctx

	registered bool
	logger     Logger
}

// New returns a Pipeline with unsafe wired as the head's outbound
// terminal and tail as the inbound terminal (use NewDefaultTail if the
// caller has no special tail behavior). logger may be nil.
func New(unsafe UnsafeInvoker, tail InboundHandler, logger Logger) Pipeline {
	p := &pipe{byName: make(map[string]*ctx), logger: logger}

	headCtx := newCtx("head", &headHandler{unsafe: unsafe}, nil, p)
	tailCtx := newCtx("tail", tail, nil, p)

	headCtx.next = tailCtx
	tailCtx.prev = headCtx
	p.head, p.tail = headCtx, tailCtx

	return p
}

func (p *pipe) logWarn(format string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Warning(format, nil, args...)
	}
}

func (p *pipe) insert(name string, h Handler, exec Executor, before, after *ctx) errors.Error {
	if s, ok := h.(Sharable); !ok || !s.Shareable() {
		for _, c := range p.byName {
			if c.handler == h {
				return ErrorNotShareable.Error(nil)
			}
		}
	}

	p.mu.Lock()
	if _, exists := p.byName[name]; exists {
		p.mu.Unlock()
		return ErrorHandlerExists.Error(nil)
	}

	c := newCtx(name, h, exec, p)
	c.prev, c.next = before, after
	before.next = c
	after.prev = c
	p.byName[name] = c

	registered := p.registered
	p.mu.Unlock()

	if registered {
		c.st.Store(int32(StateAddPending))
		c.run(func() {
			h.HandlerAdded(c)
			c.st.Store(int32(StateAddComplete))
		})
	}

	return nil
}

func (p *pipe) AddFirst(name string, h Handler) errors.Error {
	p.mu.RLock()
	before, after := p.head, p.head.next
	p.mu.RUnlock()
	return p.insert(name, h, nil, before, after)
}

func (p *pipe) AddLast(name string, h Handler) errors.Error {
	p.mu.RLock()
	before, after := p.tail.prev, p.tail
	p.mu.RUnlock()
	return p.insert(name, h, nil, before, after)
}

func (p *pipe) AddBefore(baseName, name string, h Handler) errors.Error {
	p.mu.RLock()
	base, ok := p.byName[baseName]
	p.mu.RUnlock()
	if !ok {
		return ErrorHandlerNotFound.Error(nil)
	}
	return p.insert(name, h, nil, base.prev, base)
}

func (p *pipe) AddAfter(baseName, name string, h Handler) errors.Error {
	p.mu.RLock()
	base, ok := p.byName[baseName]
	p.mu.RUnlock()
	if !ok {
		return ErrorHandlerNotFound.Error(nil)
	}
	return p.insert(name, h, nil, base, base.next)
}

func (p *pipe) Remove(name string) errors.Error {
	p.mu.Lock()
	c, ok := p.byName[name]
	if !ok {
		p.mu.Unlock()
		return ErrorHandlerNotFound.Error(nil)
	}
	delete(p.byName, name)
	c.prev.next = c.next
	c.next.prev = c.prev
	p.mu.Unlock()

	c.run(func() {
		c.handler.HandlerRemoved(c)
		c.st.Store(int32(StateRemoveComplete))
	})
	return nil
}

func (p *pipe) Get(name string) Handler {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if c, ok := p.byName[name]; ok {
		return c.handler
	}
	return nil
}

func (p *pipe) Context(name string) HandlerContext {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if c, ok := p.byName[name]; ok {
		return c
	}
	return nil
}

func (p *pipe) OnRegistered() {
	p.mu.Lock()
	p.registered = true
	var pending []*ctx
	for c := p.head.next; c != p.tail; c = c.next {
		if c.State() == StateInit || c.State() == StateAddPending {
			pending = append(pending, c)
		}
	}
	p.mu.Unlock()

	for _, c := range pending {
		c.st.Store(int32(StateAddPending))
		cc := c
		cc.run(func() {
			cc.handler.HandlerAdded(cc)
			cc.st.Store(int32(StateAddComplete))
		})
	}

	p.FireChannelRegistered()
}

func (p *pipe) FireChannelRegistered() {
	if n := p.head.nextInbound(); n != nil {
		n.run(func() { n.inbound.ChannelRegistered(n) })
	}
}

func (p *pipe) FireChannelUnregistered() {
	if n := p.head.nextInbound(); n != nil {
		n.run(func() { n.inbound.ChannelUnregistered(n) })
	}
}

func (p *pipe) FireChannelActive() {
	if n := p.head.nextInbound(); n != nil {
		n.run(func() { n.inbound.ChannelActive(n) })
	}
}

func (p *pipe) FireChannelInactive() {
	if n := p.head.nextInbound(); n != nil {
		n.run(func() { n.inbound.ChannelInactive(n) })
	}
}

func (p *pipe) FireChannelRead(msg interface{}) {
	if n := p.head.nextInbound(); n != nil {
		n.run(func() { n.inbound.ChannelRead(n, msg) })
	}
}

func (p *pipe) FireChannelReadComplete() {
	if n := p.head.nextInbound(); n != nil {
		n.run(func() { n.inbound.ChannelReadComplete(n) })
	}
}

func (p *pipe) FireChannelWritabilityChanged() {
	if n := p.head.nextInbound(); n != nil {
		n.run(func() { n.inbound.ChannelWritabilityChanged(n) })
	}
}

func (p *pipe) FireUserEventTriggered(evt interface{}) {
	if n := p.head.nextInbound(); n != nil {
		n.run(func() { n.inbound.UserEventTriggered(n, evt) })
	}
}

func (p *pipe) FireExceptionCaught(cause error) {
	if n := p.head.nextInbound(); n != nil {
		n.run(func() { n.inbound.ExceptionCaught(n, cause) })
		return
	}
	p.logWarn("exceptionCaught reached pipeline tail with no handler: %v", cause)
}

func (p *pipe) Bind(localAddr string, prom promise.Promise) {
	if b := p.tail.prevOutbound(); b != nil {
		b.run(func() { b.outbound.Bind(b, localAddr, prom) })
	}
}

func (p *pipe) Connect(remoteAddr string, prom promise.Promise) {
	if b := p.tail.prevOutbound(); b != nil {
		b.run(func() { b.outbound.Connect(b, remoteAddr, prom) })
	}
}

func (p *pipe) Disconnect(prom promise.Promise) {
	if b := p.tail.prevOutbound(); b != nil {
		b.run(func() { b.outbound.Disconnect(b, prom) })
	}
}

func (p *pipe) Close(prom promise.Promise) {
	if b := p.tail.prevOutbound(); b != nil {
		b.run(func() { b.outbound.Close(b, prom) })
	}
}

func (p *pipe) Deregister(prom promise.Promise) {
	if b := p.tail.prevOutbound(); b != nil {
		b.run(func() { b.outbound.Deregister(b, prom) })
	}
}

func (p *pipe) Read() {
	if b := p.tail.prevOutbound(); b != nil {
		b.run(func() { b.outbound.Read(b) })
	}
}

func (p *pipe) Write(msg interface{}, prom promise.Promise) {
	if b := p.tail.prevOutbound(); b != nil {
		b.run(func() { b.outbound.Write(b, msg, prom) })
	}
}

func (p *pipe) Flush() {
	if b := p.tail.prevOutbound(); b != nil {
		b.run(func() { b.outbound.Flush(b) })
	}
}
