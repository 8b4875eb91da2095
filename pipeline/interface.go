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

// Package pipeline implements the handler chain every Channel drives
// inbound and outbound events through: a doubly-linked list of handler
// contexts between head and tail sentinels, with thread-affine dispatch.
package pipeline

import (
	"github.com/nabbar/nexio/errors"
	"github.com/nabbar/nexio/promise"
)

// Executor is the minimal scheduling contract a HandlerContext needs;
// satisfied by eventloop.Loop without importing it directly.
type Executor interface {
	InEventLoop() bool
	Execute(task func())
}

// HandlerState tracks a context's add/remove lifecycle.
type HandlerState uint8

const (
	StateInit HandlerState = iota
	StateAddPending
	StateAddComplete
	StateRemoveComplete
)

// Handler is the base every pipeline handler implements. Concrete
// handlers additionally implement InboundHandler and/or OutboundHandler;
// a context computes isInbound/isOutbound once at add time via type
// assertion against those two interfaces.
type Handler interface {
	// HandlerAdded is called once the handler is attached to a pipeline
	// (immediately if the channel is already registered, otherwise at
	// registration time).
	HandlerAdded(ctx HandlerContext)
	// HandlerRemoved is called once the handler is detached.
	HandlerRemoved(ctx HandlerContext)
}

// Sharable is implemented by handlers safe to add to more than one
// pipeline concurrently. For a handler that doesn't implement it, a
// second Add of the same instance to the same pipeline fails with
// ErrorNotShareable; adding it to a different pipeline is not detected.
type Sharable interface {
	Shareable() bool
}

// InboundHandler receives events originating from the transport or an
// upstream handler's Fire* call.
type InboundHandler interface {
	Handler
	ChannelRegistered(ctx HandlerContext)
	ChannelUnregistered(ctx HandlerContext)
	ChannelActive(ctx HandlerContext)
	ChannelInactive(ctx HandlerContext)
	ChannelRead(ctx HandlerContext, msg interface{})
	ChannelReadComplete(ctx HandlerContext)
	ChannelWritabilityChanged(ctx HandlerContext)
	UserEventTriggered(ctx HandlerContext, evt interface{})
	ExceptionCaught(ctx HandlerContext, cause error)
}

// OutboundHandler receives operations originating from user code or a
// downstream handler re-invoking the operation on its context.
type OutboundHandler interface {
	Handler
	Bind(ctx HandlerContext, localAddr string, prom promise.Promise)
	Connect(ctx HandlerContext, remoteAddr string, prom promise.Promise)
	Disconnect(ctx HandlerContext, prom promise.Promise)
	Close(ctx HandlerContext, prom promise.Promise)
	Deregister(ctx HandlerContext, prom promise.Promise)
	Read(ctx HandlerContext)
	Write(ctx HandlerContext, msg interface{}, prom promise.Promise)
	Flush(ctx HandlerContext)
}

// HandlerContext is a handler's view of its position in the pipeline: it
// can continue propagation (Fire*/outbound re-invocation) or terminate
// it by simply not calling through.
type HandlerContext interface {
	Name() string
	Pipeline() Pipeline
	Handler() Handler
	Executor() Executor
	State() HandlerState
	IsInbound() bool
	IsOutbound() bool

	FireChannelRegistered()
	FireChannelUnregistered()
	FireChannelActive()
	FireChannelInactive()
	FireChannelRead(msg interface{})
	FireChannelReadComplete()
	FireChannelWritabilityChanged()
	FireUserEventTriggered(evt interface{})
	FireExceptionCaught(cause error)

	Bind(localAddr string, prom promise.Promise)
	Connect(remoteAddr string, prom promise.Promise)
	Disconnect(prom promise.Promise)
	Close(prom promise.Promise)
	Deregister(prom promise.Promise)
	Read()
	Write(msg interface{}, prom promise.Promise)
	Flush()
}

// Pipeline is the doubly-linked handler chain owned by one channel.
type Pipeline interface {
	AddFirst(name string, h Handler) errors.Error
	AddLast(name string, h Handler) errors.Error
	AddBefore(baseName, name string, h Handler) errors.Error
	AddAfter(baseName, name string, h Handler) errors.Error
	Remove(name string) errors.Error
	Get(name string) Handler
	Context(name string) HandlerContext

	// OnRegistered marks the channel registered, flushing any
	// deferred handlerAdded callbacks and firing channelRegistered.
	OnRegistered()

	FireChannelRegistered()
	FireChannelUnregistered()
	FireChannelActive()
	FireChannelInactive()
	FireChannelRead(msg interface{})
	FireChannelReadComplete()
	FireChannelWritabilityChanged()
	FireUserEventTriggered(evt interface{})
	FireExceptionCaught(cause error)

	Bind(localAddr string, prom promise.Promise)
	Connect(remoteAddr string, prom promise.Promise)
	Disconnect(prom promise.Promise)
	Close(prom promise.Promise)
	Deregister(prom promise.Promise)
	Read()
	Write(msg interface{}, prom promise.Promise)
	Flush()
}

// Tail is implemented by the pipeline's terminal inbound handler: it
// releases unhandled channelRead messages and logs stray
// exceptionCaught events instead of panicking on a missing user
// handler.
type Tail interface {
	InboundHandler
}

// Head is implemented by the pipeline's terminal outbound handler: the
// final outbound hop, which invokes the channel's Unsafe adapter.
type Head interface {
	OutboundHandler
}
