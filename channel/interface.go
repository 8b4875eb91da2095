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

// Package channel ties the event loop, pipeline, outbound buffer and
// pooled allocator into the single unit user code drives: register,
// bind/connect, read/write, close.
package channel

import (
	"github.com/nabbar/nexio/buffer"
	"github.com/nabbar/nexio/errors"
	"github.com/nabbar/nexio/eventloop"
	"github.com/nabbar/nexio/outbound"
	"github.com/nabbar/nexio/pipeline"
	"github.com/nabbar/nexio/promise"
)

// State is the channel's lifecycle position.
type State uint8

const (
	StateUnregistered State = iota
	StateRegistered
	StateActive
	StateInactive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StateRegistered:
		return "registered"
	case StateActive:
		return "active"
	case StateInactive:
		return "inactive"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// ChannelInputShutdown is fired as a userEventTriggered event when the
// transport reports EOF and half-close is enabled, instead of closing
// the channel outright.
type ChannelInputShutdown struct{}

// Transport is the raw byte-stream backend a channel drives; the
// concrete network/file implementation is outside this module's scope
// (see channel/loopback.go for the in-memory stand-in used by tests).
type Transport interface {
	// FD identifies the transport for the eventloop.Source.
	FD() uintptr
	// DoRead reads into p, returning 0, nil on would-block.
	DoRead(p []byte) (int, error)
	// DoWrite writes p, returning 0, nil on would-block (partial
	// progress is a valid non-error return less than len(p)).
	DoWrite(p []byte) (int, error)
	// DoConnect/DoBind perform the transport-specific handshake.
	DoConnect(remoteAddr string) error
	DoBind(localAddr string) error
	LocalAddress() string
	RemoteAddress() string
	// DoClose releases the transport's resources.
	DoClose() error
}

// Unsafe exposes the raw operations only the channel's own pipeline
// head and read/write dispatch loops may call.
type Unsafe interface {
	Bind(localAddr string, prom promise.Promise)
	Connect(remoteAddr string, prom promise.Promise)
	Disconnect(prom promise.Promise)
	Close(prom promise.Promise)
	CloseForcibly() errors.Error
	Deregister(prom promise.Promise)
	BeginRead()
	Write(msg interface{}, prom promise.Promise)
	Flush()
	VoidPromise() promise.Promise
	OutboundBuffer() outbound.Buffer
	RecvBufAllocHandle() RecvByteBufAllocatorHandle
}

// Channel is the public contract user code and handlers drive.
type Channel interface {
	ID() string
	EventLoop() eventloop.Loop
	Parent() Channel
	Config() *Config

	IsOpen() bool
	IsRegistered() bool
	IsActive() bool
	State() State

	LocalAddress() string
	RemoteAddress() string

	Pipeline() pipeline.Pipeline
	Alloc() buffer.Allocator

	// Register attaches the channel to loop, making it pollable; the
	// returned Future completes once channelRegistered has fired.
	Register(loop eventloop.Loop) promise.Future

	Bind(localAddr string) promise.Future
	Connect(remoteAddr string) promise.Future
	Disconnect() promise.Future
	Close() promise.Future
	Deregister() promise.Future
	Read() Channel
	Write(msg interface{}) promise.Future
	Flush() Channel
	WriteAndFlush(msg interface{}) promise.Future
}
