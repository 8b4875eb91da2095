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

package channel

import (
	"sync/atomic"

	"github.com/nabbar/nexio/buffer"
	"github.com/nabbar/nexio/errors"
	"github.com/nabbar/nexio/eventloop"
	"github.com/nabbar/nexio/outbound"
	"github.com/nabbar/nexio/pipeline"
	"github.com/nabbar/nexio/promise"
)

// impl is the public Channel. Its raw operations live on a separate
// unsafeAdapter (mirroring AbstractChannel/AbstractUnsafe) since the two
// roles need a Write method with different signatures.
type impl struct {
	id        string
	parent    Channel
	loop      eventloop.Loop
	cfg       *Config
	transport Transport
	pipe      pipeline.Pipeline
	alloc     buffer.Allocator
	logger    pipeline.Logger

	state    atomic.Int32
	autoRead atomic.Bool

	unsafe *unsafeAdapter
}

// New builds a Channel over transport. alloc may be nil, in which case
// an UnpooledAllocator is used; raw configures Options via NewConfig.
func New(transport Transport, raw map[string]interface{}, alloc buffer.Allocator, parent Channel, logger pipeline.Logger) (Channel, errors.Error) {
	if transport == nil {
		return nil, ErrorIllegalArgument.Error(nil)
	}

	cfg, err := NewConfig(raw)
	if err != nil {
		return nil, err
	}

	if alloc == nil {
		alloc = buffer.UnpooledAllocator{}
	}

	c := &impl{
		id:        newChannelID(),
		parent:    parent,
		cfg:       cfg,
		transport: transport,
		alloc:     alloc,
		logger:    logger,
	}
	c.state.Store(int32(StateUnregistered))
	c.autoRead.Store(cfg.Options().AutoRead)

	u := &unsafeAdapter{ch: c}
	u.out = outbound.New()
	if e := u.out.SetWatermarks(cfg.Options().LowWaterMark, cfg.Options().HighWaterMark); e != nil {
		return nil, e
	}
	u.out.OnWritabilityChanged(func(writable bool) { c.pipe.FireChannelWritabilityChanged() })
	u.recv = newRecvBufAllocHandle(cfg.Options().InitialRecvBuffer, cfg.Options().MaxRecvBuffer, cfg.Options().WriteSpinCount, c.IsAutoRead)
	c.unsafe = u

	c.pipe = pipeline.New(u, pipeline.NewDefaultTail(logger), logger)

	return c, nil
}

func (c *impl) ID() string               { return c.id }
func (c *impl) EventLoop() eventloop.Loop { return c.loop }
func (c *impl) Parent() Channel           { return c.parent }
func (c *impl) Config() *Config           { return c.cfg }

func (c *impl) State() State { return State(c.state.Load()) }

func (c *impl) IsOpen() bool { return c.State() != StateClosed }

func (c *impl) IsRegistered() bool {
	switch c.State() {
	case StateRegistered, StateActive, StateInactive:
		return true
	}
	return false
}

func (c *impl) IsActive() bool { return c.State() == StateActive }

// IsAutoRead reports whether the read-dispatch loop should keep reading
// without waiting for an explicit Read() call.
func (c *impl) IsAutoRead() bool { return c.autoRead.Load() }

func (c *impl) SetAutoRead(v bool) { c.autoRead.Store(v) }

func (c *impl) LocalAddress() string  { return c.transport.LocalAddress() }
func (c *impl) RemoteAddress() string { return c.transport.RemoteAddress() }

func (c *impl) Pipeline() pipeline.Pipeline { return c.pipe }
func (c *impl) Alloc() buffer.Allocator     { return c.alloc }

// --- promise.Executor / pipeline.Executor: every Channel is its own
// default dispatch executor, delegating to its event loop once
// registered and running inline beforehand. ---

func (c *impl) InEventLoop() bool {
	return c.loop != nil && c.loop.InEventLoop()
}

func (c *impl) Execute(task func()) {
	if c.loop != nil {
		_ = c.loop.Execute(task)
		return
	}
	task()
}

// --- public contract: each returns a Future completed by the
// corresponding raw operation. ---

func (c *impl) Register(loop eventloop.Loop) promise.Future {
	prom := promise.New(c)
	if c.State() != StateUnregistered {
		prom.SetFailure(ErrorAlreadyRegistered.Error(nil))
		return prom
	}

	c.loop = loop
	if e := loop.Register(c.unsafe, true, false); e != nil {
		prom.SetFailure(e)
		return prom
	}

	c.state.Store(int32(StateRegistered))
	c.pipe.OnRegistered()
	prom.SetSuccess()
	return prom
}

func (c *impl) Bind(localAddr string) promise.Future {
	prom := promise.New(c)
	c.pipe.Bind(localAddr, prom)
	return prom
}

func (c *impl) Connect(remoteAddr string) promise.Future {
	prom := promise.New(c)
	c.pipe.Connect(remoteAddr, prom)
	return prom
}

func (c *impl) Disconnect() promise.Future {
	prom := promise.New(c)
	c.pipe.Disconnect(prom)
	return prom
}

func (c *impl) Close() promise.Future {
	prom := promise.New(c)
	c.pipe.Close(prom)
	return prom
}

func (c *impl) Deregister() promise.Future {
	prom := promise.New(c)
	c.pipe.Deregister(prom)
	return prom
}

func (c *impl) Read() Channel {
	c.pipe.Read()
	return c
}

func (c *impl) Write(msg interface{}) promise.Future {
	prom := promise.New(c)
	c.pipe.Write(msg, prom)
	return prom
}

func (c *impl) Flush() Channel {
	c.pipe.Flush()
	return c
}

func (c *impl) WriteAndFlush(msg interface{}) promise.Future {
	prom := promise.New(c)
	c.pipe.Write(msg, prom)
	c.pipe.Flush()
	return prom
}
