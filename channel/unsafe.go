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
	"io"
	"sync/atomic"

	"github.com/nabbar/nexio/buffer"
	"github.com/nabbar/nexio/errors"
	"github.com/nabbar/nexio/outbound"
	"github.com/nabbar/nexio/promise"
)

// unsafeAdapter is the channel's raw-operation surface: the pipeline
// head invokes it directly, and it in turn drives the Transport and the
// outbound buffer. Only framework code (the pipeline head, the event
// loop) ever touches it.
type unsafeAdapter struct {
	ch   *impl
	out  outbound.Buffer
	recv RecvByteBufAllocatorHandle

	writeInterest atomic.Bool
}

// --- eventloop.Registrable ---

func (u *unsafeAdapter) FD() uintptr { return u.ch.transport.FD() }

func (u *unsafeAdapter) OnReadReady() { u.doRead() }

func (u *unsafeAdapter) OnWriteReady() { u.forceFlush() }

// --- pipeline.UnsafeInvoker / channel.Unsafe ---

func (u *unsafeAdapter) Bind(localAddr string, prom promise.Promise) {
	if err := u.ch.transport.DoBind(localAddr); err != nil {
		prom.SetFailure(ErrorIO.IfError(err))
		return
	}
	prom.SetSuccess()
	u.activate()
}

func (u *unsafeAdapter) Connect(remoteAddr string, prom promise.Promise) {
	if err := u.ch.transport.DoConnect(remoteAddr); err != nil {
		prom.SetFailure(ErrorIO.IfError(err))
		return
	}
	prom.SetSuccess()
	u.activate()
}

// activate transitions registered -> active and begins auto-reading,
// matching "active on bind/connect completion" (4.D).
func (u *unsafeAdapter) activate() {
	if u.ch.State() != StateRegistered {
		return
	}
	u.ch.state.Store(int32(StateActive))
	u.ch.pipe.FireChannelActive()
	if u.ch.IsAutoRead() {
		u.doRead()
	}
}

func (u *unsafeAdapter) Disconnect(prom promise.Promise) {
	if u.ch.State() == StateActive {
		u.ch.state.Store(int32(StateInactive))
		u.ch.pipe.FireChannelInactive()
	}
	prom.SetSuccess()
}

func (u *unsafeAdapter) Close(prom promise.Promise) {
	if u.ch.State() == StateClosed {
		prom.SetSuccess()
		return
	}

	wasActive := u.ch.IsActive()
	wasRegistered := u.ch.IsRegistered()

	u.out.Close()

	if err := u.ch.transport.DoClose(); err != nil {
		prom.SetFailure(ErrorIO.IfError(err))
	} else {
		prom.SetSuccess()
	}

	u.ch.state.Store(int32(StateClosed))

	if wasActive {
		u.ch.pipe.FireChannelInactive()
	}
	if wasRegistered {
		if u.ch.loop != nil {
			_ = u.ch.loop.Deregister(u)
		}
		u.ch.pipe.FireChannelUnregistered()
	}
}

func (u *unsafeAdapter) CloseForcibly() errors.Error {
	u.out.Close()
	u.ch.state.Store(int32(StateClosed))
	return ErrorIO.IfError(u.ch.transport.DoClose())
}

func (u *unsafeAdapter) Deregister(prom promise.Promise) {
	if !u.ch.IsRegistered() {
		prom.SetFailure(ErrorNotRegistered.Error(nil))
		return
	}
	if u.ch.loop != nil {
		if err := u.ch.loop.Deregister(u); err != nil {
			prom.SetFailure(err)
			return
		}
	}
	u.ch.state.Store(int32(StateUnregistered))
	prom.SetSuccess()
	u.ch.pipe.FireChannelUnregistered()
}

func (u *unsafeAdapter) VoidPromise() promise.Promise { return promise.New(u.ch) }

func (u *unsafeAdapter) OutboundBuffer() outbound.Buffer { return u.out }

func (u *unsafeAdapter) RecvBufAllocHandle() RecvByteBufAllocatorHandle { return u.recv }

// Write enqueues msg (which must be a buffer.ByteBuf) into the outbound
// buffer; no I/O happens until Flush.
func (u *unsafeAdapter) Write(msg interface{}, prom promise.Promise) {
	buf, ok := msg.(buffer.ByteBuf)
	if !ok {
		prom.SetFailure(ErrorIllegalArgument.Error(nil))
		return
	}
	if err := u.out.AddMessage(buf, int64(buf.ReadableBytes()), prom); err != nil {
		prom.SetFailure(err)
	}
}

func (u *unsafeAdapter) Flush() {
	u.out.AddFlush()
	u.forceFlush()
}

func (u *unsafeAdapter) BeginRead() {
	u.doRead()
}

// doRead implements the read-dispatch loop (4.D): allocate per the
// adaptive guess, read once, fire channelRead, repeat until zero bytes,
// EOF, or the handle advises stopping; then fire channelReadComplete.
func (u *unsafeAdapter) doRead() {
	if !u.ch.IsActive() {
		return
	}

	u.recv.Reset()
	readAny := false

	for {
		guess := u.recv.Guess()
		scratch := make([]byte, guess)

		n, rerr := u.ch.transport.DoRead(scratch)
		u.recv.Record(n)

		if n > 0 {
			readAny = true

			buf, aerr := u.recv.AllocateBuffer(u.ch.alloc)
			if aerr != nil {
				u.ch.pipe.FireExceptionCaught(aerr)
				break
			}
			if werr := buf.WriteBytes(scratch[:n]); werr != nil {
				u.ch.pipe.FireExceptionCaught(werr)
				break
			}
			u.ch.pipe.FireChannelRead(buf)
		}

		if rerr == io.EOF {
			if u.ch.cfg.Options().AllowHalfClose {
				u.ch.pipe.FireUserEventTriggered(ChannelInputShutdown{})
			} else {
				u.Close(promise.New(u.ch))
			}
			break
		}
		if rerr != nil {
			u.ch.pipe.FireExceptionCaught(ErrorIO.IfError(rerr))
			break
		}
		if n == 0 {
			break
		}
		if !u.recv.ContinueReading() {
			break
		}
	}

	if readAny {
		u.ch.pipe.FireChannelReadComplete()
	}
}

// forceFlush drains the outbound buffer via the transport, bounded by
// the configured write spin count; on would-block it registers
// write-readiness interest so OnWriteReady calls back in.
func (u *unsafeAdapter) forceFlush() {
	if !u.ch.IsActive() {
		return
	}

	spins := u.ch.cfg.Options().WriteSpinCount
	for i := 0; i < spins; i++ {
		if u.out.TotalPendingBytes() == 0 {
			u.setWriteInterest(false)
			return
		}

		bufs := u.out.NioBuffers(16, 1<<20)
		if len(bufs) == 0 {
			return
		}

		n, err := u.ch.transport.DoWrite(bufs[0])
		if err != nil {
			cause := ErrorIO.IfError(err)
			u.out.FailFlushed(cause)
			u.ch.pipe.FireExceptionCaught(cause)
			return
		}
		if n == 0 {
			u.setWriteInterest(true)
			return
		}
		u.out.RemoveBytes(int64(n))
	}

	if u.out.TotalPendingBytes() > 0 {
		u.setWriteInterest(true)
	}
}

func (u *unsafeAdapter) setWriteInterest(want bool) {
	if u.ch.loop == nil || u.writeInterest.Load() == want {
		return
	}
	if err := u.ch.loop.Register(u, true, want); err == nil {
		u.writeInterest.Store(want)
	}
}
