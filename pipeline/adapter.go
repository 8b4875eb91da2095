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

import "github.com/nabbar/nexio/promise"

// InboundAdapter gives inbound handlers a fire-through default for
// every method; embed it and override only the events a handler cares
// about, the way a ChannelInboundHandlerAdapter would.
type InboundAdapter struct{}

func (InboundAdapter) HandlerAdded(ctx HandlerContext)   {}
func (InboundAdapter) HandlerRemoved(ctx HandlerContext) {}

func (InboundAdapter) ChannelRegistered(ctx HandlerContext)   { ctx.FireChannelRegistered() }
func (InboundAdapter) ChannelUnregistered(ctx HandlerContext) { ctx.FireChannelUnregistered() }
func (InboundAdapter) ChannelActive(ctx HandlerContext)       { ctx.FireChannelActive() }
func (InboundAdapter) ChannelInactive(ctx HandlerContext)     { ctx.FireChannelInactive() }
func (InboundAdapter) ChannelRead(ctx HandlerContext, msg interface{}) {
	ctx.FireChannelRead(msg)
}
func (InboundAdapter) ChannelReadComplete(ctx HandlerContext) { ctx.FireChannelReadComplete() }
func (InboundAdapter) ChannelWritabilityChanged(ctx HandlerContext) {
	ctx.FireChannelWritabilityChanged()
}
func (InboundAdapter) UserEventTriggered(ctx HandlerContext, evt interface{}) {
	ctx.FireUserEventTriggered(evt)
}
func (InboundAdapter) ExceptionCaught(ctx HandlerContext, cause error) {
	ctx.FireExceptionCaught(cause)
}

// OutboundAdapter gives outbound handlers a pass-through default for
// every method.
type OutboundAdapter struct{}

func (OutboundAdapter) HandlerAdded(ctx HandlerContext)   {}
func (OutboundAdapter) HandlerRemoved(ctx HandlerContext) {}

func (OutboundAdapter) Bind(ctx HandlerContext, localAddr string, prom promise.Promise) {
	ctx.Bind(localAddr, prom)
}
func (OutboundAdapter) Connect(ctx HandlerContext, remoteAddr string, prom promise.Promise) {
	ctx.Connect(remoteAddr, prom)
}
func (OutboundAdapter) Disconnect(ctx HandlerContext, prom promise.Promise) {
	ctx.Disconnect(prom)
}
func (OutboundAdapter) Close(ctx HandlerContext, prom promise.Promise) {
	ctx.Close(prom)
}
func (OutboundAdapter) Deregister(ctx HandlerContext, prom promise.Promise) {
	ctx.Deregister(prom)
}
func (OutboundAdapter) Read(ctx HandlerContext) { ctx.Read() }
func (OutboundAdapter) Write(ctx HandlerContext, msg interface{}, prom promise.Promise) {
	ctx.Write(msg, prom)
}
func (OutboundAdapter) Flush(ctx HandlerContext) { ctx.Flush() }
