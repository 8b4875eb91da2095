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

// UnsafeInvoker is the channel-provided bridge from the pipeline's head
// context to the real transport; implemented by channel.Unsafe.
type UnsafeInvoker interface {
	Bind(localAddr string, prom promise.Promise)
	Connect(remoteAddr string, prom promise.Promise)
	Disconnect(prom promise.Promise)
	Close(prom promise.Promise)
	Deregister(prom promise.Promise)
	BeginRead()
	Write(msg interface{}, prom promise.Promise)
	Flush()
}

// headHandler is the pipeline's fixed outbound terminal: every outbound
// operation that walks past the last user handler lands here and is
// handed to the channel's Unsafe adapter.
type headHandler struct {
	unsafe UnsafeInvoker
}

func (h *headHandler) HandlerAdded(ctx HandlerContext)   {}
func (h *headHandler) HandlerRemoved(ctx HandlerContext) {}

func (h *headHandler) Bind(ctx HandlerContext, localAddr string, prom promise.Promise) {
	h.unsafe.Bind(localAddr, prom)
}

func (h *headHandler) Connect(ctx HandlerContext, remoteAddr string, prom promise.Promise) {
	h.unsafe.Connect(remoteAddr, prom)
}

func (h *headHandler) Disconnect(ctx HandlerContext, prom promise.Promise) {
	h.unsafe.Disconnect(prom)
}

func (h *headHandler) Close(ctx HandlerContext, prom promise.Promise) {
	h.unsafe.Close(prom)
}

func (h *headHandler) Deregister(ctx HandlerContext, prom promise.Promise) {
	h.unsafe.Deregister(prom)
}

func (h *headHandler) Read(ctx HandlerContext) {
	h.unsafe.BeginRead()
}

func (h *headHandler) Write(ctx HandlerContext, msg interface{}, prom promise.Promise) {
	h.unsafe.Write(msg, prom)
}

func (h *headHandler) Flush(ctx HandlerContext) {
	h.unsafe.Flush()
}
