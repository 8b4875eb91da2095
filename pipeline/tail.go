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

import "github.com/nabbar/nexio/refcount"

// DefaultTail is the pipeline's fixed inbound terminal: it releases any
// channelRead message that reached it unhandled and logs stray
// exceptionCaught events instead of letting them vanish silently.
type DefaultTail struct {
	InboundAdapter
	logger Logger
}

// NewDefaultTail returns a DefaultTail reporting through logger (nil is
// a valid, silent logger).
func NewDefaultTail(logger Logger) *DefaultTail {
	return &DefaultTail{logger: logger}
}

func (t *DefaultTail) ChannelRead(ctx HandlerContext, msg interface{}) {
	if rc, ok := msg.(refcount.ReferenceCounted); ok {
		_, _ = rc.Release()
	}
}

func (t *DefaultTail) ChannelReadComplete(ctx HandlerContext) {}

func (t *DefaultTail) ExceptionCaught(ctx HandlerContext, cause error) {
	if t.logger != nil {
		t.logger.Warning("unhandled exception reached pipeline tail", nil, cause)
	}
}
