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
	"bytes"
	"io"
	"sync"
	"sync/atomic"
)

var loopbackFDSeq uint64

// LoopbackTransport is an in-memory Transport stand-in: two instances
// created by NewLoopbackPair feed each other's read side from the
// other's write side. It exists only to exercise Channel end to end in
// tests; it is not a production transport.
type LoopbackTransport struct {
	fd     uintptr
	mu     sync.Mutex
	rx     bytes.Buffer
	peer   *LoopbackTransport
	local  string
	remote string
	closed bool
}

// NewLoopbackPair returns two Transports, each other's peer.
func NewLoopbackPair(localAddr, remoteAddr string) (*LoopbackTransport, *LoopbackTransport) {
	a := &LoopbackTransport{fd: uintptr(atomic.AddUint64(&loopbackFDSeq, 1)), local: localAddr, remote: remoteAddr}
	b := &LoopbackTransport{fd: uintptr(atomic.AddUint64(&loopbackFDSeq, 1)), local: remoteAddr, remote: localAddr}
	a.peer, b.peer = b, a
	return a, b
}

func (l *LoopbackTransport) FD() uintptr { return l.fd }

func (l *LoopbackTransport) DoRead(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rx.Len() == 0 {
		if l.closed {
			return 0, io.EOF
		}
		return 0, nil
	}
	return l.rx.Read(p)
}

func (l *LoopbackTransport) DoWrite(p []byte) (int, error) {
	l.mu.Lock()
	peer := l.peer
	closed := l.closed
	l.mu.Unlock()

	if closed || peer == nil {
		return 0, io.ErrClosedPipe
	}

	peer.mu.Lock()
	defer peer.mu.Unlock()
	return peer.rx.Write(p)
}

func (l *LoopbackTransport) DoConnect(remoteAddr string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.remote = remoteAddr
	return nil
}

func (l *LoopbackTransport) DoBind(localAddr string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.local = localAddr
	return nil
}

func (l *LoopbackTransport) LocalAddress() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.local
}

func (l *LoopbackTransport) RemoteAddress() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remote
}

func (l *LoopbackTransport) DoClose() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}
