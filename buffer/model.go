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

package buffer

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/nabbar/nexio/errors"
	"github.com/nabbar/nexio/refcount"
)

// byteBuf is the heap-backed ByteBuf implementation. Derived views (slice,
// duplicate) share the root's counter and, for duplicates, the root's
// storage slice outright; slices re-slice the same backing array.
type byteBuf struct {
	storage []byte
	maxCap  int

	rIdx, wIdx       int
	markedR, markedW int

	isView bool // capacity-changing ops fail on views

	counter *refcount.Counter
	alloc   Allocator
}

// New returns an unpooled heap-backed ByteBuf with the given initial and
// maximum capacity.
func New(initialCapacity, maxCapacity int) ByteBuf {
	b := &byteBuf{
		storage: make([]byte, initialCapacity),
		maxCap:  maxCapacity,
	}
	b.counter = refcount.NewCounter(func() {})
	return b
}

// NewFrom wraps an existing slice without copying; len(data) becomes both
// the initial capacity and the initial writer index (the data is treated
// as already-written, readable content).
func NewFrom(data []byte) ByteBuf {
	b := &byteBuf{
		storage: data,
		maxCap:  len(data),
		wIdx:    len(data),
	}
	b.counter = refcount.NewCounter(func() {})
	return b
}

// NewPooled wraps storage owned by an external allocator (the arena's
// pool package); dealloc is invoked exactly once, when the buffer's
// reference count reaches zero, to return the storage to its owner. The
// writer cursor starts at zero: unlike NewFrom, pooled storage is reused
// capacity, not pre-existing content.
func NewPooled(storage []byte, maxCapacity int, dealloc refcount.Deallocator) ByteBuf {
	b := &byteBuf{
		storage: storage,
		maxCap:  maxCapacity,
	}
	b.counter = refcount.NewCounter(dealloc)
	return b
}

// NewPooledTracked is NewPooled plus leak sampling: if det is non-nil, the
// returned buffer's counter is registered with det under kind so a
// finalized-but-never-released buffer surfaces through det's LeakHook.
func NewPooledTracked(storage []byte, maxCapacity int, dealloc refcount.Deallocator, det *refcount.Detector, kind string) ByteBuf {
	b := &byteBuf{
		storage: storage,
		maxCap:  maxCapacity,
	}
	b.counter = refcount.NewCounterTracked(dealloc, det, kind)
	return b
}

func (b *byteBuf) capacity() int {
	return len(b.storage)
}

func (b *byteBuf) checkAlive() errors.Error {
	if b.counter.RefCnt() <= 0 {
		return ErrorIllegalReferenceCount.Error(nil)
	}
	return nil
}

func (b *byteBuf) checkIndex(index, length int) errors.Error {
	if index < 0 || length < 0 || index+length > b.capacity() {
		return ErrorIndexOutOfBounds.Error(nil)
	}
	return nil
}

// --- refcount.ReferenceCounted ---

func (b *byteBuf) RefCnt() int32 {
	return b.counter.RefCnt()
}

func (b *byteBuf) Retain() (refcount.ReferenceCounted, errors.Error) {
	_, err := b.counter.Retain()
	return b, err
}

func (b *byteBuf) RetainN(n int32) (refcount.ReferenceCounted, errors.Error) {
	_, err := b.counter.RetainN(n)
	return b, err
}

func (b *byteBuf) Release() (bool, errors.Error) {
	return b.counter.Release()
}

func (b *byteBuf) ReleaseN(n int32) (bool, errors.Error) {
	return b.counter.ReleaseN(n)
}

func (b *byteBuf) Touch(hint interface{}) refcount.ReferenceCounted {
	b.counter.Touch(hint)
	return b
}

// --- capacity & cursors ---

func (b *byteBuf) Capacity() int    { return b.capacity() }
func (b *byteBuf) MaxCapacity() int { return b.maxCap }

func (b *byteBuf) SetCapacity(newCapacity int) (ByteBuf, errors.Error) {
	if b.isView {
		return b, ErrorIllegalState.Error(nil)
	}
	if newCapacity < 0 || newCapacity > b.maxCap {
		return b, ErrorIllegalArgument.Error(nil)
	}

	old := b.storage
	next := make([]byte, newCapacity)
	n := newCapacity
	if len(old) < n {
		n = len(old)
	}
	copy(next, old[:n])
	b.storage = next

	if b.wIdx > newCapacity {
		b.wIdx = newCapacity
	}
	if b.rIdx > b.wIdx {
		b.rIdx = b.wIdx
	}

	return b, nil
}

func (b *byteBuf) ReaderIndex() int { return b.rIdx }
func (b *byteBuf) WriterIndex() int { return b.wIdx }

func (b *byteBuf) SetReaderIndex(index int) errors.Error {
	if index < 0 || index > b.wIdx {
		return ErrorIndexOutOfBounds.Error(nil)
	}
	b.rIdx = index
	return nil
}

func (b *byteBuf) SetWriterIndex(index int) errors.Error {
	if index < b.rIdx || index > b.capacity() {
		return ErrorIndexOutOfBounds.Error(nil)
	}
	b.wIdx = index
	return nil
}

func (b *byteBuf) MarkReaderIndex() { b.markedR = b.rIdx }

func (b *byteBuf) ResetReaderIndex() errors.Error {
	return b.SetReaderIndex(b.markedR)
}

func (b *byteBuf) MarkWriterIndex() { b.markedW = b.wIdx }

func (b *byteBuf) ResetWriterIndex() errors.Error {
	return b.SetWriterIndex(b.markedW)
}

func (b *byteBuf) Clear() {
	b.rIdx, b.wIdx = 0, 0
	b.markedR, b.markedW = 0, 0
}

func (b *byteBuf) DiscardReadBytes() {
	if b.rIdx == 0 {
		return
	}
	n := copy(b.storage, b.storage[b.rIdx:b.wIdx])
	b.wIdx = n
	b.rIdx = 0
	b.markedR, b.markedW = 0, 0
}

func (b *byteBuf) ReadableBytes() int { return b.wIdx - b.rIdx }
func (b *byteBuf) WritableBytes() int { return b.capacity() - b.wIdx }
func (b *byteBuf) IsReadable() bool   { return b.ReadableBytes() > 0 }
func (b *byteBuf) IsWritable() bool   { return b.WritableBytes() > 0 }
func (b *byteBuf) IsWritableN(n int) bool {
	return b.WritableBytes() >= n
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func (b *byteBuf) EnsureWritable(minWritableBytes int) errors.Error {
	if b.IsWritableN(minWritableBytes) {
		return nil
	}
	if b.isView {
		return ErrorIllegalState.Error(nil)
	}

	want := nextPowerOfTwo(b.wIdx + minWritableBytes)
	if want > b.maxCap {
		want = b.maxCap
	}
	if want < b.wIdx+minWritableBytes {
		return ErrorIllegalArgument.Error(nil)
	}

	_, err := b.SetCapacity(want)
	return err
}

// --- absolute accessors ---

func (b *byteBuf) GetByte(index int) (byte, errors.Error) {
	if err := b.checkAlive(); err != nil {
		return 0, err
	}
	if err := b.checkIndex(index, 1); err != nil {
		return 0, err
	}
	return b.storage[index], nil
}

func (b *byteBuf) SetByte(index int, value byte) errors.Error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkIndex(index, 1); err != nil {
		return err
	}
	b.storage[index] = value
	return nil
}

func (b *byteBuf) GetBytes(index int, dst []byte) errors.Error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkIndex(index, len(dst)); err != nil {
		return err
	}
	copy(dst, b.storage[index:index+len(dst)])
	return nil
}

func (b *byteBuf) SetBytes(index int, src []byte) errors.Error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkIndex(index, len(src)); err != nil {
		return err
	}
	copy(b.storage[index:index+len(src)], src)
	return nil
}

func (b *byteBuf) GetUint16(index int) (uint16, errors.Error) {
	if err := b.checkAlive(); err != nil {
		return 0, err
	}
	if err := b.checkIndex(index, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b.storage[index:]), nil
}

func (b *byteBuf) GetUint16LE(index int) (uint16, errors.Error) {
	if err := b.checkAlive(); err != nil {
		return 0, err
	}
	if err := b.checkIndex(index, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b.storage[index:]), nil
}

func (b *byteBuf) SetUint16(index int, value uint16) errors.Error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkIndex(index, 2); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(b.storage[index:], value)
	return nil
}

func (b *byteBuf) SetUint16LE(index int, value uint16) errors.Error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkIndex(index, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b.storage[index:], value)
	return nil
}

func (b *byteBuf) GetInt16(index int) (int16, errors.Error) {
	v, err := b.GetUint16(index)
	return int16(v), err
}
func (b *byteBuf) GetInt16LE(index int) (int16, errors.Error) {
	v, err := b.GetUint16LE(index)
	return int16(v), err
}
func (b *byteBuf) SetInt16(index int, value int16) errors.Error {
	return b.SetUint16(index, uint16(value))
}
func (b *byteBuf) SetInt16LE(index int, value int16) errors.Error {
	return b.SetUint16LE(index, uint16(value))
}

func (b *byteBuf) GetUint24(index int) (uint32, errors.Error) {
	if err := b.checkAlive(); err != nil {
		return 0, err
	}
	if err := b.checkIndex(index, 3); err != nil {
		return 0, err
	}
	v := uint32(b.storage[index])<<16 | uint32(b.storage[index+1])<<8 | uint32(b.storage[index+2])
	return v, nil
}

func (b *byteBuf) GetUint24LE(index int) (uint32, errors.Error) {
	if err := b.checkAlive(); err != nil {
		return 0, err
	}
	if err := b.checkIndex(index, 3); err != nil {
		return 0, err
	}
	v := uint32(b.storage[index]) | uint32(b.storage[index+1])<<8 | uint32(b.storage[index+2])<<16
	return v, nil
}

func (b *byteBuf) SetUint24(index int, value uint32) errors.Error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkIndex(index, 3); err != nil {
		return err
	}
	b.storage[index] = byte(value >> 16)
	b.storage[index+1] = byte(value >> 8)
	b.storage[index+2] = byte(value)
	return nil
}

func (b *byteBuf) SetUint24LE(index int, value uint32) errors.Error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkIndex(index, 3); err != nil {
		return err
	}
	b.storage[index] = byte(value)
	b.storage[index+1] = byte(value >> 8)
	b.storage[index+2] = byte(value >> 16)
	return nil
}

func (b *byteBuf) GetUint32(index int) (uint32, errors.Error) {
	if err := b.checkAlive(); err != nil {
		return 0, err
	}
	if err := b.checkIndex(index, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b.storage[index:]), nil
}

func (b *byteBuf) GetUint32LE(index int) (uint32, errors.Error) {
	if err := b.checkAlive(); err != nil {
		return 0, err
	}
	if err := b.checkIndex(index, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b.storage[index:]), nil
}

func (b *byteBuf) SetUint32(index int, value uint32) errors.Error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkIndex(index, 4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(b.storage[index:], value)
	return nil
}

func (b *byteBuf) SetUint32LE(index int, value uint32) errors.Error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkIndex(index, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b.storage[index:], value)
	return nil
}

func (b *byteBuf) GetInt32(index int) (int32, errors.Error) {
	v, err := b.GetUint32(index)
	return int32(v), err
}
func (b *byteBuf) GetInt32LE(index int) (int32, errors.Error) {
	v, err := b.GetUint32LE(index)
	return int32(v), err
}
func (b *byteBuf) SetInt32(index int, value int32) errors.Error {
	return b.SetUint32(index, uint32(value))
}
func (b *byteBuf) SetInt32LE(index int, value int32) errors.Error {
	return b.SetUint32LE(index, uint32(value))
}

func (b *byteBuf) GetUint64(index int) (uint64, errors.Error) {
	if err := b.checkAlive(); err != nil {
		return 0, err
	}
	if err := b.checkIndex(index, 8); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b.storage[index:]), nil
}

func (b *byteBuf) GetUint64LE(index int) (uint64, errors.Error) {
	if err := b.checkAlive(); err != nil {
		return 0, err
	}
	if err := b.checkIndex(index, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b.storage[index:]), nil
}

func (b *byteBuf) SetUint64(index int, value uint64) errors.Error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkIndex(index, 8); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(b.storage[index:], value)
	return nil
}

func (b *byteBuf) SetUint64LE(index int, value uint64) errors.Error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkIndex(index, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b.storage[index:], value)
	return nil
}

func (b *byteBuf) GetInt64(index int) (int64, errors.Error) {
	v, err := b.GetUint64(index)
	return int64(v), err
}
func (b *byteBuf) GetInt64LE(index int) (int64, errors.Error) {
	v, err := b.GetUint64LE(index)
	return int64(v), err
}
func (b *byteBuf) SetInt64(index int, value int64) errors.Error {
	return b.SetUint64(index, uint64(value))
}
func (b *byteBuf) SetInt64LE(index int, value int64) errors.Error {
	return b.SetUint64LE(index, uint64(value))
}

func (b *byteBuf) GetFloat32(index int) (float32, errors.Error) {
	v, err := b.GetUint32(index)
	return math.Float32frombits(v), err
}
func (b *byteBuf) GetFloat32LE(index int) (float32, errors.Error) {
	v, err := b.GetUint32LE(index)
	return math.Float32frombits(v), err
}
func (b *byteBuf) SetFloat32(index int, value float32) errors.Error {
	return b.SetUint32(index, math.Float32bits(value))
}
func (b *byteBuf) SetFloat32LE(index int, value float32) errors.Error {
	return b.SetUint32LE(index, math.Float32bits(value))
}

func (b *byteBuf) GetFloat64(index int) (float64, errors.Error) {
	v, err := b.GetUint64(index)
	return math.Float64frombits(v), err
}
func (b *byteBuf) GetFloat64LE(index int) (float64, errors.Error) {
	v, err := b.GetUint64LE(index)
	return math.Float64frombits(v), err
}
func (b *byteBuf) SetFloat64(index int, value float64) errors.Error {
	return b.SetUint64(index, math.Float64bits(value))
}
func (b *byteBuf) SetFloat64LE(index int, value float64) errors.Error {
	return b.SetUint64LE(index, math.Float64bits(value))
}

// --- relative accessors ---

func (b *byteBuf) ReadByte() (byte, errors.Error) {
	if b.ReadableBytes() < 1 {
		return 0, ErrorIndexOutOfBounds.Error(nil)
	}
	v, err := b.GetByte(b.rIdx)
	if err == nil {
		b.rIdx++
	}
	return v, err
}

func (b *byteBuf) WriteByte(value byte) errors.Error {
	if err := b.EnsureWritable(1); err != nil {
		return err
	}
	if err := b.SetByte(b.wIdx, value); err != nil {
		return err
	}
	b.wIdx++
	return nil
}

func (b *byteBuf) ReadBytes(n int) ([]byte, errors.Error) {
	if b.ReadableBytes() < n {
		return nil, ErrorIndexOutOfBounds.Error(nil)
	}
	dst := make([]byte, n)
	if err := b.GetBytes(b.rIdx, dst); err != nil {
		return nil, err
	}
	b.rIdx += n
	return dst, nil
}

func (b *byteBuf) WriteBytes(src []byte) errors.Error {
	if err := b.EnsureWritable(len(src)); err != nil {
		return err
	}
	if err := b.SetBytes(b.wIdx, src); err != nil {
		return err
	}
	b.wIdx += len(src)
	return nil
}

// Read / Write implement io.Reader / io.Writer over the readable /
// writable region, for bridging to plain Go I/O code.
func (b *byteBuf) Read(p []byte) (int, error) {
	if b.ReadableBytes() == 0 {
		return 0, io.EOF
	}
	n := len(p)
	if n > b.ReadableBytes() {
		n = b.ReadableBytes()
	}
	_ = b.GetBytes(b.rIdx, p[:n])
	b.rIdx += n
	return n, nil
}

func (b *byteBuf) Write(p []byte) (int, error) {
	if err := b.WriteBytes(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (b *byteBuf) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	tmp := make([]byte, 4096)
	for {
		n, rerr := r.Read(tmp)
		if n > 0 {
			if err := b.WriteBytes(tmp[:n]); err != nil {
				return total, err
			}
			total += int64(n)
		}
		if rerr == io.EOF {
			return total, nil
		}
		if rerr != nil {
			return total, rerr
		}
	}
}

func (b *byteBuf) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.storage[b.rIdx:b.wIdx])
	b.rIdx += n
	return int64(n), err
}

func (b *byteBuf) ReadUint16() (uint16, errors.Error) {
	v, err := b.GetUint16(b.rIdx)
	if err == nil {
		b.rIdx += 2
	}
	return v, err
}
func (b *byteBuf) ReadUint16LE() (uint16, errors.Error) {
	v, err := b.GetUint16LE(b.rIdx)
	if err == nil {
		b.rIdx += 2
	}
	return v, err
}
func (b *byteBuf) WriteUint16(value uint16) errors.Error {
	if err := b.EnsureWritable(2); err != nil {
		return err
	}
	if err := b.SetUint16(b.wIdx, value); err != nil {
		return err
	}
	b.wIdx += 2
	return nil
}
func (b *byteBuf) WriteUint16LE(value uint16) errors.Error {
	if err := b.EnsureWritable(2); err != nil {
		return err
	}
	if err := b.SetUint16LE(b.wIdx, value); err != nil {
		return err
	}
	b.wIdx += 2
	return nil
}

func (b *byteBuf) ReadInt16() (int16, errors.Error) {
	v, err := b.ReadUint16()
	return int16(v), err
}
func (b *byteBuf) ReadInt16LE() (int16, errors.Error) {
	v, err := b.ReadUint16LE()
	return int16(v), err
}
func (b *byteBuf) WriteInt16(value int16) errors.Error { return b.WriteUint16(uint16(value)) }
func (b *byteBuf) WriteInt16LE(value int16) errors.Error {
	return b.WriteUint16LE(uint16(value))
}

func (b *byteBuf) ReadUint32() (uint32, errors.Error) {
	v, err := b.GetUint32(b.rIdx)
	if err == nil {
		b.rIdx += 4
	}
	return v, err
}
func (b *byteBuf) ReadUint32LE() (uint32, errors.Error) {
	v, err := b.GetUint32LE(b.rIdx)
	if err == nil {
		b.rIdx += 4
	}
	return v, err
}
func (b *byteBuf) WriteUint32(value uint32) errors.Error {
	if err := b.EnsureWritable(4); err != nil {
		return err
	}
	if err := b.SetUint32(b.wIdx, value); err != nil {
		return err
	}
	b.wIdx += 4
	return nil
}
func (b *byteBuf) WriteUint32LE(value uint32) errors.Error {
	if err := b.EnsureWritable(4); err != nil {
		return err
	}
	if err := b.SetUint32LE(b.wIdx, value); err != nil {
		return err
	}
	b.wIdx += 4
	return nil
}

func (b *byteBuf) ReadInt32() (int32, errors.Error) {
	v, err := b.ReadUint32()
	return int32(v), err
}
func (b *byteBuf) ReadInt32LE() (int32, errors.Error) {
	v, err := b.ReadUint32LE()
	return int32(v), err
}
func (b *byteBuf) WriteInt32(value int32) errors.Error { return b.WriteUint32(uint32(value)) }
func (b *byteBuf) WriteInt32LE(value int32) errors.Error {
	return b.WriteUint32LE(uint32(value))
}

func (b *byteBuf) ReadUint64() (uint64, errors.Error) {
	v, err := b.GetUint64(b.rIdx)
	if err == nil {
		b.rIdx += 8
	}
	return v, err
}
func (b *byteBuf) ReadUint64LE() (uint64, errors.Error) {
	v, err := b.GetUint64LE(b.rIdx)
	if err == nil {
		b.rIdx += 8
	}
	return v, err
}
func (b *byteBuf) WriteUint64(value uint64) errors.Error {
	if err := b.EnsureWritable(8); err != nil {
		return err
	}
	if err := b.SetUint64(b.wIdx, value); err != nil {
		return err
	}
	b.wIdx += 8
	return nil
}
func (b *byteBuf) WriteUint64LE(value uint64) errors.Error {
	if err := b.EnsureWritable(8); err != nil {
		return err
	}
	if err := b.SetUint64LE(b.wIdx, value); err != nil {
		return err
	}
	b.wIdx += 8
	return nil
}

func (b *byteBuf) ReadInt64() (int64, errors.Error) {
	v, err := b.ReadUint64()
	return int64(v), err
}
func (b *byteBuf) ReadInt64LE() (int64, errors.Error) {
	v, err := b.ReadUint64LE()
	return int64(v), err
}
func (b *byteBuf) WriteInt64(value int64) errors.Error { return b.WriteUint64(uint64(value)) }
func (b *byteBuf) WriteInt64LE(value int64) errors.Error {
	return b.WriteUint64LE(uint64(value))
}

func (b *byteBuf) ReadFloat32() (float32, errors.Error) {
	v, err := b.ReadUint32()
	return math.Float32frombits(v), err
}
func (b *byteBuf) ReadFloat32LE() (float32, errors.Error) {
	v, err := b.ReadUint32LE()
	return math.Float32frombits(v), err
}
func (b *byteBuf) WriteFloat32(value float32) errors.Error {
	return b.WriteUint32(math.Float32bits(value))
}
func (b *byteBuf) WriteFloat32LE(value float32) errors.Error {
	return b.WriteUint32LE(math.Float32bits(value))
}

func (b *byteBuf) ReadFloat64() (float64, errors.Error) {
	v, err := b.ReadUint64()
	return math.Float64frombits(v), err
}
func (b *byteBuf) ReadFloat64LE() (float64, errors.Error) {
	v, err := b.ReadUint64LE()
	return math.Float64frombits(v), err
}
func (b *byteBuf) WriteFloat64(value float64) errors.Error {
	return b.WriteUint64(math.Float64bits(value))
}
func (b *byteBuf) WriteFloat64LE(value float64) errors.Error {
	return b.WriteUint64LE(math.Float64bits(value))
}

// --- search ---

func (b *byteBuf) IndexOf(fromIndex, toIndex int, value byte) int {
	if fromIndex < 0 {
		fromIndex = 0
	}
	if toIndex > b.capacity() {
		toIndex = b.capacity()
	}
	for i := fromIndex; i < toIndex; i++ {
		if b.storage[i] == value {
			return i
		}
	}
	return -1
}

func (b *byteBuf) BytesBefore(value byte) int {
	idx := b.IndexOf(b.rIdx, b.wIdx, value)
	if idx < 0 {
		return -1
	}
	return idx - b.rIdx
}

func (b *byteBuf) ForEachByte(predicate func(byte) bool) int {
	for i := b.rIdx; i < b.wIdx; i++ {
		if !predicate(b.storage[i]) {
			return i
		}
	}
	return -1
}

// --- copy / export ---

func (b *byteBuf) Bytes() []byte {
	out := make([]byte, b.ReadableBytes())
	copy(out, b.storage[b.rIdx:b.wIdx])
	return out
}

func (b *byteBuf) Copy() ByteBuf {
	data := b.Bytes()
	c := NewFrom(data).(*byteBuf)
	c.maxCap = b.maxCap
	return c
}

// --- derived views ---

func (b *byteBuf) Slice(index, length int) (ByteBuf, errors.Error) {
	if err := b.checkIndex(index, length); err != nil {
		return nil, err
	}
	child := &byteBuf{
		storage: b.storage[index : index+length : index+length],
		maxCap:  length,
		wIdx:    length,
		isView:  true,
		counter: b.counter,
		alloc:   b.alloc,
	}
	return child, nil
}

func (b *byteBuf) RetainedSlice(index, length int) (ByteBuf, errors.Error) {
	if _, err := b.Retain(); err != nil {
		return nil, err
	}
	v, err := b.Slice(index, length)
	if err != nil {
		_, _ = b.Release()
		return nil, err
	}
	return v, nil
}

func (b *byteBuf) Duplicate() ByteBuf {
	return &byteBuf{
		storage: b.storage,
		maxCap:  b.maxCap,
		rIdx:    b.rIdx,
		wIdx:    b.wIdx,
		isView:  true,
		counter: b.counter,
		alloc:   b.alloc,
	}
}

func (b *byteBuf) RetainedDuplicate() ByteBuf {
	_, _ = b.Retain()
	return b.Duplicate()
}

func (b *byteBuf) ReadSlice(length int) (ByteBuf, errors.Error) {
	v, err := b.Slice(b.rIdx, length)
	if err != nil {
		return nil, err
	}
	b.rIdx += length
	return v, nil
}

func (b *byteBuf) RetainedReadSlice(length int) (ByteBuf, errors.Error) {
	v, err := b.RetainedSlice(b.rIdx, length)
	if err != nil {
		return nil, err
	}
	b.rIdx += length
	return v, nil
}
