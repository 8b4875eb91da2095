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

// Package buffer implements the pooled/unpooled byte container described by
// the allocator: reader/writer cursors, typed accessors in both byte
// orders, derived zero-copy views, and composite concatenation.
package buffer

import (
	"io"

	"github.com/nabbar/nexio/errors"
	"github.com/nabbar/nexio/refcount"
)

// Allocator is implemented by the pooled arena and by a trivial unpooled
// allocator. Auto-growth (EnsureWritable/SetCapacity) does not call back
// into it: a grown ByteBuf gets fresh heap storage.
type Allocator interface {
	// Allocate returns a new ByteBuf with the given initial and maximum
	// capacity.
	Allocate(initialCapacity, maxCapacity int) (ByteBuf, errors.Error)
}

// ByteBuf is a contiguous (or logically contiguous, for composites) byte
// container with independent reader and writer cursors.
type ByteBuf interface {
	refcount.ReferenceCounted
	io.Reader
	io.Writer

	// Capacity returns the current capacity.
	Capacity() int

	// MaxCapacity returns the capacity ceiling; growth never exceeds it.
	MaxCapacity() int

	// SetCapacity reallocates storage to exactly newCapacity, preserving
	// the overlap [0, min(old, new)) and clamping reader/writer cursors.
	SetCapacity(newCapacity int) (ByteBuf, errors.Error)

	// ReaderIndex / WriterIndex report the current cursors.
	ReaderIndex() int
	WriterIndex() int

	// SetReaderIndex / SetWriterIndex reposition a cursor; both fail with
	// ErrorIndexOutOfBounds if the ordering invariant would be violated.
	SetReaderIndex(index int) errors.Error
	SetWriterIndex(index int) errors.Error

	// MarkReaderIndex / ResetReaderIndex save and restore the reader
	// cursor. MarkWriterIndex / ResetWriterIndex do the same for the
	// writer cursor.
	MarkReaderIndex()
	ResetReaderIndex() errors.Error
	MarkWriterIndex()
	ResetWriterIndex() errors.Error

	// Clear resets both cursors to zero without changing capacity.
	Clear()

	// DiscardReadBytes moves the unread region [reader, writer) to the
	// front of the storage and rewinds both cursors by reader's value.
	DiscardReadBytes()

	// ReadableBytes / WritableBytes report the size of the readable and
	// writable regions.
	ReadableBytes() int
	WritableBytes() int
	IsReadable() bool
	IsWritable() bool
	IsWritableN(n int) bool

	// EnsureWritable grows capacity (per the auto-growth rule: smallest
	// power of two >= writer+minWritableBytes, capped at MaxCapacity) if
	// the writable region is smaller than minWritableBytes.
	EnsureWritable(minWritableBytes int) errors.Error

	// --- absolute accessors: do not move cursors ---

	GetByte(index int) (byte, errors.Error)
	SetByte(index int, value byte) errors.Error
	GetBytes(index int, dst []byte) errors.Error
	SetBytes(index int, src []byte) errors.Error

	GetUint16(index int) (uint16, errors.Error)
	GetUint16LE(index int) (uint16, errors.Error)
	SetUint16(index int, value uint16) errors.Error
	SetUint16LE(index int, value uint16) errors.Error

	GetInt16(index int) (int16, errors.Error)
	GetInt16LE(index int) (int16, errors.Error)
	SetInt16(index int, value int16) errors.Error
	SetInt16LE(index int, value int16) errors.Error

	GetUint24(index int) (uint32, errors.Error)
	GetUint24LE(index int) (uint32, errors.Error)
	SetUint24(index int, value uint32) errors.Error
	SetUint24LE(index int, value uint32) errors.Error

	GetUint32(index int) (uint32, errors.Error)
	GetUint32LE(index int) (uint32, errors.Error)
	SetUint32(index int, value uint32) errors.Error
	SetUint32LE(index int, value uint32) errors.Error

	GetInt32(index int) (int32, errors.Error)
	GetInt32LE(index int) (int32, errors.Error)
	SetInt32(index int, value int32) errors.Error
	SetInt32LE(index int, value int32) errors.Error

	GetUint64(index int) (uint64, errors.Error)
	GetUint64LE(index int) (uint64, errors.Error)
	SetUint64(index int, value uint64) errors.Error
	SetUint64LE(index int, value uint64) errors.Error

	GetInt64(index int) (int64, errors.Error)
	GetInt64LE(index int) (int64, errors.Error)
	SetInt64(index int, value int64) errors.Error
	SetInt64LE(index int, value int64) errors.Error

	GetFloat32(index int) (float32, errors.Error)
	GetFloat32LE(index int) (float32, errors.Error)
	SetFloat32(index int, value float32) errors.Error
	SetFloat32LE(index int, value float32) errors.Error

	GetFloat64(index int) (float64, errors.Error)
	GetFloat64LE(index int) (float64, errors.Error)
	SetFloat64(index int, value float64) errors.Error
	SetFloat64LE(index int, value float64) errors.Error

	// --- relative accessors: move the reader or writer cursor ---

	ReadByte() (byte, errors.Error)
	WriteByte(value byte) errors.Error
	ReadBytes(n int) ([]byte, errors.Error)
	WriteBytes(src []byte) errors.Error

	ReadUint16() (uint16, errors.Error)
	ReadUint16LE() (uint16, errors.Error)
	WriteUint16(value uint16) errors.Error
	WriteUint16LE(value uint16) errors.Error

	ReadInt16() (int16, errors.Error)
	ReadInt16LE() (int16, errors.Error)
	WriteInt16(value int16) errors.Error
	WriteInt16LE(value int16) errors.Error

	ReadUint32() (uint32, errors.Error)
	ReadUint32LE() (uint32, errors.Error)
	WriteUint32(value uint32) errors.Error
	WriteUint32LE(value uint32) errors.Error

	ReadInt32() (int32, errors.Error)
	ReadInt32LE() (int32, errors.Error)
	WriteInt32(value int32) errors.Error
	WriteInt32LE(value int32) errors.Error

	ReadUint64() (uint64, errors.Error)
	ReadUint64LE() (uint64, errors.Error)
	WriteUint64(value uint64) errors.Error
	WriteUint64LE(value uint64) errors.Error

	ReadInt64() (int64, errors.Error)
	ReadInt64LE() (int64, errors.Error)
	WriteInt64(value int64) errors.Error
	WriteInt64LE(value int64) errors.Error

	ReadFloat32() (float32, errors.Error)
	ReadFloat32LE() (float32, errors.Error)
	WriteFloat32(value float32) errors.Error
	WriteFloat32LE(value float32) errors.Error

	ReadFloat64() (float64, errors.Error)
	ReadFloat64LE() (float64, errors.Error)
	WriteFloat64(value float64) errors.Error
	WriteFloat64LE(value float64) errors.Error

	// --- search ---

	// IndexOf scans [fromIndex, toIndex) for value, returning the absolute
	// index of the first match or -1.
	IndexOf(fromIndex, toIndex int, value byte) int

	// BytesBefore searches from the current reader index (not index zero)
	// for value, returning the number of bytes before it, or -1.
	BytesBefore(value byte) int

	// ForEachByte invokes predicate over [reader, writer) until it returns
	// false or the region is exhausted; returns the absolute index of the
	// byte that stopped it, or -1.
	ForEachByte(predicate func(b byte) bool) int

	// --- derived views ---

	// Slice returns a child view over [index, index+length) sharing
	// storage; capacity-changing operations on the result fail.
	Slice(index, length int) (ByteBuf, errors.Error)
	// RetainedSlice is Slice plus an extra retain on the root.
	RetainedSlice(index, length int) (ByteBuf, errors.Error)

	// Duplicate shares storage and reference count but has independent
	// cursors, initialized to the receiver's current cursors.
	Duplicate() ByteBuf
	RetainedDuplicate() ByteBuf

	// ReadSlice is Slice(readerIndex, length) followed by advancing the
	// reader cursor past length.
	ReadSlice(length int) (ByteBuf, errors.Error)
	RetainedReadSlice(length int) (ByteBuf, errors.Error)

	// Copy returns an independent buffer with its own storage, containing
	// the readable bytes of the receiver.
	Copy() ByteBuf

	// Bytes exports the readable region as a freshly allocated slice
	// (native-buffer export, always a copy).
	Bytes() []byte

	// ReadFrom / WriteTo bridge to io.Reader / io.Writer sources and
	// sinks, growing the buffer as needed.
	ReadFrom(r io.Reader) (int64, error)
	WriteTo(w io.Writer) (int64, error)
}
