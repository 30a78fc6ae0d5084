// SPDX-License-Identifier: GPL-3.0-or-later

// Package wire implements the generic FromWire/ToWire codec plumbing: the
// mutable payload buffer egress codecs write into, and the blanket
// E2EProtectedEnvelope<T> adapters layered on top of any per-type codec.
package wire

import (
	"encoding/binary"
	"fmt"
)

// MinCapacity is the minimum capacity every [Buffer] must have, matching
// the SOME/IP tunnel's fixed 1500-byte payload array.
const MinCapacity = 1500

// Buffer is a mutable byte region with a filled high-water mark. A writer appends starting at Filled(); once it is done,
// Filled is advanced by the actual written length.
//
// Buffer is loaned from the tunnel transport, filled by a ToWire call, and
// released by send; it is not safe for concurrent use.
type Buffer struct {
	data   []byte
	filled int
}

// NewBuffer allocates a [Buffer] with the given capacity; a capacity below
// [MinCapacity] is raised to MinCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < MinCapacity {
		capacity = MinCapacity
	}
	return &Buffer{data: make([]byte, capacity)}
}

// Cap returns the buffer's total capacity.
func (b *Buffer) Cap() int { return len(b.data) }

// Filled returns the current high-water mark.
func (b *Buffer) Filled() int { return b.filled }

// SetFilled sets the high-water mark directly. Used by transports that fill
// the underlying storage out of band (e.g. a tunnel receive) and then
// report how much was actually written.
func (b *Buffer) SetFilled(n int) {
	if n < 0 || n > len(b.data) {
		panic(fmt.Sprintf("wire: SetFilled(%d) out of range [0,%d]", n, len(b.data)))
	}
	b.filled = n
}

// Bytes returns the filled prefix, data[0:Filled()].
func (b *Buffer) Bytes() []byte { return b.data[:b.filled] }

// Since returns the filled bytes written since mark, data[mark:Filled()].
func (b *Buffer) Since(mark int) []byte { return b.data[mark:b.filled] }

// Free returns the unfilled suffix a writer may append into, data[Filled():].
func (b *Buffer) Free() []byte { return b.data[b.filled:] }

// Advance moves the high-water mark forward by n, as a writer does after
// appending n bytes into the slice returned by Free.
func (b *Buffer) Advance(n int) {
	if b.filled+n > len(b.data) {
		panic(fmt.Sprintf("wire: Advance(%d) overflows capacity %d at filled=%d", n, len(b.data), b.filled))
	}
	b.filled += n
}

// Reserve advances the high-water mark by n without writing any caller data,
// zeroing the reserved region. Used to reserve a prefix for E2E integrity
// bytes that are filled in after the data is serialized.
func (b *Buffer) Reserve(n int) {
	for i := 0; i < n; i++ {
		b.data[b.filled+i] = 0
	}
	b.Advance(n)
}

// ShiftRight moves data[from:Filled()] right by n bytes and advances the
// high-water mark by n, opening an n-byte gap at [from:from+n). Used to make
// room for E2E integrity bytes embedded after a fixed number of data bytes
// when Profile.Offset() > 0.
func (b *Buffer) ShiftRight(from, n int) {
	if b.filled+n > len(b.data) {
		panic(fmt.Sprintf("wire: ShiftRight overflows capacity %d", len(b.data)))
	}
	copy(b.data[from+n:b.filled+n], b.data[from:b.filled])
	for i := from; i < from+n; i++ {
		b.data[i] = 0
	}
	b.filled += n
}

// WriteAt copies value's low size bytes, little-endian, into
// data[offset:offset+size]. Used to place computed E2E integrity bytes.
func (b *Buffer) WriteAt(offset uint32, size uint8, value uint32) {
	if int(offset)+int(size) > len(b.data) {
		panic(fmt.Sprintf("wire: WriteAt(%d,%d) overflows capacity %d", offset, size, len(b.data)))
	}
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], value)
	copy(b.data[offset:offset+uint32(size)], tmp[:size])
}

// Reset zeroes the high-water mark so the buffer can be reused. It does not
// clear previously-written bytes.
func (b *Buffer) Reset() { b.filled = 0 }
