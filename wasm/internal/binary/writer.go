package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrFixedLength is returned when a fixed-length LEB128 encoding cannot
// hold the value in the requested number of bytes.
var ErrFixedLength = errors.New("leb128: invalid fixed length")

// Writer appends encoded values to a byte slice. A Writer created with
// NewFixedWriter never grows past its destination; writes beyond the
// capacity are dropped and set the overflow flag instead of failing.
type Writer struct {
	buf      []byte
	limit    int
	overflow bool
}

// NewWriter creates a growable Writer.
func NewWriter() *Writer {
	return &Writer{limit: -1}
}

// NewFixedWriter creates a Writer that fills dst and reports overflow
// once len(dst) bytes have been written.
func NewFixedWriter(dst []byte) *Writer {
	return &Writer{buf: dst[:0], limit: len(dst)}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Overflow reports whether a write was dropped for lack of capacity.
func (w *Writer) Overflow() bool {
	return w.overflow
}

// Reset discards written bytes and clears the overflow flag.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.overflow = false
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	if w.limit >= 0 && len(w.buf) >= w.limit {
		w.overflow = true
		return
	}
	w.buf = append(w.buf, b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	for _, b := range data {
		w.Byte(b)
	}
}

// WriteU32 writes an unsigned LEB128 encoded uint32.
func (w *Writer) WriteU32(v uint32) {
	w.WriteU64(uint64(v))
}

// WriteU64 writes an unsigned LEB128 encoded uint64.
func (w *Writer) WriteU64(v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.Byte(b)
		if v == 0 {
			break
		}
	}
}

// WriteS32 writes a signed LEB128 encoded int32.
func (w *Writer) WriteS32(v int32) {
	w.WriteS64(int64(v))
}

// WriteS64 writes a signed LEB128 encoded int64.
func (w *Writer) WriteS64(v int64) {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && (b&0x40) == 0) || (v == -1 && (b&0x40) != 0) {
			more = false
		} else {
			b |= 0x80
		}
		w.Byte(b)
	}
}

// WriteFixedU32 writes v as an unsigned LEB128 value padded to exactly n
// bytes with continuation bits.
func (w *Writer) WriteFixedU32(v uint32, n int) error {
	if n < U32Len(v) || n > MaxU32Len {
		return fmt.Errorf("%w: %d bytes for u32 %d", ErrFixedLength, n, v)
	}
	for i := 0; i < n-1; i++ {
		w.Byte(byte(v&0x7f) | 0x80)
		v >>= 7
	}
	w.Byte(byte(v & 0x7f))
	return nil
}

// WriteFixedS32 writes v as a signed LEB128 value padded to exactly n
// bytes with continuation bits.
func (w *Writer) WriteFixedS32(v int32, n int) error {
	if n < S32Len(v) || n > MaxU32Len {
		return fmt.Errorf("%w: %d bytes for s32 %d", ErrFixedLength, n, v)
	}
	for i := 0; i < n-1; i++ {
		w.Byte(byte(v&0x7f) | 0x80)
		v >>= 7
	}
	w.Byte(byte(v & 0x7f))
	return nil
}

// WriteF32 writes the IEEE-754 bits of v, little-endian.
func (w *Writer) WriteF32(v float32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	w.WriteBytes(buf[:])
}

// WriteF64 writes the IEEE-754 bits of v, little-endian.
func (w *Writer) WriteF64(v float64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	w.WriteBytes(buf[:])
}

// WriteU32LE writes a little-endian uint32 (fixed 4 bytes).
func (w *Writer) WriteU32LE(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.WriteBytes(buf[:])
}

// U32Len returns the minimal LEB128 length of v.
func U32Len(v uint32) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// S32Len returns the minimal signed LEB128 length of v.
func S32Len(v int32) int {
	n := 1
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return n
		}
		n++
	}
}
