package binary

import (
	"encoding/binary"
	"errors"
	"math"
	"unicode/utf8"
)

var (
	// ErrTruncated is returned when the input ends inside a value.
	ErrTruncated = errors.New("unexpected end of input")

	// ErrOverflow is returned when a LEB128 value needs more bytes than
	// its width allows.
	ErrOverflow = errors.New("leb128: overflow")

	// ErrNonCanonical is returned when the terminal byte of a maximum
	// length LEB128 value sets bits beyond the target width.
	ErrNonCanonical = errors.New("leb128: non-canonical terminal byte")

	// ErrInvalidUTF8 is returned when a name is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid UTF-8 encoding")
)

// Maximum encoded sizes of LEB128 values.
const (
	MaxU32Len = 5
	MaxU64Len = 10
)

// Reader is a cursor over an in-memory byte slice. Positions are reported
// relative to a base so that a reader over a sub-slice can report offsets
// within the enclosing buffer.
type Reader struct {
	data []byte
	pos  int
	base int
}

// NewReader creates a Reader over data starting at offset 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// NewReaderAt creates a Reader over data whose first byte sits at offset
// base in the enclosing buffer.
func NewReaderAt(data []byte, base int) *Reader {
	return &Reader{data: data, base: base}
}

// Position returns the absolute offset of the next unread byte.
func (r *Reader) Position() int {
	return r.base + r.pos
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// Empty reports whether every byte has been consumed.
func (r *Reader) Empty() bool {
	return r.pos >= len(r.data)
}

// Remaining returns the unread bytes without consuming them.
func (r *Reader) Remaining() []byte {
	return r.data[r.pos:]
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, ErrTruncated
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes returns the next n bytes as a sub-slice of the input.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, ErrTruncated
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadU32 reads an unsigned LEB128 encoded uint32.
func (r *Reader) ReadU32() (uint32, error) {
	v, err := r.readUnsigned(MaxU32Len, 32)
	return uint32(v), err
}

// ReadU64 reads an unsigned LEB128 encoded uint64.
func (r *Reader) ReadU64() (uint64, error) {
	return r.readUnsigned(MaxU64Len, 64)
}

// ReadS32 reads a signed LEB128 encoded int32.
func (r *Reader) ReadS32() (int32, error) {
	v, err := r.readSigned(MaxU32Len, 32)
	return int32(v), err
}

// ReadS64 reads a signed LEB128 encoded int64.
func (r *Reader) ReadS64() (int64, error) {
	return r.readSigned(MaxU64Len, 64)
}

// ReadF32 reads a little-endian IEEE-754 float32.
func (r *Reader) ReadF32() (float32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

// ReadF64 reads a little-endian IEEE-754 float64.
func (r *Reader) ReadF64() (float64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// ReadU32LE reads a little-endian uint32 (fixed 4 bytes).
func (r *Reader) ReadU32LE() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadName reads a length-prefixed UTF-8 string.
func (r *Reader) ReadName() (string, error) {
	n, err := r.ReadU32()
	if err != nil {
		return "", err
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

// ReadU64LE reads a little-endian uint64 (fixed 8 bytes).
func (r *Reader) ReadU64LE() (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) readUnsigned(maxLen int, width uint) (uint64, error) {
	var result uint64
	for i := 0; ; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		shift := uint(7 * i)
		if i == maxLen-1 {
			if b&0x80 != 0 {
				return 0, ErrOverflow
			}
			if b>>(width-shift) != 0 {
				return 0, ErrNonCanonical
			}
			return result | uint64(b)<<shift, nil
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
	}
}

func (r *Reader) readSigned(maxLen int, width uint) (int64, error) {
	var result int64
	for i := 0; ; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		shift := uint(7 * i)
		if i == maxLen-1 {
			if b&0x80 != 0 {
				return 0, ErrOverflow
			}
			used := width - shift
			sign := (b >> (used - 1)) & 1
			upper := b >> used
			if (sign == 0 && upper != 0) || (sign == 1 && upper != 0x7f>>used) {
				return 0, ErrNonCanonical
			}
			result |= int64(b&0x7f) << shift
			if width == 32 {
				return int64(int32(result)), nil
			}
			return result, nil
		}
		result |= int64(b&0x7f) << shift
		if b&0x80 == 0 {
			shift += 7
			if b&0x40 != 0 {
				result |= -1 << shift
			}
			return result, nil
		}
	}
}
