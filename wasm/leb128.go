package wasm

import (
	"github.com/wippyai/wasm-validator/wasm/internal/binary"
)

// Low-level decoding failures. Decode errors produced by Reader wrap one of
// these as their Cause.
var (
	ErrTruncated    = binary.ErrTruncated
	ErrOverflow     = binary.ErrOverflow
	ErrNonCanonical = binary.ErrNonCanonical
	ErrFixedLength  = binary.ErrFixedLength
)

// AppendU32 appends the unsigned LEB128 encoding of v to dst.
func AppendU32(dst []byte, v uint32) []byte {
	return AppendU64(dst, uint64(v))
}

// AppendU64 appends the unsigned LEB128 encoding of v to dst.
func AppendU64(dst []byte, v uint64) []byte {
	w := binary.NewWriter()
	w.WriteU64(v)
	return append(dst, w.Bytes()...)
}

// AppendS32 appends the signed LEB128 encoding of v to dst.
func AppendS32(dst []byte, v int32) []byte {
	return AppendS64(dst, int64(v))
}

// AppendS64 appends the signed LEB128 encoding of v to dst.
func AppendS64(dst []byte, v int64) []byte {
	w := binary.NewWriter()
	w.WriteS64(v)
	return append(dst, w.Bytes()...)
}

// AppendFixedU32 appends v padded to exactly n bytes. n must be between
// the minimal encoded length of v and 5.
func AppendFixedU32(dst []byte, v uint32, n int) ([]byte, error) {
	w := binary.NewWriter()
	if err := w.WriteFixedU32(v, n); err != nil {
		return dst, err
	}
	return append(dst, w.Bytes()...), nil
}

// AppendFixedS32 appends v padded to exactly n bytes. n must be between
// the minimal encoded length of v and 5.
func AppendFixedS32(dst []byte, v int32, n int) ([]byte, error) {
	w := binary.NewWriter()
	if err := w.WriteFixedS32(v, n); err != nil {
		return dst, err
	}
	return append(dst, w.Bytes()...), nil
}

// DecodeU32 decodes an unsigned LEB128 uint32 from the start of data and
// returns the value and the number of bytes read.
func DecodeU32(data []byte) (uint32, int, error) {
	r := binary.NewReader(data)
	v, err := r.ReadU32()
	return v, r.Position(), err
}

// DecodeU64 decodes an unsigned LEB128 uint64 from the start of data.
func DecodeU64(data []byte) (uint64, int, error) {
	r := binary.NewReader(data)
	v, err := r.ReadU64()
	return v, r.Position(), err
}

// DecodeS32 decodes a signed LEB128 int32 from the start of data.
func DecodeS32(data []byte) (int32, int, error) {
	r := binary.NewReader(data)
	v, err := r.ReadS32()
	return v, r.Position(), err
}

// DecodeS64 decodes a signed LEB128 int64 from the start of data.
func DecodeS64(data []byte) (int64, int, error) {
	r := binary.NewReader(data)
	v, err := r.ReadS64()
	return v, r.Position(), err
}
