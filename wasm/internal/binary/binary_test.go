package binary

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestReaderReadByte(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	r := NewReaderAt(data, 10)

	for i, want := range data {
		if r.Position() != 10+i {
			t.Errorf("position before read %d: got %d, want %d", i, r.Position(), 10+i)
		}
		b, err := r.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte %d: %v", i, err)
		}
		if b != want {
			t.Errorf("ReadByte %d: got 0x%02x, want 0x%02x", i, b, want)
		}
	}

	if !r.Empty() {
		t.Error("reader should be empty")
	}
	if _, err := r.ReadByte(); !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
}

func TestReaderReadBytes(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04, 0x05})

	got, err := r.ReadBytes(3)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(got, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("ReadBytes: got %v, want [1 2 3]", got)
	}
	if r.Len() != 2 || !bytes.Equal(r.Remaining(), []byte{0x04, 0x05}) {
		t.Errorf("remaining: got %v", r.Remaining())
	}
	if _, err := r.ReadBytes(10); !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
	if r.Position() != 3 {
		t.Errorf("failed read must not advance, position %d", r.Position())
	}
}

func TestReaderReadU32(t *testing.T) {
	tests := []struct {
		encoded []byte
		want    uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x20}, 32},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xc0, 0x03}, 448},
		{[]byte{0xd0, 0x84, 0x02}, 33360},
		{[]byte{0xa0, 0xb0, 0xc0, 0x30}, 101718048},
		{[]byte{0xf0, 0xf0, 0xf0, 0xf0, 0x03}, 1042036848},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xFFFFFFFF},
		{[]byte{0x80, 0x80, 0x80, 0x80, 0x00}, 0},
	}

	for _, tt := range tests {
		r := NewReader(tt.encoded)
		got, err := r.ReadU32()
		if err != nil {
			t.Errorf("ReadU32(%x): %v", tt.encoded, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ReadU32(%x): got %d, want %d", tt.encoded, got, tt.want)
		}
		if !r.Empty() {
			t.Errorf("ReadU32(%x): %d bytes left", tt.encoded, r.Len())
		}
	}
}

func TestReaderReadS32(t *testing.T) {
	tests := []struct {
		encoded []byte
		want    int32
	}{
		{[]byte{0x20}, 32},
		{[]byte{0x70}, -16},
		{[]byte{0xc0, 0x03}, 448},
		{[]byte{0xc0, 0x63}, -3648},
		{[]byte{0xd0, 0x84, 0x02}, 33360},
		{[]byte{0xd0, 0x84, 0x52}, -753072},
		{[]byte{0xa0, 0xb0, 0xc0, 0x30}, 101718048},
		{[]byte{0xa0, 0xb0, 0xc0, 0x70}, -32499680},
		{[]byte{0xf0, 0xf0, 0xf0, 0xf0, 0x03}, 1042036848},
		{[]byte{0xf0, 0xf0, 0xf0, 0xf0, 0x7c}, -837011344},
		{[]byte{0x80, 0x80, 0x80, 0x80, 0x78}, math.MinInt32},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x07}, math.MaxInt32},
	}

	for _, tt := range tests {
		got, err := NewReader(tt.encoded).ReadS32()
		if err != nil {
			t.Errorf("ReadS32(%x): %v", tt.encoded, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ReadS32(%x): got %d, want %d", tt.encoded, got, tt.want)
		}
	}
}

func TestReaderReadS64(t *testing.T) {
	tests := []struct {
		encoded []byte
		want    int64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7f}, -1},
		{[]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}, 34359738368},
		{[]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x7f}, math.MinInt64},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00}, math.MaxInt64},
	}

	for _, tt := range tests {
		got, err := NewReader(tt.encoded).ReadS64()
		if err != nil {
			t.Errorf("ReadS64(%x): %v", tt.encoded, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ReadS64(%x): got %d, want %d", tt.encoded, got, tt.want)
		}
	}
}

func TestReaderReadU64(t *testing.T) {
	got, err := NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}).ReadU64()
	if err != nil {
		t.Fatalf("ReadU64: %v", err)
	}
	if got != math.MaxUint64 {
		t.Errorf("ReadU64: got %d, want max", got)
	}
}

func TestReaderLEB128Errors(t *testing.T) {
	tests := []struct {
		name    string
		encoded []byte
		read    func(*Reader) error
		want    error
	}{
		{"u32 truncated", []byte{0x80, 0x80}, readU32, ErrTruncated},
		{"u32 empty", nil, readU32, ErrTruncated},
		{"u32 too long", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}, readU32, ErrOverflow},
		{"u32 terminal high bits", []byte{0xff, 0xff, 0xff, 0xff, 0x1f}, readU32, ErrNonCanonical},
		{"u32 terminal bit 4", []byte{0x80, 0x80, 0x80, 0x80, 0x10}, readU32, ErrNonCanonical},
		{"s32 positive overflow bits", []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, readS32, ErrNonCanonical},
		{"s32 negative missing sign bits", []byte{0x80, 0x80, 0x80, 0x80, 0x70}, readS32, ErrNonCanonical},
		{"s32 too long", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}, readS32, ErrOverflow},
		{"u64 terminal high bits", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x02}, readU64, ErrNonCanonical},
		{"s64 bad sign extension", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}, readS64, ErrNonCanonical},
		{"f32 truncated", []byte{0x00, 0x00}, readF32, ErrTruncated},
		{"f64 truncated", []byte{0x00, 0x00, 0x00, 0x00}, readF64, ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(NewReader(tt.encoded))
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func readU32(r *Reader) error {
	_, err := r.ReadU32()
	return err
}

func readS32(r *Reader) error {
	_, err := r.ReadS32()
	return err
}

func readU64(r *Reader) error {
	_, err := r.ReadU64()
	return err
}

func readS64(r *Reader) error {
	_, err := r.ReadS64()
	return err
}

func readF32(r *Reader) error {
	_, err := r.ReadF32()
	return err
}

func readF64(r *Reader) error {
	_, err := r.ReadF64()
	return err
}

func TestReaderFloats(t *testing.T) {
	r := NewReader([]byte{
		0x00, 0x00, 0x80, 0xbf,
		0x38, 0xb4, 0x96, 0x49,
		0x00, 0x00, 0x80, 0x7f,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xf0, 0xbf,
	})
	for _, want := range []float32{-1, 1234567, float32(math.Inf(1))} {
		got, err := r.ReadF32()
		if err != nil {
			t.Fatalf("ReadF32: %v", err)
		}
		if got != want {
			t.Errorf("ReadF32: got %v, want %v", got, want)
		}
	}
	f, err := r.ReadF64()
	if err != nil || f != -1 {
		t.Errorf("ReadF64: got %v, %v", f, err)
	}
}

func TestWriterLEB128(t *testing.T) {
	tests := []struct {
		name  string
		write func(*Writer)
		want  []byte
	}{
		{"u32 32", func(w *Writer) { w.WriteU32(32) }, []byte{0x20}},
		{"u32 448", func(w *Writer) { w.WriteU32(448) }, []byte{0xc0, 0x03}},
		{"u32 33360", func(w *Writer) { w.WriteU32(33360) }, []byte{0xd0, 0x84, 0x02}},
		{"u32 101718048", func(w *Writer) { w.WriteU32(101718048) }, []byte{0xa0, 0xb0, 0xc0, 0x30}},
		{"u32 1042036848", func(w *Writer) { w.WriteU32(1042036848) }, []byte{0xf0, 0xf0, 0xf0, 0xf0, 0x03}},
		{"s32 32", func(w *Writer) { w.WriteS32(32) }, []byte{0x20}},
		{"s32 -16", func(w *Writer) { w.WriteS32(-16) }, []byte{0x70}},
		{"s32 448", func(w *Writer) { w.WriteS32(448) }, []byte{0xc0, 0x03}},
		{"s32 -3648", func(w *Writer) { w.WriteS32(-3648) }, []byte{0xc0, 0x63}},
		{"s32 33360", func(w *Writer) { w.WriteS32(33360) }, []byte{0xd0, 0x84, 0x02}},
		{"s32 -753072", func(w *Writer) { w.WriteS32(-753072) }, []byte{0xd0, 0x84, 0x52}},
		{"s32 101718048", func(w *Writer) { w.WriteS32(101718048) }, []byte{0xa0, 0xb0, 0xc0, 0x30}},
		{"s32 -32499680", func(w *Writer) { w.WriteS32(-32499680) }, []byte{0xa0, 0xb0, 0xc0, 0x70}},
		{"s32 1042036848", func(w *Writer) { w.WriteS32(1042036848) }, []byte{0xf0, 0xf0, 0xf0, 0xf0, 0x03}},
		{"s32 -837011344", func(w *Writer) { w.WriteS32(-837011344) }, []byte{0xf0, 0xf0, 0xf0, 0xf0, 0x7c}},
		{"s64 34359738368", func(w *Writer) { w.WriteS64(34359738368) }, []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}},
		{"f32 -1", func(w *Writer) { w.WriteF32(-1) }, []byte{0x00, 0x00, 0x80, 0xbf}},
		{"f32 1234567", func(w *Writer) { w.WriteF32(1234567) }, []byte{0x38, 0xb4, 0x96, 0x49}},
		{"f32 inf", func(w *Writer) { w.WriteF32(float32(math.Inf(1))) }, []byte{0x00, 0x00, 0x80, 0x7f}},
		{"f64 -1", func(w *Writer) { w.WriteF64(-1) }, []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xf0, 0xbf}},
		{"u32le", func(w *Writer) { w.WriteU32LE(0x6d736100) }, []byte{0x00, 0x61, 0x73, 0x6d}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter()
			tt.write(w)
			if !bytes.Equal(w.Bytes(), tt.want) {
				t.Errorf("got %x, want %x", w.Bytes(), tt.want)
			}
		})
	}
}

func TestWriterFixedU32(t *testing.T) {
	tests := []struct {
		value  uint32
		length int
		want   []byte
	}{
		{0x11, 1, []byte{0x11}},
		{0x11, 2, []byte{0x91, 0x00}},
		{0x11, 3, []byte{0x91, 0x80, 0x00}},
		{0x11, 4, []byte{0x91, 0x80, 0x80, 0x00}},
		{0x11, 5, []byte{0x91, 0x80, 0x80, 0x80, 0x00}},
		{0x111, 2, []byte{0x91, 0x02}},
		{0x11111, 3, []byte{0x91, 0xa2, 0x04}},
		{0x1111111, 4, []byte{0x91, 0xa2, 0xc4, 0x08}},
		{0x11111111, 5, []byte{0x91, 0xa2, 0xc4, 0x88, 0x01}},
	}

	for _, tt := range tests {
		w := NewWriter()
		if err := w.WriteFixedU32(tt.value, tt.length); err != nil {
			t.Errorf("WriteFixedU32(%#x, %d): %v", tt.value, tt.length, err)
			continue
		}
		if !bytes.Equal(w.Bytes(), tt.want) {
			t.Errorf("WriteFixedU32(%#x, %d): got %x, want %x", tt.value, tt.length, w.Bytes(), tt.want)
		}
		got, err := NewReader(w.Bytes()).ReadU32()
		if err != nil || got != tt.value {
			t.Errorf("padded u32 %x decodes to %#x, %v", w.Bytes(), got, err)
		}
	}
}

func TestWriterFixedS32(t *testing.T) {
	tests := []struct {
		value  int32
		length int
		want   []byte
	}{
		{-0x11, 1, []byte{0x6f}},
		{-0x11, 2, []byte{0xef, 0x7f}},
		{-0x11, 3, []byte{0xef, 0xff, 0x7f}},
		{-0x11, 4, []byte{0xef, 0xff, 0xff, 0x7f}},
		{-0x11, 5, []byte{0xef, 0xff, 0xff, 0xff, 0x7f}},
		{-0x111, 2, []byte{0xef, 0x7d}},
		{-0x11111, 3, []byte{0xef, 0xdd, 0x7b}},
		{-0x1111111, 4, []byte{0xef, 0xdd, 0xbb, 0x77}},
		{-0x11111111, 5, []byte{0xef, 0xdd, 0xbb, 0xf7, 0x7e}},
	}

	for _, tt := range tests {
		w := NewWriter()
		if err := w.WriteFixedS32(tt.value, tt.length); err != nil {
			t.Errorf("WriteFixedS32(%d, %d): %v", tt.value, tt.length, err)
			continue
		}
		if !bytes.Equal(w.Bytes(), tt.want) {
			t.Errorf("WriteFixedS32(%d, %d): got %x, want %x", tt.value, tt.length, w.Bytes(), tt.want)
		}
		got, err := NewReader(w.Bytes()).ReadS32()
		if err != nil || got != tt.value {
			t.Errorf("padded s32 %x decodes to %d, %v", w.Bytes(), got, err)
		}
	}
}

func TestWriterFixedLengthErrors(t *testing.T) {
	w := NewWriter()
	if err := w.WriteFixedU32(0x111, 1); !errors.Is(err, ErrFixedLength) {
		t.Errorf("too short u32: got %v", err)
	}
	if err := w.WriteFixedU32(1, 6); !errors.Is(err, ErrFixedLength) {
		t.Errorf("too long u32: got %v", err)
	}
	if err := w.WriteFixedS32(-0x111, 1); !errors.Is(err, ErrFixedLength) {
		t.Errorf("too short s32: got %v", err)
	}
	if w.Len() != 0 {
		t.Errorf("failed writes must not emit bytes, got %x", w.Bytes())
	}
}

func TestFixedWriterOverflow(t *testing.T) {
	dst := make([]byte, 3)
	w := NewFixedWriter(dst)
	w.WriteU32(0x80)
	if w.Overflow() {
		t.Fatal("two bytes fit in three")
	}
	w.WriteU32(0x4000)
	if !w.Overflow() {
		t.Fatal("expected overflow")
	}
	if w.Len() != 3 {
		t.Errorf("len: got %d, want 3", w.Len())
	}
	if !bytes.Equal(dst, []byte{0x80, 0x01, 0x80}) {
		t.Errorf("destination: got %x", dst)
	}

	w.Reset()
	if w.Overflow() || w.Len() != 0 {
		t.Error("Reset should clear state")
	}
}

func TestLengths(t *testing.T) {
	for _, tt := range []struct {
		v    uint32
		want int
	}{{0, 1}, {127, 1}, {128, 2}, {1 << 14, 3}, {1 << 21, 4}, {1 << 28, 5}, {math.MaxUint32, 5}} {
		if got := U32Len(tt.v); got != tt.want {
			t.Errorf("U32Len(%d): got %d, want %d", tt.v, got, tt.want)
		}
	}
	for _, tt := range []struct {
		v    int32
		want int
	}{{0, 1}, {63, 1}, {64, 2}, {-64, 1}, {-65, 2}, {math.MinInt32, 5}, {math.MaxInt32, 5}} {
		if got := S32Len(tt.v); got != tt.want {
			t.Errorf("S32Len(%d): got %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestReaderReadName(t *testing.T) {
	r := NewReader([]byte{0x03, 'a', 'b', 'c', 0x02, 0xff, 0xfe, 0x05, 'x'})
	name, err := r.ReadName()
	if err != nil || name != "abc" {
		t.Fatalf("ReadName: got %q, %v", name, err)
	}
	if _, err := r.ReadName(); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("expected ErrInvalidUTF8, got %v", err)
	}
	if _, err := r.ReadName(); !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
}
