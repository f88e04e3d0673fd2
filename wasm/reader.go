package wasm

import (
	stderrors "errors"
	"slices"

	"github.com/wippyai/wasm-validator/errors"
	"github.com/wippyai/wasm-validator/features"
	"github.com/wippyai/wasm-validator/wasm/internal/binary"
)

// Reader decodes instructions and module structures from an in-memory
// buffer. Opcodes and value types outside its feature set are rejected.
//
// Every failure is returned as an *errors.Error whose Path is the reader's
// context followed by the field being read, and the same error is reported
// once to the sink.
type Reader struct {
	r        *binary.Reader
	sink     errors.Sink
	context  []string
	features features.Features
}

// NewReader creates a Reader over data. A nil sink discards diagnostics.
func NewReader(data []byte, f features.Features, sink errors.Sink) *Reader {
	return NewReaderAt(data, 0, f, sink)
}

// NewReaderAt creates a Reader over data whose first byte sits at offset
// base in the enclosing module, so reported offsets are absolute.
func NewReaderAt(data []byte, base int, f features.Features, sink errors.Sink) *Reader {
	if sink == nil {
		sink = errors.Nop{}
	}
	return &Reader{
		r:        binary.NewReaderAt(data, base),
		sink:     sink,
		features: f,
	}
}

// sub creates a Reader over a slice of the input, inheriting features,
// sink, and context.
func (r *Reader) sub(data []byte, base int, desc string) *Reader {
	s := NewReaderAt(data, base, r.features, r.sink)
	s.context = append(slices.Clone(r.context), desc)
	return s
}

// Position returns the absolute offset of the next unread byte.
func (r *Reader) Position() int { return r.r.Position() }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return r.r.Len() }

// Empty reports whether the input is exhausted.
func (r *Reader) Empty() bool { return r.r.Empty() }

// Features returns the feature set the reader decodes under.
func (r *Reader) Features() features.Features { return r.features }

func (r *Reader) push(desc string) { r.context = append(r.context, desc) }

func (r *Reader) pop() {
	if len(r.context) > 0 {
		r.context = r.context[:len(r.context)-1]
	}
}

func (r *Reader) report(phase errors.Phase, kind errors.Kind, offset int, cause error, field, format string, args ...any) *errors.Error {
	path := slices.Clone(r.context)
	if field != "" {
		path = append(path, field)
	}
	err := errors.New(phase, kind).Path(path...).At(offset).Cause(cause).Detailf(format, args...).Build()
	r.sink.OnError(err)
	return err
}

func (r *Reader) fail(kind errors.Kind, offset int, field, format string, args ...any) *errors.Error {
	return r.report(errors.PhaseDecode, kind, offset, nil, field, format, args...)
}

// readErr translates a low-level read failure.
func (r *Reader) readErr(offset int, field, what string, err error) *errors.Error {
	switch {
	case stderrors.Is(err, binary.ErrOverflow):
		return r.report(errors.PhaseDecode, errors.KindOverflow, offset, err, field, "%s is longer than its maximum encoded length", what)
	case stderrors.Is(err, binary.ErrNonCanonical):
		return r.report(errors.PhaseDecode, errors.KindNonCanonical, offset, err, field, "last byte of %s must be zero or sign extension", what)
	case stderrors.Is(err, binary.ErrInvalidUTF8):
		return r.report(errors.PhaseDecode, errors.KindInvalidData, offset, err, field, "%s is not valid UTF-8", what)
	default:
		return r.report(errors.PhaseDecode, errors.KindTruncated, offset, err, field, "unable to read %s", what)
	}
}

func (r *Reader) u8(field string) (byte, error) {
	off := r.Position()
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, r.readErr(off, field, "u8", err)
	}
	return b, nil
}

func (r *Reader) u32(field string) (uint32, error) {
	off := r.Position()
	v, err := r.r.ReadU32()
	if err != nil {
		return 0, r.readErr(off, field, "u32", err)
	}
	return v, nil
}

func (r *Reader) s32(field string) (int32, error) {
	off := r.Position()
	v, err := r.r.ReadS32()
	if err != nil {
		return 0, r.readErr(off, field, "s32", err)
	}
	return v, nil
}

func (r *Reader) s64(field string) (int64, error) {
	off := r.Position()
	v, err := r.r.ReadS64()
	if err != nil {
		return 0, r.readErr(off, field, "s64", err)
	}
	return v, nil
}

func (r *Reader) u32le(field string) (uint32, error) {
	off := r.Position()
	v, err := r.r.ReadU32LE()
	if err != nil {
		return 0, r.readErr(off, field, "4 bytes", err)
	}
	return v, nil
}

func (r *Reader) u64le(field string) (uint64, error) {
	off := r.Position()
	v, err := r.r.ReadU64LE()
	if err != nil {
		return 0, r.readErr(off, field, "8 bytes", err)
	}
	return v, nil
}

func (r *Reader) bytes(n int, field string) ([]byte, error) {
	off := r.Position()
	b, err := r.r.ReadBytes(n)
	if err != nil {
		return nil, r.readErr(off, field, "bytes", err)
	}
	return b, nil
}

func (r *Reader) name(field string) (string, error) {
	off := r.Position()
	s, err := r.r.ReadName()
	if err != nil {
		return "", r.readErr(off, field, "name", err)
	}
	return s, nil
}

// count reads a vector length and rejects lengths that cannot fit in the
// remaining input, given each element needs at least one byte.
func (r *Reader) count(field string) (int, error) {
	off := r.Position()
	n, err := r.u32(field)
	if err != nil {
		return 0, err
	}
	if uint64(n) > uint64(r.Len()) {
		return 0, r.fail(errors.KindTruncated, off, field, "count %d is longer than the data length %d", n, r.Len())
	}
	return int(n), nil
}

func (r *Reader) reserved(field string) error {
	off := r.Position()
	b, err := r.u8(field)
	if err != nil {
		return err
	}
	if b != 0 {
		return r.fail(errors.KindInvalidData, off, field, "expected reserved byte 0, got %d", b)
	}
	return nil
}

func (r *Reader) require(f features.Feature, offset int, field, what string) error {
	if r.features.IsEnabled(f) {
		return nil
	}
	return r.fail(errors.KindDisabledFeature, offset, field, "%s requires the %s feature", what, f)
}

// ReadValType reads a value type, rejecting types outside the feature set.
func (r *Reader) ReadValType() (ValType, error) {
	return r.valType("value type")
}

func (r *Reader) valType(field string) (ValType, error) {
	off := r.Position()
	b, err := r.u8(field)
	if err != nil {
		return 0, err
	}
	vt := ValType(b)
	switch vt {
	case ValI32, ValI64, ValF32, ValF64:
		return vt, nil
	case ValV128:
		return vt, r.require(features.SIMD, off, field, "v128")
	case ValFuncRef, ValAnyRef, ValNullRef:
		return vt, r.require(features.ReferenceTypes, off, field, vt.String())
	}
	return 0, r.fail(errors.KindInvalidData, off, field, "unknown value type 0x%02x", b)
}

// ReadLocals reads one run-length local declaration.
func (r *Reader) ReadLocals() (LocalEntry, error) {
	r.push("locals")
	defer r.pop()
	count, err := r.u32("count")
	if err != nil {
		return LocalEntry{}, err
	}
	vt, err := r.valType("type")
	if err != nil {
		return LocalEntry{}, err
	}
	return LocalEntry{Count: count, ValType: vt}, nil
}

// ReadOpcode reads a primary opcode byte, or a prefix byte and its LEB128
// sub-opcode.
func (r *Reader) ReadOpcode() (Opcode, error) {
	off := r.Position()
	b, err := r.u8("opcode")
	if err != nil {
		return 0, err
	}
	var (
		op Opcode
		ok bool
	)
	if IsPrefix(b) {
		code, err := r.u32("opcode")
		if err != nil {
			return 0, err
		}
		if op, ok = LookupOpcode(b, code); !ok {
			return 0, r.fail(errors.KindUnknownOpcode, off, "opcode", "unknown opcode: 0x%02x %d", b, code)
		}
	} else if op, ok = LookupOpcode(0, uint32(b)); !ok {
		return 0, r.fail(errors.KindUnknownOpcode, off, "opcode", "unknown opcode: 0x%02x", b)
	}
	if f := op.Feature(); f != 0 {
		if err := r.require(f, off, "opcode", op.String()); err != nil {
			return 0, err
		}
	}
	return op, nil
}

// ReadInstruction reads one opcode and its immediate.
func (r *Reader) ReadInstruction() (Instruction, error) {
	op, err := r.ReadOpcode()
	if err != nil {
		return Instruction{}, err
	}
	r.push(op.String())
	defer r.pop()
	imm, err := r.readImmediate(op)
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{Opcode: op, Imm: imm}, nil
}

func (r *Reader) readImmediate(op Opcode) (any, error) {
	refTypes := r.features.IsEnabled(features.ReferenceTypes)

	switch op.Imm() {
	case ImmNone:
		return nil, nil

	case ImmMemory:
		return nil, r.reserved("reserved")

	case ImmBlock:
		return r.readBlockType()

	case ImmIndex:
		idx, err := r.u32("index")
		if err != nil {
			return nil, err
		}
		return IndexImm{Index: idx}, nil

	case ImmBrTable:
		n, err := r.count("count")
		if err != nil {
			return nil, err
		}
		labels := make([]uint32, 0, n)
		for range n {
			l, err := r.u32("label")
			if err != nil {
				return nil, err
			}
			labels = append(labels, l)
		}
		def, err := r.u32("default")
		if err != nil {
			return nil, err
		}
		return BrTableImm{Labels: labels, Default: def}, nil

	case ImmCallIndirect:
		typeIdx, err := r.u32("type index")
		if err != nil {
			return nil, err
		}
		var tableIdx uint32
		if refTypes {
			tableIdx, err = r.u32("table index")
		} else {
			err = r.reserved("reserved")
		}
		if err != nil {
			return nil, err
		}
		return CallIndirectImm{TypeIdx: typeIdx, TableIdx: tableIdx}, nil

	case ImmMemArg:
		r.push("memarg")
		defer r.pop()
		align, err := r.u32("align")
		if err != nil {
			return nil, err
		}
		offset, err := r.u32("offset")
		if err != nil {
			return nil, err
		}
		return MemArgImm{Align: align, Offset: offset}, nil

	case ImmI32:
		v, err := r.s32("value")
		if err != nil {
			return nil, err
		}
		return I32Imm{Value: v}, nil

	case ImmI64:
		v, err := r.s64("value")
		if err != nil {
			return nil, err
		}
		return I64Imm{Value: v}, nil

	case ImmF32:
		bits, err := r.u32le("value")
		if err != nil {
			return nil, err
		}
		return F32Imm{Bits: bits}, nil

	case ImmF64:
		bits, err := r.u64le("value")
		if err != nil {
			return nil, err
		}
		return F64Imm{Bits: bits}, nil

	case ImmSelectType:
		n, err := r.count("count")
		if err != nil {
			return nil, err
		}
		types := make([]ValType, 0, n)
		for range n {
			vt, err := r.valType("type")
			if err != nil {
				return nil, err
			}
			types = append(types, vt)
		}
		return SelectTypeImm{Types: types}, nil

	case ImmInit:
		seg, err := r.u32("segment index")
		if err != nil {
			return nil, err
		}
		var dst uint32
		if op == OpTableInit && refTypes {
			dst, err = r.u32("table index")
		} else {
			err = r.reserved("reserved")
		}
		if err != nil {
			return nil, err
		}
		return InitImm{SegmentIdx: seg, DstIdx: dst}, nil

	case ImmCopy:
		if op == OpTableCopy && refTypes {
			dst, err := r.u32("dst index")
			if err != nil {
				return nil, err
			}
			src, err := r.u32("src index")
			if err != nil {
				return nil, err
			}
			return CopyImm{DstIdx: dst, SrcIdx: src}, nil
		}
		if err := r.reserved("reserved"); err != nil {
			return nil, err
		}
		if err := r.reserved("reserved"); err != nil {
			return nil, err
		}
		return CopyImm{}, nil

	case ImmShuffle:
		b, err := r.bytes(16, "lanes")
		if err != nil {
			return nil, err
		}
		var imm ShuffleImm
		copy(imm.Lanes[:], b)
		return imm, nil

	case ImmV128:
		lo, err := r.u64le("value")
		if err != nil {
			return nil, err
		}
		hi, err := r.u64le("value")
		if err != nil {
			return nil, err
		}
		return V128Imm{Lo: lo, Hi: hi}, nil

	case ImmLane:
		lane, err := r.u8("lane")
		if err != nil {
			return nil, err
		}
		return LaneImm{Lane: lane}, nil
	}

	return nil, r.fail(errors.KindUnknownOpcode, r.Position(), "", "no immediate reader for %s", op)
}

func (r *Reader) readBlockType() (BlockImm, error) {
	off := r.Position()
	v, err := r.s32("block type")
	if err != nil {
		return BlockImm{}, err
	}
	if v >= 0 {
		return BlockImm{Type: v}, r.require(features.MultiValue, off, "block type", "block type index")
	}
	if v == BlockTypeVoid {
		return BlockImm{Type: v}, nil
	}
	vt, ok := BlockValType(v)
	if !ok {
		return BlockImm{}, r.fail(errors.KindInvalidData, off, "block type", "unknown block type %d", v)
	}
	switch vt {
	case ValV128:
		err = r.require(features.SIMD, off, "block type", "v128")
	case ValFuncRef, ValAnyRef, ValNullRef:
		err = r.require(features.ReferenceTypes, off, "block type", vt.String())
	}
	return BlockImm{Type: v}, err
}

// ReadExpression reads instructions through the end opcode that closes the
// outermost block. The returned slice includes that end.
func (r *Reader) ReadExpression() ([]Instruction, error) {
	var instrs []Instruction
	depth := 0
	for {
		instr, err := r.ReadInstruction()
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, instr)
		switch instr.Opcode {
		case OpBlock, OpLoop, OpIf:
			depth++
		case OpEnd:
			if depth == 0 {
				return instrs, nil
			}
			depth--
		}
	}
}
