package wasm

import (
	"github.com/wippyai/wasm-validator/errors"
	"github.com/wippyai/wasm-validator/wasm/internal/binary"
)

// Writer encodes instructions. A fixed-capacity Writer never fails on
// exhaustion; it drops the excess and sets Overflow, which callers check
// after a batch of writes.
type Writer struct {
	w *binary.Writer
}

// NewWriter creates a growable Writer.
func NewWriter() *Writer {
	return &Writer{w: binary.NewWriter()}
}

// NewFixedWriter creates a Writer that fills dst.
func NewFixedWriter(dst []byte) *Writer {
	return &Writer{w: binary.NewFixedWriter(dst)}
}

// Bytes returns the encoded bytes.
func (w *Writer) Bytes() []byte { return w.w.Bytes() }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return w.w.Len() }

// Overflow reports whether a fixed-capacity Writer ran out of space.
func (w *Writer) Overflow() bool { return w.w.Overflow() }

// Reset discards written bytes and clears the overflow flag.
func (w *Writer) Reset() { w.w.Reset() }

// WriteOpcode writes op, with its prefix and LEB128 sub-opcode if any.
func (w *Writer) WriteOpcode(op Opcode) {
	if p := op.Prefix(); p != 0 {
		w.w.Byte(p)
		w.w.WriteU32(op.Code())
		return
	}
	w.w.Byte(byte(op))
}

// WriteValType writes a value type byte.
func (w *Writer) WriteValType(vt ValType) {
	w.w.Byte(byte(vt))
}

// WriteLocals writes one run-length local declaration.
func (w *Writer) WriteLocals(l LocalEntry) {
	w.w.WriteU32(l.Count)
	w.WriteValType(l.ValType)
}

// WriteInstruction writes an opcode and its immediate. It fails only when
// the opcode is unknown or the immediate type disagrees with the opcode;
// nothing is written in that case.
func (w *Writer) WriteInstruction(instr Instruction) error {
	op := instr.Opcode
	if !op.Known() {
		return errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Detailf("unknown opcode 0x%04x", uint16(op)).Build()
	}
	if !instr.CheckImm() {
		return errors.New(errors.PhaseEncode, errors.KindImmediateMismatch).
			Path(op.String()).
			Value(instr.Imm).
			Detailf("immediate %T does not match opcode", instr.Imm).Build()
	}

	w.WriteOpcode(op)

	switch imm := instr.Imm.(type) {
	case nil:
		if op.Imm() == ImmMemory {
			w.w.Byte(0)
		}
	case BlockImm:
		w.w.WriteS32(imm.Type)
	case IndexImm:
		w.w.WriteU32(imm.Index)
	case BrTableImm:
		w.w.WriteU32(uint32(len(imm.Labels)))
		for _, l := range imm.Labels {
			w.w.WriteU32(l)
		}
		w.w.WriteU32(imm.Default)
	case CallIndirectImm:
		w.w.WriteU32(imm.TypeIdx)
		w.w.WriteU32(imm.TableIdx)
	case MemArgImm:
		w.w.WriteU32(imm.Align)
		w.w.WriteU32(imm.Offset)
	case I32Imm:
		w.w.WriteS32(imm.Value)
	case I64Imm:
		w.w.WriteS64(imm.Value)
	case F32Imm:
		w.w.WriteU32LE(imm.Bits)
	case F64Imm:
		w.w.WriteU32LE(uint32(imm.Bits))
		w.w.WriteU32LE(uint32(imm.Bits >> 32))
	case SelectTypeImm:
		w.w.WriteU32(uint32(len(imm.Types)))
		for _, t := range imm.Types {
			w.WriteValType(t)
		}
	case InitImm:
		w.w.WriteU32(imm.SegmentIdx)
		w.w.WriteU32(imm.DstIdx)
	case CopyImm:
		w.w.WriteU32(imm.DstIdx)
		w.w.WriteU32(imm.SrcIdx)
	case ShuffleImm:
		w.w.WriteBytes(imm.Lanes[:])
	case V128Imm:
		b := imm.Bytes()
		w.w.WriteBytes(b[:])
	case LaneImm:
		w.w.Byte(imm.Lane)
	}
	return nil
}

// EncodeInstructions encodes a sequence of instructions.
func EncodeInstructions(instrs []Instruction) ([]byte, error) {
	w := NewWriter()
	for _, instr := range instrs {
		if err := w.WriteInstruction(instr); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}
