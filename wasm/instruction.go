package wasm

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Instruction is a decoded instruction. The concrete type of Imm is fixed
// by Opcode.Imm(): nil for ImmNone and ImmMemory, otherwise the matching
// *Imm struct below (held by value).
type Instruction struct {
	Imm    any
	Opcode Opcode
}

// BlockImm holds the block type for block, loop, and if.
type BlockImm struct {
	Type int32 // -64=void, -1=i32, -2=i64, -3=f32, -4=f64, -5=v128, -16=funcref, -17=anyref, -18=nullref, >=0=type index
}

// IndexImm holds a single index: a label depth, or a function, local,
// global, table, or segment index.
type IndexImm struct {
	Index uint32
}

// BrTableImm holds the label table for br_table.
type BrTableImm struct {
	Labels  []uint32
	Default uint32
}

// CallIndirectImm holds type and table indices for call_indirect and
// return_call_indirect.
type CallIndirectImm struct {
	TypeIdx  uint32
	TableIdx uint32
}

// MemArgImm holds memory access parameters.
type MemArgImm struct {
	Align  uint32 // log2 of the alignment
	Offset uint32
}

// I32Imm holds an i32.const value.
type I32Imm struct {
	Value int32
}

// I64Imm holds an i64.const value.
type I64Imm struct {
	Value int64
}

// F32Imm holds the bit pattern of an f32.const value.
type F32Imm struct {
	Bits uint32
}

// Value returns the float value.
func (f F32Imm) Value() float32 { return math.Float32frombits(f.Bits) }

// F64Imm holds the bit pattern of an f64.const value.
type F64Imm struct {
	Bits uint64
}

// Value returns the float value.
func (f F64Imm) Value() float64 { return math.Float64frombits(f.Bits) }

// SelectTypeImm holds the result types of a typed select.
type SelectTypeImm struct {
	Types []ValType
}

// InitImm holds memory.init and table.init operands. DstIdx is the memory
// or table index.
type InitImm struct {
	SegmentIdx uint32
	DstIdx     uint32
}

// CopyImm holds memory.copy and table.copy operands.
type CopyImm struct {
	DstIdx uint32
	SrcIdx uint32
}

// ShuffleImm holds the 16 lane indices of v8x16.shuffle.
type ShuffleImm struct {
	Lanes [16]byte
}

// V128Imm holds a v128.const value as two little-endian 64-bit words.
type V128Imm struct {
	Lo uint64
	Hi uint64
}

// MakeV128 builds a V128Imm from its 16 bytes in memory order.
func MakeV128(b [16]byte) V128Imm {
	return V128Imm{
		Lo: binary.LittleEndian.Uint64(b[:8]),
		Hi: binary.LittleEndian.Uint64(b[8:]),
	}
}

// Bytes returns the 16 bytes of v in memory order.
func (v V128Imm) Bytes() [16]byte {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[:8], v.Lo)
	binary.LittleEndian.PutUint64(b[8:], v.Hi)
	return b
}

// LaneImm holds the lane index of an extract_lane or replace_lane.
type LaneImm struct {
	Lane byte
}

// LaneCount returns the number of lanes addressed by a lane instruction,
// or 0 when op takes no lane immediate.
func LaneCount(op Opcode) int {
	switch op {
	case OpI8x16ExtractLaneS, OpI8x16ExtractLaneU, OpI8x16ReplaceLane:
		return 16
	case OpI16x8ExtractLaneS, OpI16x8ExtractLaneU, OpI16x8ReplaceLane:
		return 8
	case OpI32x4ExtractLane, OpI32x4ReplaceLane, OpF32x4ExtractLane, OpF32x4ReplaceLane:
		return 4
	case OpI64x2ExtractLane, OpI64x2ReplaceLane, OpF64x2ExtractLane, OpF64x2ReplaceLane:
		return 2
	}
	return 0
}

// GetCallTarget returns the function index for direct calls.
func (i Instruction) GetCallTarget() (uint32, bool) {
	if i.Opcode != OpCall && i.Opcode != OpReturnCall {
		return 0, false
	}
	imm, ok := i.Imm.(IndexImm)
	return imm.Index, ok
}

// IsIndirectCall reports whether the instruction calls through a table.
func (i Instruction) IsIndirectCall() bool {
	return i.Opcode == OpCallIndirect || i.Opcode == OpReturnCallIndirect
}

// CheckImm reports whether the immediate's type agrees with the opcode.
func (i Instruction) CheckImm() bool {
	switch i.Opcode.Imm() {
	case ImmNone, ImmMemory:
		return i.Imm == nil
	case ImmBlock:
		_, ok := i.Imm.(BlockImm)
		return ok
	case ImmIndex:
		_, ok := i.Imm.(IndexImm)
		return ok
	case ImmBrTable:
		_, ok := i.Imm.(BrTableImm)
		return ok
	case ImmCallIndirect:
		_, ok := i.Imm.(CallIndirectImm)
		return ok
	case ImmMemArg:
		_, ok := i.Imm.(MemArgImm)
		return ok
	case ImmI32:
		_, ok := i.Imm.(I32Imm)
		return ok
	case ImmI64:
		_, ok := i.Imm.(I64Imm)
		return ok
	case ImmF32:
		_, ok := i.Imm.(F32Imm)
		return ok
	case ImmF64:
		_, ok := i.Imm.(F64Imm)
		return ok
	case ImmSelectType:
		_, ok := i.Imm.(SelectTypeImm)
		return ok
	case ImmInit:
		_, ok := i.Imm.(InitImm)
		return ok
	case ImmCopy:
		_, ok := i.Imm.(CopyImm)
		return ok
	case ImmShuffle:
		_, ok := i.Imm.(ShuffleImm)
		return ok
	case ImmV128:
		_, ok := i.Imm.(V128Imm)
		return ok
	case ImmLane:
		_, ok := i.Imm.(LaneImm)
		return ok
	}
	return false
}

// String renders the instruction in text format: mnemonic followed by its
// immediate.
func (i Instruction) String() string {
	name := i.Opcode.String()
	switch imm := i.Imm.(type) {
	case nil:
		return name
	case BlockImm:
		if imm.Type == BlockTypeVoid {
			return name
		}
		if vt, ok := BlockValType(imm.Type); ok {
			return fmt.Sprintf("%s (result %s)", name, vt)
		}
		return fmt.Sprintf("%s (type %d)", name, imm.Type)
	case IndexImm:
		return fmt.Sprintf("%s %d", name, imm.Index)
	case BrTableImm:
		var b strings.Builder
		b.WriteString(name)
		for _, l := range imm.Labels {
			fmt.Fprintf(&b, " %d", l)
		}
		fmt.Fprintf(&b, " %d", imm.Default)
		return b.String()
	case CallIndirectImm:
		if imm.TableIdx != 0 {
			return fmt.Sprintf("%s %d (type %d)", name, imm.TableIdx, imm.TypeIdx)
		}
		return fmt.Sprintf("%s (type %d)", name, imm.TypeIdx)
	case MemArgImm:
		var b strings.Builder
		b.WriteString(name)
		if imm.Offset != 0 {
			fmt.Fprintf(&b, " offset=%d", imm.Offset)
		}
		if imm.Align < 32 {
			fmt.Fprintf(&b, " align=%d", uint64(1)<<imm.Align)
		} else {
			fmt.Fprintf(&b, " align=2**%d", imm.Align)
		}
		return b.String()
	case I32Imm:
		return fmt.Sprintf("%s %d", name, imm.Value)
	case I64Imm:
		return fmt.Sprintf("%s %d", name, imm.Value)
	case F32Imm:
		return fmt.Sprintf("%s %v", name, imm.Value())
	case F64Imm:
		return fmt.Sprintf("%s %v", name, imm.Value())
	case SelectTypeImm:
		parts := make([]string, len(imm.Types))
		for j, t := range imm.Types {
			parts[j] = t.String()
		}
		return fmt.Sprintf("%s (result %s)", name, strings.Join(parts, " "))
	case InitImm:
		if imm.DstIdx != 0 {
			return fmt.Sprintf("%s %d %d", name, imm.DstIdx, imm.SegmentIdx)
		}
		return fmt.Sprintf("%s %d", name, imm.SegmentIdx)
	case CopyImm:
		if imm.DstIdx != 0 || imm.SrcIdx != 0 {
			return fmt.Sprintf("%s %d %d", name, imm.DstIdx, imm.SrcIdx)
		}
		return name
	case ShuffleImm:
		var b strings.Builder
		b.WriteString(name)
		for _, l := range imm.Lanes {
			fmt.Fprintf(&b, " %d", l)
		}
		return b.String()
	case V128Imm:
		return fmt.Sprintf("%s i64x2 %#x %#x", name, imm.Lo, imm.Hi)
	case LaneImm:
		return fmt.Sprintf("%s %d", name, imm.Lane)
	default:
		return fmt.Sprintf("%s %v", name, imm)
	}
}
