package valid

import "github.com/wippyai/wasm-validator/wasm"

// signature is the fixed stack effect of an instruction.
type signature struct {
	params  []StackType
	results []StackType
}

var (
	tI32  = []StackType{I32}
	tI64  = []StackType{I64}
	tF32  = []StackType{F32}
	tF64  = []StackType{F64}
	tV128 = []StackType{V128}

	tI32I32   = []StackType{I32, I32}
	tI64I64   = []StackType{I64, I64}
	tF32F32   = []StackType{F32, F32}
	tF64F64   = []StackType{F64, F64}
	tV128V128 = []StackType{V128, V128}
)

// signatures maps every instruction with a fixed stack effect to it.
var signatures = buildSignatures()

func buildSignatures() map[wasm.Opcode]signature {
	m := make(map[wasm.Opcode]signature, 320)
	add := func(params, results []StackType, ops ...wasm.Opcode) {
		for _, op := range ops {
			m[op] = signature{params: params, results: results}
		}
	}

	// i32 -> i32
	add(tI32, tI32,
		wasm.OpI32Eqz, wasm.OpI32Clz, wasm.OpI32Ctz, wasm.OpI32Popcnt,
		wasm.OpI32Extend8S, wasm.OpI32Extend16S)
	// i64 -> i64
	add(tI64, tI64,
		wasm.OpI64Clz, wasm.OpI64Ctz, wasm.OpI64Popcnt,
		wasm.OpI64Extend8S, wasm.OpI64Extend16S, wasm.OpI64Extend32S)
	add(tI64, tI32, wasm.OpI64Eqz, wasm.OpI32WrapI64)

	add(tI32I32, tI32,
		wasm.OpI32Eq, wasm.OpI32Ne, wasm.OpI32LtS, wasm.OpI32LtU,
		wasm.OpI32GtS, wasm.OpI32GtU, wasm.OpI32LeS, wasm.OpI32LeU,
		wasm.OpI32GeS, wasm.OpI32GeU,
		wasm.OpI32Add, wasm.OpI32Sub, wasm.OpI32Mul, wasm.OpI32DivS,
		wasm.OpI32DivU, wasm.OpI32RemS, wasm.OpI32RemU, wasm.OpI32And,
		wasm.OpI32Or, wasm.OpI32Xor, wasm.OpI32Shl, wasm.OpI32ShrS,
		wasm.OpI32ShrU, wasm.OpI32Rotl, wasm.OpI32Rotr)
	add(tI64I64, tI32,
		wasm.OpI64Eq, wasm.OpI64Ne, wasm.OpI64LtS, wasm.OpI64LtU,
		wasm.OpI64GtS, wasm.OpI64GtU, wasm.OpI64LeS, wasm.OpI64LeU,
		wasm.OpI64GeS, wasm.OpI64GeU)
	add(tI64I64, tI64,
		wasm.OpI64Add, wasm.OpI64Sub, wasm.OpI64Mul, wasm.OpI64DivS,
		wasm.OpI64DivU, wasm.OpI64RemS, wasm.OpI64RemU, wasm.OpI64And,
		wasm.OpI64Or, wasm.OpI64Xor, wasm.OpI64Shl, wasm.OpI64ShrS,
		wasm.OpI64ShrU, wasm.OpI64Rotl, wasm.OpI64Rotr)

	add(tF32F32, tI32,
		wasm.OpF32Eq, wasm.OpF32Ne, wasm.OpF32Lt, wasm.OpF32Gt,
		wasm.OpF32Le, wasm.OpF32Ge)
	add(tF64F64, tI32,
		wasm.OpF64Eq, wasm.OpF64Ne, wasm.OpF64Lt, wasm.OpF64Gt,
		wasm.OpF64Le, wasm.OpF64Ge)
	add(tF32, tF32,
		wasm.OpF32Abs, wasm.OpF32Neg, wasm.OpF32Ceil, wasm.OpF32Floor,
		wasm.OpF32Trunc, wasm.OpF32Nearest, wasm.OpF32Sqrt)
	add(tF32F32, tF32,
		wasm.OpF32Add, wasm.OpF32Sub, wasm.OpF32Mul, wasm.OpF32Div,
		wasm.OpF32Min, wasm.OpF32Max, wasm.OpF32Copysign)
	add(tF64, tF64,
		wasm.OpF64Abs, wasm.OpF64Neg, wasm.OpF64Ceil, wasm.OpF64Floor,
		wasm.OpF64Trunc, wasm.OpF64Nearest, wasm.OpF64Sqrt)
	add(tF64F64, tF64,
		wasm.OpF64Add, wasm.OpF64Sub, wasm.OpF64Mul, wasm.OpF64Div,
		wasm.OpF64Min, wasm.OpF64Max, wasm.OpF64Copysign)

	// Conversions.
	add(tF32, tI32,
		wasm.OpI32TruncF32S, wasm.OpI32TruncF32U, wasm.OpI32ReinterpretF32,
		wasm.OpI32TruncSatF32S, wasm.OpI32TruncSatF32U)
	add(tF64, tI32,
		wasm.OpI32TruncF64S, wasm.OpI32TruncF64U,
		wasm.OpI32TruncSatF64S, wasm.OpI32TruncSatF64U)
	add(tI32, tI64, wasm.OpI64ExtendI32S, wasm.OpI64ExtendI32U)
	add(tF32, tI64,
		wasm.OpI64TruncF32S, wasm.OpI64TruncF32U,
		wasm.OpI64TruncSatF32S, wasm.OpI64TruncSatF32U)
	add(tF64, tI64,
		wasm.OpI64TruncF64S, wasm.OpI64TruncF64U, wasm.OpI64ReinterpretF64,
		wasm.OpI64TruncSatF64S, wasm.OpI64TruncSatF64U)
	add(tI32, tF32,
		wasm.OpF32ConvertI32S, wasm.OpF32ConvertI32U, wasm.OpF32ReinterpretI32)
	add(tI64, tF32, wasm.OpF32ConvertI64S, wasm.OpF32ConvertI64U)
	add(tF64, tF32, wasm.OpF32DemoteF64)
	add(tI32, tF64, wasm.OpF64ConvertI32S, wasm.OpF64ConvertI32U)
	add(tI64, tF64,
		wasm.OpF64ConvertI64S, wasm.OpF64ConvertI64U, wasm.OpF64ReinterpretI64)
	add(tF32, tF64, wasm.OpF64PromoteF32)

	add([]StackType{AnyRef}, tI32, wasm.OpRefIsNull)

	// SIMD.
	add(tV128, tV128,
		wasm.OpV128Not,
		wasm.OpI8x16Neg, wasm.OpI16x8Neg, wasm.OpI32x4Neg, wasm.OpI64x2Neg,
		wasm.OpF32x4Abs, wasm.OpF32x4Neg, wasm.OpF32x4Sqrt,
		wasm.OpF64x2Abs, wasm.OpF64x2Neg, wasm.OpF64x2Sqrt,
		wasm.OpI32x4TruncSatF32x4S, wasm.OpI32x4TruncSatF32x4U,
		wasm.OpI64x2TruncSatF64x2S, wasm.OpI64x2TruncSatF64x2U,
		wasm.OpF32x4ConvertI32x4S, wasm.OpF32x4ConvertI32x4U,
		wasm.OpF64x2ConvertI64x2S, wasm.OpF64x2ConvertI64x2U,
		wasm.OpI16x8WidenLowI8x16S, wasm.OpI16x8WidenHighI8x16S,
		wasm.OpI16x8WidenLowI8x16U, wasm.OpI16x8WidenHighI8x16U,
		wasm.OpI32x4WidenLowI16x8S, wasm.OpI32x4WidenHighI16x8S,
		wasm.OpI32x4WidenLowI16x8U, wasm.OpI32x4WidenHighI16x8U)
	add([]StackType{V128, V128, V128}, tV128, wasm.OpV128Bitselect)
	add(tV128V128, tV128,
		wasm.OpI8x16Eq, wasm.OpI8x16Ne, wasm.OpI8x16LtS, wasm.OpI8x16LtU,
		wasm.OpI8x16GtS, wasm.OpI8x16GtU, wasm.OpI8x16LeS, wasm.OpI8x16LeU,
		wasm.OpI8x16GeS, wasm.OpI8x16GeU,
		wasm.OpI16x8Eq, wasm.OpI16x8Ne, wasm.OpI16x8LtS, wasm.OpI16x8LtU,
		wasm.OpI16x8GtS, wasm.OpI16x8GtU, wasm.OpI16x8LeS, wasm.OpI16x8LeU,
		wasm.OpI16x8GeS, wasm.OpI16x8GeU,
		wasm.OpI32x4Eq, wasm.OpI32x4Ne, wasm.OpI32x4LtS, wasm.OpI32x4LtU,
		wasm.OpI32x4GtS, wasm.OpI32x4GtU, wasm.OpI32x4LeS, wasm.OpI32x4LeU,
		wasm.OpI32x4GeS, wasm.OpI32x4GeU,
		wasm.OpF32x4Eq, wasm.OpF32x4Ne, wasm.OpF32x4Lt, wasm.OpF32x4Gt,
		wasm.OpF32x4Le, wasm.OpF32x4Ge,
		wasm.OpF64x2Eq, wasm.OpF64x2Ne, wasm.OpF64x2Lt, wasm.OpF64x2Gt,
		wasm.OpF64x2Le, wasm.OpF64x2Ge,
		wasm.OpV128And, wasm.OpV128Or, wasm.OpV128Xor, wasm.OpV128Andnot,
		wasm.OpI8x16Add, wasm.OpI8x16AddSaturateS, wasm.OpI8x16AddSaturateU,
		wasm.OpI8x16Sub, wasm.OpI8x16SubSaturateS, wasm.OpI8x16SubSaturateU,
		wasm.OpI8x16Mul,
		wasm.OpI16x8Add, wasm.OpI16x8AddSaturateS, wasm.OpI16x8AddSaturateU,
		wasm.OpI16x8Sub, wasm.OpI16x8SubSaturateS, wasm.OpI16x8SubSaturateU,
		wasm.OpI16x8Mul,
		wasm.OpI32x4Add, wasm.OpI32x4Sub, wasm.OpI32x4Mul,
		wasm.OpI64x2Add, wasm.OpI64x2Sub,
		wasm.OpF32x4Add, wasm.OpF32x4Sub, wasm.OpF32x4Mul, wasm.OpF32x4Div,
		wasm.OpF32x4Min, wasm.OpF32x4Max,
		wasm.OpF64x2Add, wasm.OpF64x2Sub, wasm.OpF64x2Mul, wasm.OpF64x2Div,
		wasm.OpF64x2Min, wasm.OpF64x2Max,
		wasm.OpV8x16Shuffle, wasm.OpV8x16Swizzle,
		wasm.OpI8x16NarrowI16x8S, wasm.OpI8x16NarrowI16x8U,
		wasm.OpI16x8NarrowI32x4S, wasm.OpI16x8NarrowI32x4U,
		wasm.OpI8x16AvgrU, wasm.OpI16x8AvgrU)

	add(tI32, tV128, wasm.OpI8x16Splat, wasm.OpI16x8Splat, wasm.OpI32x4Splat)
	add(tI64, tV128, wasm.OpI64x2Splat)
	add(tF32, tV128, wasm.OpF32x4Splat)
	add(tF64, tV128, wasm.OpF64x2Splat)

	add(tV128, tI32,
		wasm.OpI8x16ExtractLaneS, wasm.OpI8x16ExtractLaneU,
		wasm.OpI16x8ExtractLaneS, wasm.OpI16x8ExtractLaneU,
		wasm.OpI32x4ExtractLane,
		wasm.OpI8x16AnyTrue, wasm.OpI8x16AllTrue,
		wasm.OpI16x8AnyTrue, wasm.OpI16x8AllTrue,
		wasm.OpI32x4AnyTrue, wasm.OpI32x4AllTrue,
		wasm.OpI64x2AnyTrue, wasm.OpI64x2AllTrue)
	add(tV128, tI64, wasm.OpI64x2ExtractLane)
	add(tV128, tF32, wasm.OpF32x4ExtractLane)
	add(tV128, tF64, wasm.OpF64x2ExtractLane)

	add([]StackType{V128, I32}, tV128,
		wasm.OpI8x16ReplaceLane, wasm.OpI16x8ReplaceLane, wasm.OpI32x4ReplaceLane,
		wasm.OpI8x16Shl, wasm.OpI8x16ShrS, wasm.OpI8x16ShrU,
		wasm.OpI16x8Shl, wasm.OpI16x8ShrS, wasm.OpI16x8ShrU,
		wasm.OpI32x4Shl, wasm.OpI32x4ShrS, wasm.OpI32x4ShrU,
		wasm.OpI64x2Shl, wasm.OpI64x2ShrS, wasm.OpI64x2ShrU)
	add([]StackType{V128, I64}, tV128, wasm.OpI64x2ReplaceLane)
	add([]StackType{V128, F32}, tV128, wasm.OpF32x4ReplaceLane)
	add([]StackType{V128, F64}, tV128, wasm.OpF64x2ReplaceLane)

	return m
}

// memAccess describes a load, store or atomic access. align is the
// natural alignment as a log2 byte count.
type memAccess struct {
	params  []StackType
	results []StackType
	align   uint32
	atomic  bool
}

var memoryAccesses = buildMemoryAccesses()

func buildMemoryAccesses() map[wasm.Opcode]memAccess {
	m := make(map[wasm.Opcode]memAccess, 120)
	load := func(t []StackType, align uint32, atomic bool, ops ...wasm.Opcode) {
		for _, op := range ops {
			m[op] = memAccess{params: tI32, results: t, align: align, atomic: atomic}
		}
	}
	store := func(t StackType, align uint32, atomic bool, ops ...wasm.Opcode) {
		for _, op := range ops {
			m[op] = memAccess{params: []StackType{I32, t}, align: align, atomic: atomic}
		}
	}
	rmw := func(params, results []StackType, align uint32, ops ...wasm.Opcode) {
		for _, op := range ops {
			m[op] = memAccess{params: params, results: results, align: align, atomic: true}
		}
	}

	load(tI32, 2, false, wasm.OpI32Load)
	load(tI64, 3, false, wasm.OpI64Load)
	load(tF32, 2, false, wasm.OpF32Load)
	load(tF64, 3, false, wasm.OpF64Load)
	load(tI32, 0, false, wasm.OpI32Load8S, wasm.OpI32Load8U)
	load(tI32, 1, false, wasm.OpI32Load16S, wasm.OpI32Load16U)
	load(tI64, 0, false, wasm.OpI64Load8S, wasm.OpI64Load8U)
	load(tI64, 1, false, wasm.OpI64Load16S, wasm.OpI64Load16U)
	load(tI64, 2, false, wasm.OpI64Load32S, wasm.OpI64Load32U)

	store(I32, 2, false, wasm.OpI32Store)
	store(I64, 3, false, wasm.OpI64Store)
	store(F32, 2, false, wasm.OpF32Store)
	store(F64, 3, false, wasm.OpF64Store)
	store(I32, 0, false, wasm.OpI32Store8)
	store(I32, 1, false, wasm.OpI32Store16)
	store(I64, 0, false, wasm.OpI64Store8)
	store(I64, 1, false, wasm.OpI64Store16)
	store(I64, 2, false, wasm.OpI64Store32)

	load(tV128, 4, false, wasm.OpV128Load)
	store(V128, 4, false, wasm.OpV128Store)
	load(tV128, 0, false, wasm.OpV8x16LoadSplat)
	load(tV128, 1, false, wasm.OpV16x8LoadSplat)
	load(tV128, 2, false, wasm.OpV32x4LoadSplat)
	load(tV128, 3, false, wasm.OpV64x2LoadSplat,
		wasm.OpI16x8Load8x8S, wasm.OpI16x8Load8x8U,
		wasm.OpI32x4Load16x4S, wasm.OpI32x4Load16x4U,
		wasm.OpI64x2Load32x2S, wasm.OpI64x2Load32x2U)

	rmw(tI32I32, tI32, 2, wasm.OpAtomicNotify)
	rmw([]StackType{I32, I32, I64}, tI32, 2, wasm.OpI32AtomicWait)
	rmw([]StackType{I32, I64, I64}, tI32, 3, wasm.OpI64AtomicWait)

	load(tI32, 2, true, wasm.OpI32AtomicLoad)
	load(tI64, 3, true, wasm.OpI64AtomicLoad)
	load(tI32, 0, true, wasm.OpI32AtomicLoad8U)
	load(tI32, 1, true, wasm.OpI32AtomicLoad16U)
	load(tI64, 0, true, wasm.OpI64AtomicLoad8U)
	load(tI64, 1, true, wasm.OpI64AtomicLoad16U)
	load(tI64, 2, true, wasm.OpI64AtomicLoad32U)

	store(I32, 2, true, wasm.OpI32AtomicStore)
	store(I64, 3, true, wasm.OpI64AtomicStore)
	store(I32, 0, true, wasm.OpI32AtomicStore8)
	store(I32, 1, true, wasm.OpI32AtomicStore16)
	store(I64, 0, true, wasm.OpI64AtomicStore8)
	store(I64, 1, true, wasm.OpI64AtomicStore16)
	store(I64, 2, true, wasm.OpI64AtomicStore32)

	i32rmw := []StackType{I32, I32}
	i64rmw := []StackType{I32, I64}
	rmw(i32rmw, tI32, 2,
		wasm.OpI32AtomicRmwAdd, wasm.OpI32AtomicRmwSub, wasm.OpI32AtomicRmwAnd,
		wasm.OpI32AtomicRmwOr, wasm.OpI32AtomicRmwXor, wasm.OpI32AtomicRmwXchg)
	rmw(i32rmw, tI32, 0,
		wasm.OpI32AtomicRmw8AddU, wasm.OpI32AtomicRmw8SubU, wasm.OpI32AtomicRmw8AndU,
		wasm.OpI32AtomicRmw8OrU, wasm.OpI32AtomicRmw8XorU, wasm.OpI32AtomicRmw8XchgU)
	rmw(i32rmw, tI32, 1,
		wasm.OpI32AtomicRmw16AddU, wasm.OpI32AtomicRmw16SubU, wasm.OpI32AtomicRmw16AndU,
		wasm.OpI32AtomicRmw16OrU, wasm.OpI32AtomicRmw16XorU, wasm.OpI32AtomicRmw16XchgU)
	rmw(i64rmw, tI64, 3,
		wasm.OpI64AtomicRmwAdd, wasm.OpI64AtomicRmwSub, wasm.OpI64AtomicRmwAnd,
		wasm.OpI64AtomicRmwOr, wasm.OpI64AtomicRmwXor, wasm.OpI64AtomicRmwXchg)
	rmw(i64rmw, tI64, 0,
		wasm.OpI64AtomicRmw8AddU, wasm.OpI64AtomicRmw8SubU, wasm.OpI64AtomicRmw8AndU,
		wasm.OpI64AtomicRmw8OrU, wasm.OpI64AtomicRmw8XorU, wasm.OpI64AtomicRmw8XchgU)
	rmw(i64rmw, tI64, 1,
		wasm.OpI64AtomicRmw16AddU, wasm.OpI64AtomicRmw16SubU, wasm.OpI64AtomicRmw16AndU,
		wasm.OpI64AtomicRmw16OrU, wasm.OpI64AtomicRmw16XorU, wasm.OpI64AtomicRmw16XchgU)
	rmw(i64rmw, tI64, 2,
		wasm.OpI64AtomicRmw32AddU, wasm.OpI64AtomicRmw32SubU, wasm.OpI64AtomicRmw32AndU,
		wasm.OpI64AtomicRmw32OrU, wasm.OpI64AtomicRmw32XorU, wasm.OpI64AtomicRmw32XchgU)

	i32cmpxchg := []StackType{I32, I32, I32}
	i64cmpxchg := []StackType{I32, I64, I64}
	rmw(i32cmpxchg, tI32, 2, wasm.OpI32AtomicRmwCmpxchg)
	rmw(i32cmpxchg, tI32, 0, wasm.OpI32AtomicRmw8CmpxchgU)
	rmw(i32cmpxchg, tI32, 1, wasm.OpI32AtomicRmw16CmpxchgU)
	rmw(i64cmpxchg, tI64, 3, wasm.OpI64AtomicRmwCmpxchg)
	rmw(i64cmpxchg, tI64, 0, wasm.OpI64AtomicRmw8CmpxchgU)
	rmw(i64cmpxchg, tI64, 1, wasm.OpI64AtomicRmw16CmpxchgU)
	rmw(i64cmpxchg, tI64, 2, wasm.OpI64AtomicRmw32CmpxchgU)

	return m
}
