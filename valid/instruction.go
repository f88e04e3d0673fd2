package valid

import (
	"math"
	"slices"

	"github.com/wippyai/wasm-validator/errors"
	"github.com/wippyai/wasm-validator/features"
	"github.com/wippyai/wasm-validator/wasm"
)

// ValidateLocals appends a run of local declarations to ctx.
func ValidateLocals(l wasm.LocalEntry, ctx *Context, f features.Features, sink errors.Sink) bool {
	v := newValidator(ctx, f, sink)
	valid := true
	if feat, ok := valTypeFeature(l.ValType); ok && !f.IsEnabled(feat) {
		v.reportError(errors.Unsupported(errors.PhaseValidate, l.ValType.String()+" locals", feat.String()))
		valid = false
	}
	if !ctx.AppendLocals(l.Count, l.ValType) {
		v.report(errors.KindLimits, "too many locals; max is %d, got %d",
			uint64(math.MaxUint32), ctx.LocalCount()+uint64(l.Count))
		return false
	}
	return valid
}

func valTypeFeature(vt wasm.ValType) (features.Feature, bool) {
	switch vt {
	case wasm.ValV128:
		return features.SIMD, true
	case wasm.ValFuncRef, wasm.ValAnyRef, wasm.ValNullRef:
		return features.ReferenceTypes, true
	}
	return 0, false
}

// ValidateInstruction applies the typing rule of instr to ctx. Failures
// are reported to sink and never stop the caller from validating the
// next instruction, except once the function's outermost label has
// ended.
func ValidateInstruction(instr wasm.Instruction, ctx *Context, f features.Features, sink errors.Sink) bool {
	v := newValidator(ctx, f, sink)
	v.sink.PushContext(instr.Opcode.String())
	defer v.sink.PopContext()

	if ctx.LabelDepth() == 0 {
		v.report(errors.KindStructure, "unexpected instruction after function end")
		return false
	}
	return v.instruction(instr)
}

func (v *validator) instruction(instr wasm.Instruction) bool {
	op := instr.Opcode
	if sig, ok := signatures[op]; ok {
		return allTrue(v.immediateLanes(instr), v.popAndPushTypes(sig.params, sig.results))
	}
	if acc, ok := memoryAccesses[op]; ok {
		return v.memoryAccess(instr, acc)
	}

	switch op {
	case wasm.OpUnreachable:
		v.setUnreachable()
		return true
	case wasm.OpNop:
		return true
	case wasm.OpBlock:
		return v.block(LabelBlock, blockImm(instr))
	case wasm.OpLoop:
		return v.block(LabelLoop, blockImm(instr))
	case wasm.OpIf:
		valid := v.popTypes(tI32)
		return allTrue(valid, v.block(LabelIf, blockImm(instr)))
	case wasm.OpElse:
		return v.elseLabel()
	case wasm.OpEnd:
		return v.end()
	case wasm.OpBr:
		return v.br(indexImm(instr))
	case wasm.OpBrIf:
		return v.brIf(indexImm(instr))
	case wasm.OpBrTable:
		imm, _ := instr.Imm.(wasm.BrTableImm)
		return v.brTable(imm)
	case wasm.OpReturn:
		return v.br(uint32(v.ctx.LabelDepth() - 1))

	case wasm.OpCall:
		ft, ok := v.callee(indexImm(instr))
		return allTrue(ok, v.popAndPushTypes(StackTypes(ft.Params), StackTypes(ft.Results)))
	case wasm.OpCallIndirect:
		imm, _ := instr.Imm.(wasm.CallIndirectImm)
		return v.callIndirect(imm)
	case wasm.OpReturnCall:
		return v.returnCall(indexImm(instr))
	case wasm.OpReturnCallIndirect:
		imm, _ := instr.Imm.(wasm.CallIndirectImm)
		return v.returnCallIndirect(imm)

	case wasm.OpDrop:
		return v.dropTypes(1, true)
	case wasm.OpSelect:
		return v.selectUntyped()
	case wasm.OpSelectType:
		imm, _ := instr.Imm.(wasm.SelectTypeImm)
		return v.selectTyped(imm)

	case wasm.OpLocalGet:
		t, ok := v.localType(indexImm(instr))
		v.ctx.PushType(t)
		return ok
	case wasm.OpLocalSet:
		t, ok := v.localType(indexImm(instr))
		return allTrue(ok, v.popTypes([]StackType{t}))
	case wasm.OpLocalTee:
		t, ok := v.localType(indexImm(instr))
		ts := []StackType{t}
		return allTrue(ok, v.popAndPushTypes(ts, ts))
	case wasm.OpGlobalGet:
		g, ok := v.global(indexImm(instr))
		v.ctx.PushType(StackTypeOf(g.ValType))
		return ok
	case wasm.OpGlobalSet:
		return v.globalSet(indexImm(instr))

	case wasm.OpTableGet:
		elem, ok := v.tableElem(indexImm(instr))
		return allTrue(ok, v.popAndPushTypes(tI32, []StackType{elem}))
	case wasm.OpTableSet:
		elem, ok := v.tableElem(indexImm(instr))
		return allTrue(ok, v.popTypes([]StackType{I32, elem}))
	case wasm.OpTableGrow:
		elem, ok := v.tableElem(indexImm(instr))
		return allTrue(ok, v.popAndPushTypes([]StackType{elem, I32}, tI32))
	case wasm.OpTableSize:
		_, ok := v.tableElem(indexImm(instr))
		v.ctx.PushType(I32)
		return ok
	case wasm.OpTableFill:
		elem, ok := v.tableElem(indexImm(instr))
		return allTrue(ok, v.popTypes([]StackType{I32, elem, I32}))

	case wasm.OpMemorySize:
		_, ok := v.memory(0)
		v.ctx.PushType(I32)
		return ok
	case wasm.OpMemoryGrow:
		_, ok := v.memory(0)
		return allTrue(ok, v.popAndPushTypes(tI32, tI32))

	case wasm.OpI32Const:
		v.ctx.PushType(I32)
		return true
	case wasm.OpI64Const:
		v.ctx.PushType(I64)
		return true
	case wasm.OpF32Const:
		v.ctx.PushType(F32)
		return true
	case wasm.OpF64Const:
		v.ctx.PushType(F64)
		return true
	case wasm.OpV128Const:
		v.ctx.PushType(V128)
		return true

	case wasm.OpRefNull:
		v.ctx.PushType(NullRef)
		return true
	case wasm.OpRefFunc:
		ok := v.index("function index", indexImm(instr), uint64(len(v.ctx.decls.Functions)))
		v.ctx.PushType(FuncRef)
		return ok

	case wasm.OpMemoryInit:
		imm, _ := instr.Imm.(wasm.InitImm)
		_, memOK := v.memory(0)
		return allTrue(memOK, v.dataSegment(imm.SegmentIdx), v.popTypes([]StackType{I32, I32, I32}))
	case wasm.OpDataDrop:
		return v.dataSegment(indexImm(instr))
	case wasm.OpMemoryCopy, wasm.OpMemoryFill:
		_, ok := v.memory(0)
		return allTrue(ok, v.popTypes([]StackType{I32, I32, I32}))
	case wasm.OpTableInit:
		imm, _ := instr.Imm.(wasm.InitImm)
		_, tableOK := v.tableElem(imm.DstIdx)
		_, segOK := v.elemSegment(imm.SegmentIdx)
		return allTrue(tableOK, segOK, v.popTypes([]StackType{I32, I32, I32}))
	case wasm.OpElemDrop:
		_, ok := v.elemSegment(indexImm(instr))
		return ok
	case wasm.OpTableCopy:
		imm, _ := instr.Imm.(wasm.CopyImm)
		_, dstOK := v.tableElem(imm.DstIdx)
		_, srcOK := v.tableElem(imm.SrcIdx)
		return allTrue(dstOK, srcOK, v.popTypes([]StackType{I32, I32, I32}))
	}

	v.report(errors.KindUnknownOpcode, "no typing rule for %s", op)
	return false
}

func blockImm(instr wasm.Instruction) int32 {
	imm, _ := instr.Imm.(wasm.BlockImm)
	return imm.Type
}

func indexImm(instr wasm.Instruction) uint32 {
	imm, _ := instr.Imm.(wasm.IndexImm)
	return imm.Index
}

// immediateLanes checks lane and shuffle immediates against their shape.
func (v *validator) immediateLanes(instr wasm.Instruction) bool {
	if n := wasm.LaneCount(instr.Opcode); n > 0 {
		imm, _ := instr.Imm.(wasm.LaneImm)
		return v.index("lane index", uint32(imm.Lane), uint64(n))
	}
	if instr.Opcode != wasm.OpV8x16Shuffle {
		return true
	}
	imm, _ := instr.Imm.(wasm.ShuffleImm)
	valid := true
	for _, lane := range imm.Lanes {
		valid = allTrue(v.index("shuffle lane index", uint32(lane), 32), valid)
	}
	return valid
}

func (v *validator) blockSignature(bt int32) (params, results []StackType, ok bool) {
	switch {
	case bt == wasm.BlockTypeVoid:
		return nil, nil, true
	case bt < 0:
		vt, ok := wasm.BlockValType(bt)
		if !ok {
			v.report(errors.KindInvalidData, "invalid block type %d", bt)
			return nil, nil, false
		}
		return nil, []StackType{StackTypeOf(vt)}, true
	default:
		ft, ok := v.functionType(uint32(bt))
		return StackTypes(ft.Params), StackTypes(ft.Results), ok
	}
}

// block opens a label. An unresolvable block type still opens an empty
// label so the matching end stays paired.
func (v *validator) block(kind LabelKind, bt int32) bool {
	params, results, valid := v.blockSignature(bt)
	valid = allTrue(v.popTypes(params), valid)
	v.ctx.PushLabel(kind, params, results)
	v.ctx.PushTypes(params)
	return valid
}

func (v *validator) elseLabel() bool {
	top := v.ctx.top()
	if top.Kind != LabelIf {
		v.report(errors.KindStructure, "got else instruction without if")
		return false
	}
	valid := allTrue(v.popTypes(top.Results), v.checkTypeStackEmpty())
	v.ctx.resetToLimit()
	v.ctx.PushTypes(top.Params)
	top.Kind = LabelElse
	top.Unreachable = false
	return valid
}

// end closes the innermost label. An if without else takes the implicit
// empty else branch first, which checks its params against its results.
func (v *validator) end() bool {
	valid := true
	if v.ctx.top().Kind == LabelIf {
		valid = v.elseLabel()
	}
	top := v.ctx.top()
	valid = allTrue(v.popTypes(top.Results), v.checkTypeStackEmpty(), valid)
	v.ctx.resetToLimit()
	results := top.Results
	v.ctx.labels = v.ctx.labels[:len(v.ctx.labels)-1]
	v.ctx.PushTypes(results)
	return valid
}

func (v *validator) br(depth uint32) bool {
	l, ok := v.label(depth)
	var types []StackType
	if ok {
		types = l.BranchTypes()
	}
	valid := v.popTypes(types)
	v.setUnreachable()
	return allTrue(ok, valid)
}

func (v *validator) brIf(depth uint32) bool {
	valid := v.popTypes(tI32)
	l, ok := v.label(depth)
	var types []StackType
	if ok {
		types = l.BranchTypes()
	}
	return allTrue(valid, ok, v.popAndPushTypes(types, types))
}

// brTable checks every target. With reference types each target only has
// to accept the stack; otherwise all targets must share one signature.
func (v *validator) brTable(imm wasm.BrTableImm) bool {
	valid := v.popTypes(tI32)
	relaxed := v.f.IsEnabled(features.ReferenceTypes)

	var first []StackType
	haveFirst := false
	target := func(depth uint32) bool {
		l, ok := v.label(depth)
		if !ok {
			return false
		}
		types := l.BranchTypes()
		if relaxed {
			return v.checkTypes(types)
		}
		if !haveFirst {
			first, haveFirst = types, true
			return v.checkTypes(types)
		}
		if !slices.Equal(first, types) {
			v.report(errors.KindSignatureMismatch,
				"br_table labels must have the same signature; expected %s, got %s",
				formatTypes(first), formatTypes(types))
			return false
		}
		return true
	}

	valid = allTrue(target(imm.Default), valid)
	for _, depth := range imm.Labels {
		valid = allTrue(target(depth), valid)
	}
	v.setUnreachable()
	return valid
}

func (v *validator) callIndirect(imm wasm.CallIndirectImm) bool {
	_, tableOK := v.tableElem(imm.TableIdx)
	ft, typeOK := v.functionType(imm.TypeIdx)
	valid := v.popTypes(tI32)
	return allTrue(tableOK, typeOK, valid,
		v.popAndPushTypes(StackTypes(ft.Params), StackTypes(ft.Results)))
}

// checkResultTypes requires a tail callee to return what the enclosing
// function returns.
func (v *validator) checkResultTypes(callee []StackType) bool {
	caller := v.ctx.labels[0].BranchTypes()
	if TypeListsMatch(caller, callee) {
		return true
	}
	v.report(errors.KindSignatureMismatch,
		"callee's result types %s must equal caller's result types %s",
		formatTypes(callee), formatTypes(caller))
	return false
}

func (v *validator) returnCall(idx uint32) bool {
	ft, ok := v.callee(idx)
	valid := allTrue(ok,
		v.checkResultTypes(StackTypes(ft.Results)),
		v.popTypes(StackTypes(ft.Params)))
	v.setUnreachable()
	return valid
}

func (v *validator) returnCallIndirect(imm wasm.CallIndirectImm) bool {
	_, tableOK := v.tableElem(imm.TableIdx)
	ft, typeOK := v.functionType(imm.TypeIdx)
	valid := allTrue(tableOK, typeOK,
		v.checkResultTypes(StackTypes(ft.Results)),
		v.popTypes(tI32),
		v.popTypes(StackTypes(ft.Params)))
	v.setUnreachable()
	return valid
}

func (v *validator) selectUntyped() bool {
	valid := v.popTypes(tI32)
	t, ok := v.peekType()
	if !ok {
		return false
	}
	switch t {
	case I32, I64, F32, F64, V128, Any:
	default:
		v.report(errors.KindTypeMismatch,
			"select instruction without expected type can only be used with i32, i64, f32, f64 or v128; got %s", t)
		return false
	}
	return allTrue(valid, v.popAndPushTypes([]StackType{t, t}, []StackType{t}))
}

func (v *validator) selectTyped(imm wasm.SelectTypeImm) bool {
	valid := v.popTypes(tI32)
	if len(imm.Types) != 1 {
		v.report(errors.KindInvalidData,
			"select instruction must have types immediate with size 1, got %d", len(imm.Types))
		return false
	}
	t := StackTypeOf(imm.Types[0])
	return allTrue(valid, v.popAndPushTypes([]StackType{t, t}, []StackType{t}))
}

func (v *validator) globalSet(idx uint32) bool {
	g, ok := v.global(idx)
	valid := ok
	if ok && !g.Mutable {
		v.report(errors.KindImmutable, "global.set is invalid on immutable global %d", idx)
		valid = false
	}
	return allTrue(valid, v.popTypes([]StackType{StackTypeOf(g.ValType)}))
}

// memoryAccess checks a load, store or atomic against memory 0. Plain
// accesses may be under-aligned; atomics need exactly natural alignment
// and a shared memory.
func (v *validator) memoryAccess(instr wasm.Instruction, acc memAccess) bool {
	imm, _ := instr.Imm.(wasm.MemArgImm)
	mem, memOK := v.memory(0)
	valid := memOK
	if acc.atomic {
		if imm.Align != acc.align {
			v.report(errors.KindAlignment, "invalid atomic alignment %d for %s, must be %d",
				imm.Align, instr.Opcode, acc.align)
			valid = false
		}
		if memOK && !mem.Limits.Shared {
			v.report(errors.KindSharedMemory, "memory must be shared for %s", instr.Opcode)
			valid = false
		}
	} else if imm.Align > acc.align {
		v.report(errors.KindAlignment, "invalid alignment %d for %s, must be at most %d",
			imm.Align, instr.Opcode, acc.align)
		valid = false
	}
	return allTrue(valid, v.popAndPushTypes(acc.params, acc.results))
}
