package valid

import (
	"math"
	"testing"

	"github.com/wippyai/wasm-validator/errors"
	"github.com/wippyai/wasm-validator/features"
	"github.com/wippyai/wasm-validator/wasm"
)

func op(o wasm.Opcode) wasm.Instruction { return wasm.Instruction{Opcode: o} }

func i32c(v int32) wasm.Instruction {
	return wasm.Instruction{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: v}}
}

func i64c(v int64) wasm.Instruction {
	return wasm.Instruction{Opcode: wasm.OpI64Const, Imm: wasm.I64Imm{Value: v}}
}

func idx(o wasm.Opcode, i uint32) wasm.Instruction {
	return wasm.Instruction{Opcode: o, Imm: wasm.IndexImm{Index: i}}
}

func blk(o wasm.Opcode, bt int32) wasm.Instruction {
	return wasm.Instruction{Opcode: o, Imm: wasm.BlockImm{Type: bt}}
}

func mem(o wasm.Opcode, align uint32) wasm.Instruction {
	return wasm.Instruction{Opcode: o, Imm: wasm.MemArgImm{Align: align}}
}

func types(vts ...wasm.ValType) []wasm.ValType { return vts }

// run validates instrs in a fresh function body of type ft.
func run(decls *Declarations, ft wasm.FuncType, f features.Features, instrs ...wasm.Instruction) (bool, *Context, *errors.List) {
	ctx := NewContext(decls)
	ctx.BeginFunction(ft)
	list := &errors.List{}
	ok := true
	for _, instr := range instrs {
		ok = ValidateInstruction(instr, ctx, f, list) && ok
	}
	return ok, ctx, list
}

func expectValid(t *testing.T, ok bool, list *errors.List) {
	t.Helper()
	if !ok || list.Len() != 0 {
		t.Fatalf("expected valid, got ok=%v errors=%v", ok, list.Err())
	}
}

func expectKind(t *testing.T, ok bool, list *errors.List, kind errors.Kind) *errors.Error {
	t.Helper()
	if ok {
		t.Fatalf("expected failure with %s, got valid", kind)
	}
	for _, err := range list.Errors() {
		if err.Kind == kind {
			return err
		}
	}
	t.Fatalf("expected a %s error, got %v", kind, list.Err())
	return nil
}

func TestTypesMatch(t *testing.T) {
	tests := []struct {
		expected, actual StackType
		want             bool
	}{
		{I32, I32, true},
		{I32, I64, false},
		{I32, Any, true},
		{Any, F64, true},
		{AnyRef, FuncRef, true},
		{AnyRef, NullRef, true},
		{FuncRef, NullRef, true},
		{FuncRef, AnyRef, false},
		{NullRef, FuncRef, false},
		{AnyRef, I32, false},
		{V128, V128, true},
	}
	for _, tt := range tests {
		if got := TypesMatch(tt.expected, tt.actual); got != tt.want {
			t.Errorf("TypesMatch(%s, %s): got %v, want %v", tt.expected, tt.actual, got, tt.want)
		}
	}
}

func TestLoopBranchUsesParams(t *testing.T) {
	decls := &Declarations{Types: []wasm.FuncType{{Params: types(wasm.ValI32)}}}

	ok, _, list := run(decls, wasm.FuncType{}, features.All(),
		i32c(0), blk(wasm.OpLoop, 0), idx(wasm.OpBr, 0), op(wasm.OpEnd), op(wasm.OpEnd))
	expectValid(t, ok, list)

	ok, _, list = run(decls, wasm.FuncType{}, features.All(),
		i32c(0), blk(wasm.OpLoop, 0), op(wasm.OpDrop), idx(wasm.OpBr, 0), op(wasm.OpEnd), op(wasm.OpEnd))
	err := expectKind(t, ok, list, errors.KindTypeMismatch)
	if err.Detail != "expected stack to contain [i32], got []" {
		t.Errorf("detail: got %q", err.Detail)
	}

	// A block of the same type branches with its results, which are empty.
	ok, _, list = run(decls, wasm.FuncType{}, features.All(),
		i32c(0), blk(wasm.OpBlock, 0), op(wasm.OpDrop), idx(wasm.OpBr, 0), op(wasm.OpEnd), op(wasm.OpEnd))
	expectValid(t, ok, list)
}

func TestAlignment(t *testing.T) {
	decls := &Declarations{Memories: []wasm.MemoryType{{Limits: wasm.Limits{Min: 1}}}}

	for _, align := range []uint32{0, 1, 2} {
		ok, _, list := run(decls, wasm.FuncType{}, features.Default(),
			i32c(0), mem(wasm.OpI32Load, align), op(wasm.OpDrop), op(wasm.OpEnd))
		expectValid(t, ok, list)
	}

	ok, _, list := run(decls, wasm.FuncType{}, features.Default(),
		i32c(0), mem(wasm.OpI32Load, 3), op(wasm.OpDrop), op(wasm.OpEnd))
	err := expectKind(t, ok, list, errors.KindAlignment)
	if list.Len() != 1 {
		t.Errorf("errors: got %d, want 1", list.Len())
	}
	if len(err.Path) != 1 || err.Path[0] != "i32.load" {
		t.Errorf("path: got %v", err.Path)
	}

	ok, _, list = run(decls, wasm.FuncType{}, features.Default(),
		i32c(0), i64c(0), mem(wasm.OpI64Store32, 3), op(wasm.OpEnd))
	expectKind(t, ok, list, errors.KindAlignment)
}

func TestMemoryRequired(t *testing.T) {
	ok, _, list := run(nil, wasm.FuncType{}, features.Default(),
		i32c(0), mem(wasm.OpI32Load, 2), op(wasm.OpDrop), op(wasm.OpEnd))
	err := expectKind(t, ok, list, errors.KindOutOfBounds)
	if err.Detail != "invalid memory index 0, must be less than 0" {
		t.Errorf("detail: got %q", err.Detail)
	}
}

func TestTailCallResultTypes(t *testing.T) {
	decls := &Declarations{
		Types: []wasm.FuncType{
			{Results: types(wasm.ValI32)},
			{Results: types(wasm.ValI64)},
		},
		Functions: []uint32{0, 1},
	}
	ft := decls.Types[0]

	ok, _, list := run(decls, ft, features.All(), idx(wasm.OpReturnCall, 0), op(wasm.OpEnd))
	expectValid(t, ok, list)

	ok, _, list = run(decls, ft, features.All(), idx(wasm.OpReturnCall, 1), op(wasm.OpEnd))
	expectKind(t, ok, list, errors.KindSignatureMismatch)

	ok, _, list = run(decls, ft, features.All(), i64c(0), idx(wasm.OpReturnCall, 1), op(wasm.OpEnd))
	expectKind(t, ok, list, errors.KindSignatureMismatch)
}

func TestReturnCallIndirect(t *testing.T) {
	decls := &Declarations{
		Types:  []wasm.FuncType{{Params: types(wasm.ValF32)}},
		Tables: []wasm.TableType{{ElemType: wasm.ValFuncRef}},
	}
	call := wasm.Instruction{Opcode: wasm.OpReturnCallIndirect, Imm: wasm.CallIndirectImm{TypeIdx: 0}}

	ok, _, list := run(decls, wasm.FuncType{}, features.All(),
		wasm.Instruction{Opcode: wasm.OpF32Const, Imm: wasm.F32Imm{}}, i32c(0), call, op(wasm.OpEnd))
	expectValid(t, ok, list)

	ok, _, list = run(&Declarations{Types: decls.Types}, wasm.FuncType{}, features.All(),
		wasm.Instruction{Opcode: wasm.OpF32Const, Imm: wasm.F32Imm{}}, i32c(0), call, op(wasm.OpEnd))
	expectKind(t, ok, list, errors.KindOutOfBounds)
}

func TestUnreachablePolymorphism(t *testing.T) {
	ft := wasm.FuncType{Results: types(wasm.ValI32)}

	ok, _, list := run(nil, ft, features.Default(),
		op(wasm.OpUnreachable),
		op(wasm.OpI64Eqz), op(wasm.OpDrop),
		op(wasm.OpF32Add), op(wasm.OpDrop),
		op(wasm.OpDrop),
		op(wasm.OpSelect),
		op(wasm.OpEnd))
	expectValid(t, ok, list)

	// Values pushed after the branch are still checked.
	ok, _, list = run(nil, ft, features.Default(),
		op(wasm.OpUnreachable),
		wasm.Instruction{Opcode: wasm.OpF32Const, Imm: wasm.F32Imm{}},
		op(wasm.OpI32Add),
		op(wasm.OpEnd))
	err := expectKind(t, ok, list, errors.KindTypeMismatch)
	if err.Detail != "expected stack to contain [i32 i32], got ...[f32]" {
		t.Errorf("detail: got %q", err.Detail)
	}
}

func TestUnreachableEndsAtLabel(t *testing.T) {
	// The outer block is reachable again after the inner one ends.
	ok, _, list := run(nil, wasm.FuncType{}, features.Default(),
		blk(wasm.OpBlock, wasm.BlockTypeVoid),
		op(wasm.OpUnreachable),
		op(wasm.OpEnd),
		op(wasm.OpI32Add),
		op(wasm.OpEnd))
	expectKind(t, ok, list, errors.KindTypeMismatch)
}

func TestStackBalance(t *testing.T) {
	decls := &Declarations{Types: []wasm.FuncType{
		{Params: types(wasm.ValI32, wasm.ValI32), Results: types(wasm.ValI32)},
	}}
	ctx := NewContext(decls)
	ctx.BeginFunction(wasm.FuncType{Results: types(wasm.ValI32)})
	list := &errors.List{}

	steps := []struct {
		instr wasm.Instruction
		depth int
	}{
		{i32c(1), 1},
		{i32c(2), 2},
		{blk(wasm.OpBlock, 0), 2},
		{op(wasm.OpI32Add), 1},
		{op(wasm.OpEnd), 1},
		{op(wasm.OpEnd), 1},
	}
	for i, s := range steps {
		if !ValidateInstruction(s.instr, ctx, features.Default(), list) {
			t.Fatalf("step %d (%s): %v", i, s.instr, list.Err())
		}
		if got := ctx.StackDepth(); got != s.depth {
			t.Errorf("step %d (%s): depth %d, want %d", i, s.instr, got, s.depth)
		}
	}
	if ctx.LabelDepth() != 0 {
		t.Errorf("labels: got %d, want 0", ctx.LabelDepth())
	}
}

func TestIfWithoutElse(t *testing.T) {
	ok, _, list := run(nil, wasm.FuncType{}, features.Default(),
		i32c(0), blk(wasm.OpIf, wasm.BlockTypeI32), i32c(1), op(wasm.OpEnd), op(wasm.OpDrop), op(wasm.OpEnd))
	expectKind(t, ok, list, errors.KindTypeMismatch)

	ok, _, list = run(nil, wasm.FuncType{}, features.Default(),
		i32c(0), blk(wasm.OpIf, wasm.BlockTypeI32), i32c(1), op(wasm.OpElse), i32c(2), op(wasm.OpEnd),
		op(wasm.OpDrop), op(wasm.OpEnd))
	expectValid(t, ok, list)

	// Params equal to results make a missing else valid.
	decls := &Declarations{Types: []wasm.FuncType{{Params: types(wasm.ValI32), Results: types(wasm.ValI32)}}}
	ok, _, list = run(decls, wasm.FuncType{}, features.All(),
		i32c(7), i32c(0), blk(wasm.OpIf, 0), op(wasm.OpEnd), op(wasm.OpDrop), op(wasm.OpEnd))
	expectValid(t, ok, list)
}

func TestElseBranchReachable(t *testing.T) {
	// Unreachable in the then branch does not leak into the else branch.
	ok, _, list := run(nil, wasm.FuncType{}, features.Default(),
		i32c(0), blk(wasm.OpIf, wasm.BlockTypeI32),
		op(wasm.OpUnreachable),
		op(wasm.OpElse),
		op(wasm.OpEnd),
		op(wasm.OpDrop),
		op(wasm.OpEnd))
	expectKind(t, ok, list, errors.KindTypeMismatch)
}

func TestStructure(t *testing.T) {
	ok, _, list := run(nil, wasm.FuncType{}, features.Default(), op(wasm.OpElse))
	err := expectKind(t, ok, list, errors.KindStructure)
	if err.Detail != "got else instruction without if" {
		t.Errorf("detail: got %q", err.Detail)
	}

	ok, _, list = run(nil, wasm.FuncType{}, features.Default(), op(wasm.OpEnd), op(wasm.OpNop))
	err = expectKind(t, ok, list, errors.KindStructure)
	if err.Detail != "unexpected instruction after function end" {
		t.Errorf("detail: got %q", err.Detail)
	}

	ok, _, list = run(nil, wasm.FuncType{}, features.Default(), idx(wasm.OpBr, 1))
	err = expectKind(t, ok, list, errors.KindOutOfBounds)
	if err.Detail != "invalid label 1, must be less than 1" {
		t.Errorf("detail: got %q", err.Detail)
	}
}

func TestBrTable(t *testing.T) {
	body := []wasm.Instruction{
		blk(wasm.OpBlock, wasm.BlockTypeVoid),
		blk(wasm.OpBlock, wasm.BlockTypeI32),
		i32c(0),
		i32c(0),
		{Opcode: wasm.OpBrTable, Imm: wasm.BrTableImm{Labels: []uint32{0}, Default: 1}},
		op(wasm.OpEnd),
		op(wasm.OpDrop),
		op(wasm.OpEnd),
		op(wasm.OpEnd),
	}

	ok, _, list := run(nil, wasm.FuncType{}, features.Default(), body...)
	err := expectKind(t, ok, list, errors.KindSignatureMismatch)
	if err.Detail != "br_table labels must have the same signature; expected [], got [i32]" {
		t.Errorf("detail: got %q", err.Detail)
	}
	if list.Len() != 1 {
		t.Errorf("errors: got %d, want 1: %v", list.Len(), list.Err())
	}

	ok, _, list = run(nil, wasm.FuncType{}, features.New(features.ReferenceTypes), body...)
	expectValid(t, ok, list)
}

func TestBrIfKeepsValues(t *testing.T) {
	ok, ctx, list := run(nil, wasm.FuncType{Results: types(wasm.ValI32)}, features.Default(),
		blk(wasm.OpBlock, wasm.BlockTypeI32),
		i32c(1),
		i32c(0),
		idx(wasm.OpBrIf, 0))
	expectValid(t, ok, list)
	if got := ctx.TypeStack(); len(got) != 1 || got[0] != I32 {
		t.Errorf("stack: got %v, want [i32]", got)
	}
}

func TestSelect(t *testing.T) {
	ok, _, list := run(nil, wasm.FuncType{}, features.All(),
		i32c(1), i32c(2), i32c(0), op(wasm.OpSelect), op(wasm.OpDrop), op(wasm.OpEnd))
	expectValid(t, ok, list)

	ok, _, list = run(nil, wasm.FuncType{}, features.All(),
		op(wasm.OpRefNull), op(wasm.OpRefNull), i32c(0), op(wasm.OpSelect))
	expectKind(t, ok, list, errors.KindTypeMismatch)

	typed := func(vts ...wasm.ValType) wasm.Instruction {
		return wasm.Instruction{Opcode: wasm.OpSelectType, Imm: wasm.SelectTypeImm{Types: vts}}
	}
	ok, _, list = run(nil, wasm.FuncType{}, features.All(),
		op(wasm.OpRefNull), op(wasm.OpRefNull), i32c(0), typed(wasm.ValFuncRef), op(wasm.OpDrop), op(wasm.OpEnd))
	expectValid(t, ok, list)

	ok, ctx, list := run(nil, wasm.FuncType{}, features.All(),
		i32c(1), i32c(2), i32c(0), typed(wasm.ValI32, wasm.ValI32))
	err := expectKind(t, ok, list, errors.KindInvalidData)
	if err.Detail != "select instruction must have types immediate with size 1, got 2" {
		t.Errorf("detail: got %q", err.Detail)
	}
	// The condition is consumed even when the immediate is malformed.
	if got := ctx.TypeStack(); len(got) != 2 || got[0] != I32 || got[1] != I32 {
		t.Errorf("stack: got %v, want [i32 i32]", got)
	}

	ok, _, list = run(nil, wasm.FuncType{}, features.All(), i64c(1), i32c(2), i32c(0), op(wasm.OpSelect))
	expectKind(t, ok, list, errors.KindTypeMismatch)
}

func TestGlobals(t *testing.T) {
	decls := &Declarations{Globals: []wasm.GlobalType{
		{ValType: wasm.ValI32},
		{ValType: wasm.ValI64, Mutable: true},
	}}

	ok, _, list := run(decls, wasm.FuncType{}, features.Default(), i32c(0), idx(wasm.OpGlobalSet, 0), op(wasm.OpEnd))
	err := expectKind(t, ok, list, errors.KindImmutable)
	if err.Detail != "global.set is invalid on immutable global 0" {
		t.Errorf("detail: got %q", err.Detail)
	}

	ok, _, list = run(decls, wasm.FuncType{}, features.Default(),
		idx(wasm.OpGlobalGet, 0), op(wasm.OpDrop), i64c(0), idx(wasm.OpGlobalSet, 1), op(wasm.OpEnd))
	expectValid(t, ok, list)

	ok, _, list = run(decls, wasm.FuncType{}, features.Default(), i32c(0), idx(wasm.OpGlobalSet, 1), op(wasm.OpEnd))
	expectKind(t, ok, list, errors.KindTypeMismatch)

	ok, _, list = run(decls, wasm.FuncType{}, features.Default(), idx(wasm.OpGlobalGet, 2))
	expectKind(t, ok, list, errors.KindOutOfBounds)
}

func TestLocals(t *testing.T) {
	ft := wasm.FuncType{Params: types(wasm.ValI32, wasm.ValF32)}
	ctx := NewContext(nil)
	ctx.BeginFunction(ft)
	list := &errors.List{}

	if !ValidateLocals(wasm.LocalEntry{Count: 3, ValType: wasm.ValI64}, ctx, features.Default(), list) {
		t.Fatalf("locals: %v", list.Err())
	}
	want := []StackType{I32, F32, I64, I64, I64}
	for i, w := range want {
		got, ok := ctx.LocalType(uint32(i))
		if !ok || got != w {
			t.Errorf("local %d: got %v %v, want %v", i, got, ok, w)
		}
	}
	if _, ok := ctx.LocalType(5); ok {
		t.Error("local 5 should not exist")
	}

	ok := ValidateInstruction(idx(wasm.OpLocalGet, 9), ctx, features.Default(), list)
	expectKind(t, ok, list, errors.KindOutOfBounds)

	list.Reset()
	ok = ValidateInstruction(i64c(0), ctx, features.Default(), list) &&
		ValidateInstruction(idx(wasm.OpLocalTee, 3), ctx, features.Default(), list) &&
		ValidateInstruction(idx(wasm.OpLocalSet, 4), ctx, features.Default(), list)
	expectValid(t, ok, list)
}

func TestTooManyLocals(t *testing.T) {
	ctx := NewContext(nil)
	list := &errors.List{}
	if !ValidateLocals(wasm.LocalEntry{Count: math.MaxUint32, ValType: wasm.ValI32}, ctx, features.Default(), list) {
		t.Fatalf("first run: %v", list.Err())
	}
	ok := ValidateLocals(wasm.LocalEntry{Count: 1, ValType: wasm.ValI32}, ctx, features.Default(), list)
	err := expectKind(t, ok, list, errors.KindLimits)
	if err.Detail != "too many locals; max is 4294967295, got 4294967296" {
		t.Errorf("detail: got %q", err.Detail)
	}
	if got := ctx.LocalCount(); got != math.MaxUint32 {
		t.Errorf("count: got %d", got)
	}
}

func TestLocalsNeedFeature(t *testing.T) {
	ctx := NewContext(nil)
	list := &errors.List{}
	ok := ValidateLocals(wasm.LocalEntry{Count: 1, ValType: wasm.ValV128}, ctx, features.Default(), list)
	expectKind(t, ok, list, errors.KindDisabledFeature)

	list.Reset()
	ok = ValidateLocals(wasm.LocalEntry{Count: 1, ValType: wasm.ValV128}, NewContext(nil), features.New(features.SIMD), list)
	expectValid(t, ok, list)
}

func TestAtomics(t *testing.T) {
	max := uint32(1)
	unshared := &Declarations{Memories: []wasm.MemoryType{{Limits: wasm.Limits{Min: 1}}}}
	shared := &Declarations{Memories: []wasm.MemoryType{{Limits: wasm.Limits{Min: 1, Max: &max, Shared: true}}}}

	ok, _, list := run(unshared, wasm.FuncType{}, features.All(),
		i32c(0), mem(wasm.OpI32AtomicLoad, 2), op(wasm.OpDrop), op(wasm.OpEnd))
	err := expectKind(t, ok, list, errors.KindSharedMemory)
	if err.Detail != "memory must be shared for i32.atomic.load" {
		t.Errorf("detail: got %q", err.Detail)
	}

	ok, _, list = run(shared, wasm.FuncType{}, features.All(),
		i32c(0), mem(wasm.OpI32AtomicLoad, 1), op(wasm.OpDrop), op(wasm.OpEnd))
	expectKind(t, ok, list, errors.KindAlignment)

	ok, _, list = run(shared, wasm.FuncType{}, features.All(),
		i32c(0), mem(wasm.OpI32AtomicLoad, 2), op(wasm.OpDrop), op(wasm.OpEnd))
	expectValid(t, ok, list)

	ok, _, list = run(shared, wasm.FuncType{}, features.All(),
		i32c(0), i64c(1), i64c(2), mem(wasm.OpI64AtomicRmwCmpxchg, 3), op(wasm.OpDrop), op(wasm.OpEnd))
	expectValid(t, ok, list)

	ok, _, list = run(shared, wasm.FuncType{}, features.All(),
		i32c(0), i32c(1), i64c(-1), mem(wasm.OpI32AtomicWait, 2), op(wasm.OpDrop), op(wasm.OpEnd))
	expectValid(t, ok, list)
}

func TestTablesAndSegments(t *testing.T) {
	decls := &Declarations{
		Tables:          []wasm.TableType{{ElemType: wasm.ValFuncRef}, {ElemType: wasm.ValAnyRef}},
		ElementSegments: []wasm.ValType{wasm.ValFuncRef},
		Functions:       []uint32{0},
		Types:           []wasm.FuncType{{}},
		Memories:        []wasm.MemoryType{{Limits: wasm.Limits{Min: 1}}},
		DataSegments:    1,
	}
	f := features.All()

	ok, _, list := run(decls, wasm.FuncType{}, f,
		idx(wasm.OpRefFunc, 0), i32c(1), idx(wasm.OpTableGrow, 0), op(wasm.OpDrop),
		i32c(0), idx(wasm.OpTableGet, 1), op(wasm.OpDrop),
		i32c(0), op(wasm.OpRefNull), i32c(1), idx(wasm.OpTableFill, 1),
		idx(wasm.OpTableSize, 0), op(wasm.OpDrop),
		i32c(0), i32c(0), i32c(0),
		wasm.Instruction{Opcode: wasm.OpTableInit, Imm: wasm.InitImm{SegmentIdx: 0, DstIdx: 0}},
		idx(wasm.OpElemDrop, 0),
		i32c(0), i32c(0), i32c(0),
		wasm.Instruction{Opcode: wasm.OpTableCopy, Imm: wasm.CopyImm{DstIdx: 0, SrcIdx: 1}},
		i32c(0), i32c(0), i32c(0),
		wasm.Instruction{Opcode: wasm.OpMemoryInit, Imm: wasm.InitImm{SegmentIdx: 0}},
		idx(wasm.OpDataDrop, 0),
		i32c(0), i32c(0), i32c(0), op(wasm.OpMemoryFill),
		op(wasm.OpMemorySize), op(wasm.OpMemoryGrow), op(wasm.OpDrop),
		op(wasm.OpEnd))
	expectValid(t, ok, list)

	ok, _, list = run(decls, wasm.FuncType{}, f, idx(wasm.OpDataDrop, 1))
	err := expectKind(t, ok, list, errors.KindOutOfBounds)
	if err.Detail != "invalid data segment index 1, must be less than 1" {
		t.Errorf("detail: got %q", err.Detail)
	}

	ok, _, list = run(decls, wasm.FuncType{}, f, idx(wasm.OpRefFunc, 3))
	expectKind(t, ok, list, errors.KindOutOfBounds)
}

func TestSIMDLanes(t *testing.T) {
	v128 := wasm.Instruction{Opcode: wasm.OpV128Const, Imm: wasm.V128Imm{}}
	lane := func(o wasm.Opcode, l byte) wasm.Instruction {
		return wasm.Instruction{Opcode: o, Imm: wasm.LaneImm{Lane: l}}
	}

	ok, _, list := run(nil, wasm.FuncType{}, features.All(),
		v128, lane(wasm.OpI32x4ExtractLane, 3), op(wasm.OpDrop), op(wasm.OpEnd))
	expectValid(t, ok, list)

	ok, _, list = run(nil, wasm.FuncType{}, features.All(),
		v128, lane(wasm.OpI32x4ExtractLane, 4), op(wasm.OpDrop), op(wasm.OpEnd))
	expectKind(t, ok, list, errors.KindOutOfBounds)

	ok, _, list = run(nil, wasm.FuncType{}, features.All(),
		v128, i64c(0), lane(wasm.OpI64x2ReplaceLane, 1), op(wasm.OpDrop), op(wasm.OpEnd))
	expectValid(t, ok, list)

	shuffle := wasm.ShuffleImm{}
	shuffle.Lanes[15] = 32
	ok, _, list = run(nil, wasm.FuncType{}, features.All(),
		v128, v128, wasm.Instruction{Opcode: wasm.OpV8x16Shuffle, Imm: shuffle}, op(wasm.OpDrop), op(wasm.OpEnd))
	expectKind(t, ok, list, errors.KindOutOfBounds)
}

func TestCalls(t *testing.T) {
	decls := &Declarations{
		Types:     []wasm.FuncType{{Params: types(wasm.ValI32, wasm.ValI64), Results: types(wasm.ValF64)}},
		Functions: []uint32{0},
		Tables:    []wasm.TableType{{ElemType: wasm.ValFuncRef}},
	}

	ok, ctx, list := run(decls, wasm.FuncType{}, features.Default(), i32c(0), i64c(0), idx(wasm.OpCall, 0))
	expectValid(t, ok, list)
	if got := ctx.TypeStack(); len(got) != 1 || got[0] != F64 {
		t.Errorf("stack: got %v, want [f64]", got)
	}

	ok, _, list = run(decls, wasm.FuncType{}, features.Default(),
		i32c(0), i64c(0), i32c(0),
		wasm.Instruction{Opcode: wasm.OpCallIndirect, Imm: wasm.CallIndirectImm{TypeIdx: 0}},
		op(wasm.OpDrop), op(wasm.OpEnd))
	expectValid(t, ok, list)

	ok, _, list = run(decls, wasm.FuncType{}, features.Default(), i64c(0), i32c(0), idx(wasm.OpCall, 0))
	expectKind(t, ok, list, errors.KindTypeMismatch)

	ok, _, list = run(decls, wasm.FuncType{}, features.Default(), idx(wasm.OpCall, 1))
	err := expectKind(t, ok, list, errors.KindOutOfBounds)
	if err.Detail != "invalid function index 1, must be less than 1" {
		t.Errorf("detail: got %q", err.Detail)
	}
}

func TestErrorOffset(t *testing.T) {
	ctx := NewContext(nil)
	ctx.BeginFunction(wasm.FuncType{})
	ctx.SetOffset(0x2a)
	list := &errors.List{}
	ValidateInstruction(op(wasm.OpI32Add), ctx, features.Default(), list)
	if list.Len() == 0 {
		t.Fatal("expected an error")
	}
	err := list.Errors()[0]
	if !err.HasOffset || err.Offset != 0x2a {
		t.Errorf("offset: got %v %d", err.HasOffset, err.Offset)
	}
	if err.Phase != errors.PhaseValidate {
		t.Errorf("phase: got %s", err.Phase)
	}
}

func TestEveryOpcodeHasRule(t *testing.T) {
	decls := &Declarations{Types: []wasm.FuncType{{}}}
	for _, o := range wasm.Opcodes() {
		ctx := NewContext(decls)
		ctx.BeginFunction(wasm.FuncType{})
		ValidateInstruction(op(wasm.OpUnreachable), ctx, features.All(), errors.Nop{})

		list := &errors.List{}
		ValidateInstruction(op(o), ctx, features.All(), list)
		for _, err := range list.Errors() {
			if err.Kind == errors.KindUnknownOpcode {
				t.Errorf("%s: %s", o, err.Detail)
			}
		}
	}
}

func TestNilSink(t *testing.T) {
	ctx := NewContext(nil)
	ctx.BeginFunction(wasm.FuncType{})
	if ValidateInstruction(op(wasm.OpI32Add), ctx, features.Default(), nil) {
		t.Error("expected failure")
	}
}
