package valid

import (
	"github.com/wippyai/wasm-validator/errors"
	"github.com/wippyai/wasm-validator/features"
	"github.com/wippyai/wasm-validator/wasm"
)

// validator binds one Context, feature set and sink for a single call.
type validator struct {
	ctx  *Context
	sink errors.Sink
	f    features.Features
}

func newValidator(ctx *Context, f features.Features, sink errors.Sink) *validator {
	if sink == nil {
		sink = errors.Nop{}
	}
	return &validator{ctx: ctx, f: f, sink: sink}
}

// allTrue combines check results. Every argument is evaluated by the
// caller, so no check is skipped.
func allTrue(results ...bool) bool {
	for _, ok := range results {
		if !ok {
			return false
		}
	}
	return true
}

func (v *validator) report(kind errors.Kind, format string, args ...any) {
	v.reportError(errors.New(errors.PhaseValidate, kind).Detailf(format, args...).Build())
}

func (v *validator) reportError(err *errors.Error) {
	if v.ctx.hasOffset && !err.HasOffset {
		err.Offset = v.ctx.offset
		err.HasOffset = true
	}
	v.sink.OnError(err)
}

func (v *validator) index(what string, idx uint32, length uint64) bool {
	if uint64(idx) < length {
		return true
	}
	v.reportError(errors.OutOfBounds(errors.PhaseValidate, what, uint64(idx), length))
	return false
}

// peekType returns the top operand. An exhausted stack yields Any when the
// label is unreachable and an error otherwise.
func (v *validator) peekType() (StackType, bool) {
	avail := v.ctx.available()
	if len(avail) == 0 {
		if v.ctx.top().Unreachable {
			return Any, true
		}
		v.report(errors.KindTypeMismatch, "expected stack to have 1 value, got 0")
		return Any, false
	}
	return avail[len(avail)-1], true
}

// checkTypes compares the top of the stack against expected without
// popping. Below the floor of an unreachable label missing operands
// match anything.
func (v *validator) checkTypes(expected []StackType) bool {
	top := v.ctx.top()
	actual := v.ctx.available()
	if len(actual) > len(expected) {
		actual = actual[len(actual)-len(expected):]
	}
	want := expected
	if top.Unreachable && len(want) > len(actual) {
		want = want[len(want)-len(actual):]
	}
	if TypeListsMatch(want, actual) {
		return true
	}
	prefix := ""
	if top.Unreachable {
		prefix = "..."
	}
	v.report(errors.KindTypeMismatch, "expected stack to contain %s, got %s%s",
		formatTypes(expected), prefix, formatTypes(actual))
	return false
}

// dropTypes removes count operands. Dropping past the floor resets the
// stack to it and is an error unless the label is unreachable.
func (v *validator) dropTypes(count int, report bool) bool {
	top := v.ctx.top()
	avail := len(v.ctx.stack) - top.StackLimit
	if count > avail {
		if report && !top.Unreachable {
			v.report(errors.KindTypeMismatch, "expected stack to contain %d value(s), got %d", count, avail)
		}
		v.ctx.resetToLimit()
		return top.Unreachable
	}
	v.ctx.stack = v.ctx.stack[:len(v.ctx.stack)-count]
	return true
}

func (v *validator) popTypes(expected []StackType) bool {
	valid := v.checkTypes(expected)
	return allTrue(v.dropTypes(len(expected), false), valid)
}

func (v *validator) popAndPushTypes(params, results []StackType) bool {
	valid := v.popTypes(params)
	v.ctx.PushTypes(results)
	return valid
}

func (v *validator) checkTypeStackEmpty() bool {
	avail := v.ctx.available()
	if len(avail) == 0 {
		return true
	}
	v.report(errors.KindTypeMismatch, "expected empty stack, got %s", formatTypes(avail))
	return false
}

// setUnreachable marks the rest of the innermost label as dead code.
func (v *validator) setUnreachable() {
	v.ctx.top().Unreachable = true
	v.ctx.resetToLimit()
}

func (v *validator) label(depth uint32) (*Label, bool) {
	l, ok := v.ctx.Label(depth)
	if !ok {
		v.reportError(errors.OutOfBounds(errors.PhaseValidate, "label", uint64(depth), uint64(v.ctx.LabelDepth())))
	}
	return l, ok
}

func (v *validator) functionType(idx uint32) (wasm.FuncType, bool) {
	ft, ok := v.ctx.functionType(idx)
	if !ok {
		v.index("type index", idx, uint64(len(v.ctx.decls.Types)))
	}
	return ft, ok
}

// callee resolves a function index to its signature.
func (v *validator) callee(idx uint32) (wasm.FuncType, bool) {
	funcs := v.ctx.decls.Functions
	if !v.index("function index", idx, uint64(len(funcs))) {
		return wasm.FuncType{}, false
	}
	return v.functionType(funcs[idx])
}

func (v *validator) localType(idx uint32) (StackType, bool) {
	t, ok := v.ctx.LocalType(idx)
	if !ok {
		v.index("local index", idx, v.ctx.LocalCount())
		return I32, false
	}
	return t, true
}

func (v *validator) global(idx uint32) (wasm.GlobalType, bool) {
	globals := v.ctx.decls.Globals
	if !v.index("global index", idx, uint64(len(globals))) {
		return wasm.GlobalType{ValType: wasm.ValI32}, false
	}
	return globals[idx], true
}

// tableElem returns the element type of table idx.
func (v *validator) tableElem(idx uint32) (StackType, bool) {
	tables := v.ctx.decls.Tables
	if !v.index("table index", idx, uint64(len(tables))) {
		return FuncRef, false
	}
	return StackTypeOf(tables[idx].ElemType), true
}

func (v *validator) memory(idx uint32) (wasm.MemoryType, bool) {
	mems := v.ctx.decls.Memories
	if !v.index("memory index", idx, uint64(len(mems))) {
		return wasm.MemoryType{}, false
	}
	return mems[idx], true
}

func (v *validator) elemSegment(idx uint32) (StackType, bool) {
	segs := v.ctx.decls.ElementSegments
	if !v.index("element segment index", idx, uint64(len(segs))) {
		return FuncRef, false
	}
	return StackTypeOf(segs[idx]), true
}

func (v *validator) dataSegment(idx uint32) bool {
	return v.index("data segment index", idx, uint64(v.ctx.decls.DataSegments))
}
