package valid

import (
	"github.com/wippyai/wasm-validator/errors"
	"github.com/wippyai/wasm-validator/features"
	"github.com/wippyai/wasm-validator/wasm"
)

// ValidateCode validates one function body of type ft. Decode errors are
// reported to sink by the instruction reader and end the walk, as does an
// instruction after the function's final end.
func ValidateCode(decls *Declarations, ft wasm.FuncType, body wasm.FuncBody, f features.Features, sink errors.Sink) bool {
	if sink == nil {
		sink = errors.Nop{}
	}
	ctx := NewContext(decls)
	ctx.BeginFunction(ft)

	valid := true
	for _, l := range body.Locals {
		valid = allTrue(ValidateLocals(l, ctx, f, sink), valid)
	}

	it := wasm.NewIterator(body.Code, body.Offset, f, sink)
	end := body.Offset
	for it.Next() {
		ended := ctx.LabelDepth() == 0
		ctx.SetOffset(it.Offset())
		valid = allTrue(ValidateInstruction(it.Instruction(), ctx, f, sink), valid)
		if ended {
			return false
		}
		end = it.End()
	}
	if it.Err() != nil {
		return false
	}
	if ctx.LabelDepth() != 0 {
		sink.OnError(errors.New(errors.PhaseValidate, errors.KindStructure).
			At(end).Detail("expected function end").Build())
		return false
	}
	return valid
}

// constOpcodes are the instructions allowed in constant expressions.
var constOpcodes = map[wasm.Opcode]bool{
	wasm.OpI32Const:  true,
	wasm.OpI64Const:  true,
	wasm.OpF32Const:  true,
	wasm.OpF64Const:  true,
	wasm.OpV128Const: true,
	wasm.OpGlobalGet: true,
	wasm.OpRefNull:   true,
	wasm.OpRefFunc:   true,
	wasm.OpEnd:       true,
}

// ValidateConstExpr checks a decoded constant expression producing one
// value of type want. global.get may only read imported immutable globals.
func ValidateConstExpr(decls *Declarations, expr []wasm.Instruction, want wasm.ValType, f features.Features, sink errors.Sink) bool {
	if sink == nil {
		sink = errors.Nop{}
	}
	ctx := NewContext(decls)
	ctx.BeginExpression([]StackType{StackTypeOf(want)})

	valid := true
	for _, instr := range expr {
		if !constOpcodes[instr.Opcode] {
			sink.OnError(errors.Validation(errors.KindInvalidData,
				"invalid instruction in constant expression: %s", instr.Opcode))
			return false
		}
		if instr.Opcode == wasm.OpGlobalGet {
			valid = allTrue(constGlobal(ctx.decls, indexImm(instr), sink), valid)
		}
		valid = allTrue(ValidateInstruction(instr, ctx, f, sink), valid)
	}
	if ctx.LabelDepth() != 0 {
		sink.OnError(errors.Validation(errors.KindStructure, "expected end of constant expression"))
		return false
	}
	return valid
}

func constGlobal(decls *Declarations, idx uint32, sink errors.Sink) bool {
	if int64(idx) >= int64(decls.ImportedGlobals) {
		// Out-of-range indices are reported by global.get itself.
		if uint64(idx) < uint64(len(decls.Globals)) {
			sink.OnError(errors.Validation(errors.KindInvalidData,
				"constant expression may only read imported globals, got global %d", idx))
		}
		return false
	}
	if decls.Globals[idx].Mutable {
		sink.OnError(errors.Validation(errors.KindImmutable,
			"constant expression cannot read mutable global %d", idx))
		return false
	}
	return true
}
