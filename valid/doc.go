// Package valid type-checks WebAssembly function bodies and modules.
//
// The instruction validator is an abstract interpreter over operand types.
// A Context holds one operand stack shared by all open labels; each Label
// records the depth at which it was entered and owns every entry above it.
// After unreachable, br, br_table, return and the tail calls the rest of
// the label is dead code and pops past its floor yield Any.
//
// Validation is driven one instruction at a time:
//
//	ctx := valid.NewContext(valid.NewDeclarations(m))
//	ctx.BeginFunction(ft)
//	for _, l := range body.Locals {
//		ok = valid.ValidateLocals(l, ctx, f, sink) && ok
//	}
//	for _, instr := range instrs {
//		ok = valid.ValidateInstruction(instr, ctx, f, sink) && ok
//	}
//
// Every check reports to an errors.Sink and returns a bool. A failed
// check never stops the walk, so one pass surfaces every problem.
// ValidateCode and ValidateModule wrap this loop for whole bodies and
// modules.
package valid
