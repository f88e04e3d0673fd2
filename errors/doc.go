// Package errors provides structured error types and diagnostic sinks for
// decoding, encoding and validating WebAssembly instruction streams.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries a context path, an optional byte offset
// and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseValidate, errors.KindTypeMismatch).
//		Path("function 3", "i32.add").
//		Detail("expected stack to contain [i32, i32], got [i64]").
//		Build()
//
// Readers and validators do not stop at the first problem. They report to a
// Sink and keep going; List collects the reports, Nop drops them:
//
//	var list errors.List
//	list.PushContext("function 3")
//	ok := valid.ValidateInstruction(ctx, instr, f, &list)
//	list.PopContext()
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
