// Package wasmvalidator checks WebAssembly binary modules.
//
// The library is organized into several packages with distinct responsibilities:
//
//	wasmvalidator/       Root package with the one-call Check entry point
//	├── features/        Optional proposal toggles
//	├── wasm/            Opcodes, instruction codec and module reader
//	├── valid/           Operand-stack type checking of bodies and declarations
//	├── cfg/             Control-flow graphs and Graphviz output
//	├── crosscheck/      Comparison against wazero's compiler
//	├── errors/          Structured diagnostics and sinks
//	└── cmd/wasmcheck/   Command-line front end
//
// # Quick Start
//
//	rep, err := wasmvalidator.Check(ctx, data, wasmvalidator.Config{
//	    Features: features.Default(),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, e := range rep.Errors {
//	    fmt.Println(e)
//	}
//
// Lower-level entry points live in the subpackages: wasm.ReadModule parses
// a module, valid.ValidateModule and valid.ValidateInstruction type-check
// it, and wasm.NewIterator walks a single body.
package wasmvalidator
