// Package wasm implements the WebAssembly binary instruction codec.
//
// It covers the MVP instruction set plus the threads, reference types,
// bulk memory, SIMD, tail call, sign extension, saturating conversion and
// multi-value proposals. Every optional family is gated by a
// features.Features value supplied per pass.
//
// # Opcodes
//
// Opcode is a closed enumeration. Primary opcodes are their byte value;
// opcodes behind the 0xFC, 0xFD and 0xFE prefixes combine the prefix and
// the LEB128 sub-opcode:
//
//	wasm.OpI32Add      // 0x6A
//	wasm.OpMemoryInit  // 0xFC 0x08
//	wasm.OpV128Const   // 0xFD 0x02
//
// Each opcode determines which immediate type an Instruction carries:
//
//	wasm.Instruction{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: 0}}
//	wasm.Instruction{Opcode: wasm.OpI32Load, Imm: wasm.MemArgImm{Align: 2}}
//	wasm.Instruction{Opcode: wasm.OpEnd}
//
// # Decoding
//
// Reader decodes opcodes, immediates, local declarations and constant
// expressions:
//
//	r := wasm.NewReader(code, features.Default(), sink)
//	instr, err := r.ReadInstruction()
//
// Decode failures are *errors.Error values carrying the field path, such as
// "i32.load > memarg > offset", and the absolute byte offset. Iterator
// walks a function body.
//
// # Encoding
//
// Writer encodes instructions into a growable buffer or a fixed one:
//
//	w := wasm.NewFixedWriter(buf)
//	w.WriteInstruction(instr)
//	if w.Overflow() {
//		// buf was too small
//	}
//
// # Modules
//
// ReadModule parses the section structure of a binary module. Function
// bodies stay undecoded byte spans; constant expressions are decoded.
package wasm
