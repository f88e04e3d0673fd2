package wasm

import (
	"github.com/wippyai/wasm-validator/errors"
	"github.com/wippyai/wasm-validator/features"
)

// Iterator walks the instructions of a function body or expression,
// recording the absolute offset of each one.
//
//	it := wasm.NewIterator(body.Code, body.Offset, f, sink)
//	for it.Next() {
//		fmt.Println(it.Offset(), it.Instruction())
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
type Iterator struct {
	r      *Reader
	err    error
	instr  Instruction
	offset int
}

// NewIterator creates an Iterator over code whose first byte sits at
// offset base.
func NewIterator(code []byte, base int, f features.Features, sink errors.Sink) *Iterator {
	return &Iterator{r: NewReaderAt(code, base, f, sink)}
}

// Next decodes the next instruction. It returns false at the end of the
// input or after a decode failure.
func (it *Iterator) Next() bool {
	if it.err != nil || it.r.Empty() {
		return false
	}
	it.offset = it.r.Position()
	it.instr, it.err = it.r.ReadInstruction()
	return it.err == nil
}

// Instruction returns the most recently decoded instruction.
func (it *Iterator) Instruction() Instruction { return it.instr }

// Offset returns the absolute offset of the most recent instruction.
func (it *Iterator) Offset() int { return it.offset }

// End returns the absolute offset just past the most recent instruction.
func (it *Iterator) End() int { return it.r.Position() }

// Err returns the decode failure that stopped iteration, if any.
func (it *Iterator) Err() error { return it.err }

// DecodeInstructions decodes every instruction in code.
func DecodeInstructions(code []byte, f features.Features) ([]Instruction, error) {
	var instrs []Instruction
	it := NewIterator(code, 0, f, nil)
	for it.Next() {
		instrs = append(instrs, it.Instruction())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return instrs, nil
}
