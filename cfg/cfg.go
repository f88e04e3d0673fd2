package cfg

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-validator/errors"
	"github.com/wippyai/wasm-validator/features"
	"github.com/wippyai/wasm-validator/wasm"
)

// BlockID identifies a basic block within a Graph.
type BlockID uint32

// Exit stands for the function exit: a successor pointing to Exit returns
// from the function.
const Exit BlockID = ^BlockID(0)

// Successor is an outgoing edge. Name is empty for fallthrough and plain
// branches, "T" or "F" for the arms of if and br_if, and the target
// position or "default" for br_table.
type Successor struct {
	Name string
	To   BlockID
}

// Block is a basic block: the instructions Graph.Instrs[Start:End].
type Block struct {
	Start, End int
	Successors []Successor

	// Loop marks a block that begins with a loop instruction.
	Loop bool
}

// Empty reports whether the block holds no instruction worth drawing.
func (b *Block) Empty() bool { return b.Start == b.End }

// Graph is the control-flow graph of one function body.
type Graph struct {
	Instrs []wasm.Instruction

	// Offsets holds the absolute offset of each instruction, plus the
	// offset just past the last one.
	Offsets []int

	Blocks []Block
	Entry  BlockID
}

// Span returns the absolute byte range covered by block id.
func (g *Graph) Span(id BlockID) (start, end int) {
	b := &g.Blocks[id]
	return g.Offsets[b.Start], g.Offsets[b.End]
}

// Block returns the block with the given id.
func (g *Graph) Block(id BlockID) *Block { return &g.Blocks[id] }

// NonEmpty returns the ids of blocks that hold instructions, in creation
// order.
func (g *Graph) NonEmpty() []BlockID {
	var ids []BlockID
	for i := range g.Blocks {
		if !g.Blocks[i].Empty() {
			ids = append(ids, BlockID(i))
		}
	}
	return ids
}

type label struct {
	op     wasm.Opcode
	parent BlockID
	br     BlockID
	next   BlockID
}

type builder struct {
	g       *Graph
	labels  []label
	current BlockID
}

// Build decodes body and splits it into basic blocks. Blocks that end up
// with only structural instructions (block, else, end, br) are folded onto
// their first successor. Branches with an out-of-range depth are logged
// and dropped.
func Build(body wasm.FuncBody, f features.Features) (*Graph, error) {
	g := &Graph{}
	it := wasm.NewIterator(body.Code, body.Offset, f, nil)
	for it.Next() {
		g.Instrs = append(g.Instrs, it.Instruction())
		g.Offsets = append(g.Offsets, it.Offset())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	end := body.Offset + len(body.Code)
	g.Offsets = append(g.Offsets, end)

	b := &builder{g: g, current: Exit}
	b.pushLabel(wasm.OpReturn, Exit, Exit)
	g.Entry = b.newBlock()
	b.start(g.Entry, 0)

	for i, instr := range g.Instrs {
		if err := b.step(i, instr); err != nil {
			return nil, err
		}
	}
	if b.current != Exit {
		b.finish(len(g.Instrs))
	}

	g.fold()
	Logger().Debug("built control-flow graph",
		zap.Int("offset", body.Offset),
		zap.Int("instructions", len(g.Instrs)),
		zap.Int("blocks", len(g.Blocks)),
		zap.Int("non_empty", len(g.NonEmpty())))
	return g, nil
}

func (b *builder) step(i int, instr wasm.Instruction) error {
	after := i + 1
	switch instr.Opcode {
	case wasm.OpUnreachable, wasm.OpReturn, wasm.OpReturnCall, wasm.OpReturnCallIndirect:
		if instr.Opcode != wasm.OpUnreachable {
			b.addSuccessor(b.current, Exit, "")
		}
		b.markUnreachable(after)

	case wasm.OpBlock:
		next := b.newBlock()
		b.pushLabel(instr.Opcode, next, next)

	case wasm.OpLoop:
		loop := b.newBlock()
		next := b.newBlock()
		b.g.Blocks[loop].Loop = true
		b.addSuccessor(b.current, loop, "")
		b.pushLabel(instr.Opcode, loop, next)
		b.start(loop, i)

	case wasm.OpIf:
		then := b.newBlock()
		next := b.newBlock()
		b.addSuccessor(b.current, then, "T")
		b.pushLabel(instr.Opcode, next, next)
		b.start(then, after)

	case wasm.OpElse:
		top, err := b.popLabel(i, instr)
		if err != nil {
			return err
		}
		b.addSuccessor(b.current, top.next, "")
		els := b.newBlock()
		b.addSuccessor(top.parent, els, "F")
		b.pushLabel(instr.Opcode, top.next, top.next)
		b.start(els, after)

	case wasm.OpEnd:
		top, err := b.popLabel(i, instr)
		if err != nil {
			return err
		}
		b.addSuccessor(b.current, top.next, "")
		if top.op == wasm.OpIf {
			b.addSuccessor(top.parent, top.next, "F")
		}
		b.start(top.next, after)

	case wasm.OpBr:
		b.branch(i, instr.Imm.(wasm.IndexImm).Index, "")
		b.markUnreachable(after)

	case wasm.OpBrIf:
		b.branch(i, instr.Imm.(wasm.IndexImm).Index, "T")
		next := b.newBlock()
		b.addSuccessor(b.current, next, "F")
		b.start(next, after)

	case wasm.OpBrTable:
		imm := instr.Imm.(wasm.BrTableImm)
		for j, depth := range imm.Labels {
			b.branch(i, depth, strconv.Itoa(j))
		}
		b.branch(i, imm.Default, "default")
		b.markUnreachable(after)
	}
	return nil
}

func (b *builder) newBlock() BlockID {
	b.g.Blocks = append(b.g.Blocks, Block{})
	return BlockID(len(b.g.Blocks) - 1)
}

func (b *builder) pushLabel(op wasm.Opcode, br, next BlockID) {
	b.labels = append(b.labels, label{op: op, parent: b.current, br: br, next: next})
}

func (b *builder) popLabel(i int, instr wasm.Instruction) (label, error) {
	if len(b.labels) == 0 {
		return label{}, errors.New(errors.PhaseAnalyze, errors.KindStructure).
			At(b.g.Offsets[i]).Detailf("unexpected %s after function end", instr.Opcode).Build()
	}
	top := b.labels[len(b.labels)-1]
	b.labels = b.labels[:len(b.labels)-1]
	return top, nil
}

func (b *builder) addSuccessor(from, to BlockID, name string) {
	if from == Exit {
		return
	}
	blk := &b.g.Blocks[from]
	blk.Successors = append(blk.Successors, Successor{Name: name, To: to})
}

func (b *builder) branch(i int, depth uint32, name string) {
	if uint64(depth) >= uint64(len(b.labels)) {
		Logger().Warn("branch depth out of range",
			zap.Int("offset", b.g.Offsets[i]),
			zap.Uint32("depth", depth),
			zap.Int("labels", len(b.labels)))
		return
	}
	b.addSuccessor(b.current, b.labels[len(b.labels)-int(depth)-1].br, name)
}

// start ends the current block at instruction index at and makes id the
// current block, starting there.
func (b *builder) start(id BlockID, at int) {
	if b.current != Exit {
		b.finish(at)
	}
	b.current = id
	if id != Exit {
		b.g.Blocks[id].Start = at
		b.g.Blocks[id].End = at
	}
}

// markUnreachable starts a fresh block with no predecessors.
func (b *builder) markUnreachable(at int) {
	b.start(b.newBlock(), at)
}

func (b *builder) finish(at int) {
	blk := &b.g.Blocks[b.current]
	blk.End = at
	for _, instr := range b.g.Instrs[blk.Start:blk.End] {
		if !structural(instr.Opcode) {
			return
		}
	}
	blk.End = blk.Start
}

func structural(op wasm.Opcode) bool {
	switch op {
	case wasm.OpBlock, wasm.OpElse, wasm.OpEnd, wasm.OpBr:
		return true
	}
	return false
}

// fold redirects every edge that leads to an empty block onto the first
// non-empty block reached by following first successors.
func (g *Graph) fold() {
	resolve := func(id BlockID) BlockID {
		for steps := 0; id != Exit && g.Blocks[id].Empty(); steps++ {
			if steps > len(g.Blocks) {
				return Exit
			}
			succ := g.Blocks[id].Successors
			if len(succ) == 0 {
				return Exit
			}
			id = succ[0].To
		}
		return id
	}
	for i := range g.Blocks {
		blk := &g.Blocks[i]
		if blk.Empty() {
			continue
		}
		for j := range blk.Successors {
			blk.Successors[j].To = resolve(blk.Successors[j].To)
		}
	}
	g.Entry = resolve(g.Entry)
}
