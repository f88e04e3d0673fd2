package cfg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/wasm-validator/errors"
	"github.com/wippyai/wasm-validator/features"
	"github.com/wippyai/wasm-validator/wasm"
)

func op(o wasm.Opcode) wasm.Instruction { return wasm.Instruction{Opcode: o} }

func blk(o wasm.Opcode) wasm.Instruction {
	return wasm.Instruction{Opcode: o, Imm: wasm.BlockImm{Type: wasm.BlockTypeVoid}}
}

func idx(o wasm.Opcode, i uint32) wasm.Instruction {
	return wasm.Instruction{Opcode: o, Imm: wasm.IndexImm{Index: i}}
}

func i32c(v int32) wasm.Instruction {
	return wasm.Instruction{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: v}}
}

func brTable(def uint32, labels ...uint32) wasm.Instruction {
	return wasm.Instruction{Opcode: wasm.OpBrTable, Imm: wasm.BrTableImm{Labels: labels, Default: def}}
}

func build(t *testing.T, base int, instrs ...wasm.Instruction) *Graph {
	t.Helper()
	code, err := wasm.EncodeInstructions(instrs)
	require.NoError(t, err)
	g, err := Build(wasm.FuncBody{Code: code, Offset: base}, features.Default())
	require.NoError(t, err)
	return g
}

func dot(t *testing.T, g *Graph) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, g.WriteDot(&sb))
	return sb.String()
}

const tableOpen = `<TABLE BORDER="1" CELLBORDER="1" CELLSPACING="0">`

func TestStraightLine(t *testing.T) {
	g := build(t, 10, i32c(1), op(wasm.OpDrop), op(wasm.OpEnd))

	require.Len(t, g.Blocks, 1)
	assert.Equal(t, BlockID(0), g.Entry)
	assert.Equal(t, []Successor{{To: Exit}}, g.Blocks[0].Successors)

	start, end := g.Span(0)
	assert.Equal(t, 10, start)
	assert.Equal(t, 14, end)

	want := "strict digraph {\n" +
		`  0 [shape=none;margin=0;label=<` + tableOpen +
		`<TR><TD BORDER="0" ALIGN="LEFT" COLSPAN="1">i32.const 1<BR ALIGN="LEFT"/>drop<BR ALIGN="LEFT"/></TD></TR></TABLE>>]` + "\n" +
		"  start -> 0\n" +
		"  0 -> end\n" +
		"}\n"
	assert.Equal(t, want, dot(t, g))
}

func TestIfElse(t *testing.T) {
	g := build(t, 0,
		idx(wasm.OpLocalGet, 0),
		blk(wasm.OpIf),
		i32c(1), op(wasm.OpDrop),
		op(wasm.OpElse),
		i32c(2), op(wasm.OpDrop),
		op(wasm.OpEnd),
		op(wasm.OpEnd),
	)

	assert.Equal(t, []BlockID{0, 1, 3}, g.NonEmpty())
	assert.Equal(t, BlockID(0), g.Entry)
	assert.Equal(t, []Successor{{Name: "T", To: 1}, {Name: "F", To: 3}}, g.Block(0).Successors)
	assert.Equal(t, []Successor{{To: Exit}}, g.Block(1).Successors)
	assert.Equal(t, []Successor{{To: Exit}}, g.Block(3).Successors)

	out := dot(t, g)
	assert.Contains(t, out, `<TR><TD PORT="T" SIDES="T">T</TD><TD PORT="F" SIDES="TL">F</TD></TR>`)
	assert.Contains(t, out, "  0:T -> 1\n")
	assert.Contains(t, out, "  0:F -> 3\n")
	assert.NotContains(t, out, "else")
}

func TestIfWithoutElse(t *testing.T) {
	g := build(t, 0,
		idx(wasm.OpLocalGet, 0),
		blk(wasm.OpIf),
		op(wasm.OpNop),
		op(wasm.OpEnd),
		op(wasm.OpEnd),
	)

	assert.Equal(t, []BlockID{0, 1}, g.NonEmpty())
	assert.Equal(t, []Successor{{Name: "T", To: 1}, {Name: "F", To: Exit}}, g.Block(0).Successors)
	assert.Equal(t, []Successor{{To: Exit}}, g.Block(1).Successors)
}

func TestLoop(t *testing.T) {
	g := build(t, 0,
		blk(wasm.OpLoop),
		idx(wasm.OpLocalGet, 0),
		idx(wasm.OpBrIf, 0),
		op(wasm.OpEnd),
		op(wasm.OpEnd),
	)

	// The empty entry block folds onto the loop header.
	assert.Equal(t, BlockID(1), g.Entry)
	assert.Equal(t, []BlockID{1}, g.NonEmpty())
	assert.True(t, g.Block(1).Loop)
	assert.Equal(t, []Successor{{Name: "T", To: 1}, {Name: "F", To: Exit}}, g.Block(1).Successors)

	want := "strict digraph {\n" +
		`  1 [shape=none;margin=0;label=<` + tableOpen +
		`<TR><TD BORDER="0" ALIGN="LEFT" COLSPAN="2">loop<BR ALIGN="LEFT"/>local.get 0<BR ALIGN="LEFT"/>br_if 0<BR ALIGN="LEFT"/></TD></TR>` +
		`<TR><TD PORT="T" SIDES="T">T</TD><TD PORT="F" SIDES="TL">F</TD></TR></TABLE>>]` + "\n" +
		"  start -> 1\n" +
		"  1:T -> 1\n" +
		"  1:F -> end\n" +
		"}\n"
	assert.Equal(t, want, dot(t, g))
}

func TestBrTable(t *testing.T) {
	g := build(t, 0,
		blk(wasm.OpBlock),
		blk(wasm.OpBlock),
		idx(wasm.OpLocalGet, 0),
		brTable(1, 0, 1),
		op(wasm.OpEnd),
		op(wasm.OpNop),
		op(wasm.OpEnd),
		op(wasm.OpEnd),
	)

	assert.Equal(t, []BlockID{0, 2}, g.NonEmpty())
	assert.Equal(t, []Successor{
		{Name: "0", To: 2},
		{Name: "1", To: Exit},
		{Name: "default", To: Exit},
	}, g.Block(0).Successors)
	assert.Equal(t, []Successor{{To: Exit}}, g.Block(2).Successors)

	out := dot(t, g)
	assert.Contains(t, out, `local.get 0<BR ALIGN="LEFT"/>br_table...<BR ALIGN="LEFT"/>`)
	assert.Contains(t, out, `<TD PORT="default" SIDES="TL">default</TD>`)
	assert.Contains(t, out, "  0:0 -> 2\n")
	assert.Contains(t, out, "  0:default -> end\n")
	assert.Contains(t, out, "  2 -> end\n")
}

func TestUnreachableSplitsBlocks(t *testing.T) {
	g := build(t, 0, op(wasm.OpReturn), op(wasm.OpNop), op(wasm.OpEnd))

	assert.Equal(t, []BlockID{0, 1}, g.NonEmpty())
	assert.Equal(t, []Successor{{To: Exit}}, g.Block(0).Successors)
	assert.Equal(t, []Successor{{To: Exit}}, g.Block(1).Successors)

	g = build(t, 0, op(wasm.OpUnreachable), op(wasm.OpNop), op(wasm.OpEnd))
	assert.Empty(t, g.Block(0).Successors)
	assert.Equal(t, 1, g.Block(1).Start)
}

func TestTruncatedPorts(t *testing.T) {
	labels := make([]uint32, 70)
	g := build(t, 0,
		blk(wasm.OpBlock),
		brTable(0, labels...),
		op(wasm.OpEnd),
		op(wasm.OpEnd),
	)
	require.Len(t, g.Block(0).Successors, 71)

	out := dot(t, g)
	assert.Contains(t, out, `COLSPAN="64"`)
	assert.Contains(t, out, `<TD PORT="63" SIDES="TL">63</TD><TD PORT="trunc" SIDES="TL">...</TD></TR>`)
	assert.NotContains(t, out, `PORT="64"`)
	assert.Contains(t, out, "  0:63 -> end [headlabel=\"63\"]\n")
	assert.Contains(t, out, "  0:trunc -> end [headlabel=\"69\"]\n")
	assert.Contains(t, out, "  0:trunc -> end [headlabel=\"default\"]\n")
}

func TestBadBranchDepth(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	g := build(t, 0, idx(wasm.OpBr, 5), op(wasm.OpEnd))
	assert.Equal(t, Exit, g.Entry)
	assert.Empty(t, g.NonEmpty())
	assert.Equal(t, 1, logs.FilterMessage("branch depth out of range").Len())
	assert.Equal(t, "strict digraph {\n  start -> end\n}\n", dot(t, g))
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		code   []byte
		phase  errors.Phase
		kind   errors.Kind
		offset int
	}{
		{"extra end", []byte{0x0b, 0x0b}, errors.PhaseAnalyze, errors.KindStructure, 101},
		{"truncated", []byte{0x41}, errors.PhaseDecode, errors.KindTruncated, 101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(wasm.FuncBody{Code: tt.code, Offset: 100}, features.Default())
			require.Error(t, err)
			var e *errors.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.phase, e.Phase)
			assert.Equal(t, tt.kind, e.Kind)
			assert.True(t, e.HasOffset)
			assert.Equal(t, tt.offset, e.Offset)
		})
	}
}

func TestMissingFinalEnd(t *testing.T) {
	g := build(t, 0, i32c(1), op(wasm.OpDrop))
	assert.Equal(t, []BlockID{0}, g.NonEmpty())
	assert.Empty(t, g.Block(0).Successors)
	start, end := g.Span(0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 3, end)
}
