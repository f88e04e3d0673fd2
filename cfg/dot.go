package cfg

import (
	"bufio"
	"fmt"
	"html"
	"io"

	"github.com/wippyai/wasm-validator/wasm"
)

// maxPorts bounds the ports drawn for one block; further successors share
// a single "trunc" port and carry their name as a head label.
const maxPorts = 64

// WriteDot renders the graph in Graphviz dot syntax. Empty blocks are
// omitted; "start" and "end" are pseudo nodes for entry and exit.
func (g *Graph) WriteDot(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "strict digraph {")

	ids := g.NonEmpty()
	for _, id := range ids {
		g.writeNode(bw, id)
	}

	if g.Entry == Exit {
		fmt.Fprintln(bw, "  start -> end")
	} else {
		fmt.Fprintf(bw, "  start -> %d\n", g.Entry)
	}
	for _, id := range ids {
		g.writeEdges(bw, id)
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func (g *Graph) writeNode(w *bufio.Writer, id BlockID) {
	b := &g.Blocks[id]
	cols := max(1, min(len(b.Successors), maxPorts))
	fmt.Fprintf(w, `  %d [shape=none;margin=0;label=<`+
		`<TABLE BORDER="1" CELLBORDER="1" CELLSPACING="0">`+
		`<TR><TD BORDER="0" ALIGN="LEFT" COLSPAN="%d">`, id, cols)
	for _, instr := range g.Instrs[b.Start:b.End] {
		if structural(instr.Opcode) {
			continue
		}
		text := instr.String()
		if instr.Opcode == wasm.OpBrTable {
			text = instr.Opcode.String() + "..."
		}
		w.WriteString(html.EscapeString(text))
		w.WriteString(`<BR ALIGN="LEFT"/>`)
	}
	w.WriteString(`</TD></TR>`)

	if len(b.Successors) > 1 {
		w.WriteString(`<TR>`)
		for i, s := range b.Successors {
			if i >= maxPorts {
				w.WriteString(`<TD PORT="trunc" SIDES="TL">...</TD>`)
				break
			}
			sides := "TL"
			if i == 0 {
				sides = "T"
			}
			name := portName(s, i)
			fmt.Fprintf(w, `<TD PORT="%s" SIDES="%s">%s</TD>`, name, sides, name)
		}
		w.WriteString(`</TR>`)
	}
	w.WriteString("</TABLE>>]\n")
}

func (g *Graph) writeEdges(w *bufio.Writer, id BlockID) {
	b := &g.Blocks[id]
	truncated := len(b.Successors) >= maxPorts
	for i, s := range b.Successors {
		from := fmt.Sprint(id)
		if len(b.Successors) > 1 {
			if i >= maxPorts {
				from += ":trunc"
			} else {
				from += ":" + portName(s, i)
			}
		}
		to := "end"
		if s.To != Exit {
			to = fmt.Sprint(s.To)
		}
		if truncated {
			fmt.Fprintf(w, "  %s -> %s [headlabel=%q]\n", from, to, portName(s, i))
		} else {
			fmt.Fprintf(w, "  %s -> %s\n", from, to)
		}
	}
}

func portName(s Successor, i int) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprint(i)
}
