// Package cfg splits a function body into basic blocks and renders the
// resulting control-flow graph in Graphviz dot syntax.
//
//	g, err := cfg.Build(m.Code[i], features.Default())
//	if err != nil {
//		return err
//	}
//	return g.WriteDot(os.Stdout)
//
// Blocks that only contain structural instructions are folded away, so
// every node in the output holds at least one instruction. Successor
// names follow the branch that created them: T and F for if and br_if,
// the table position or "default" for br_table.
package cfg
