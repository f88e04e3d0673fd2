package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-validator/features"
	"github.com/wippyai/wasm-validator/wasm"
)

func newDumpCommand(global *globalOptions) *cobra.Command {
	var function string

	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print function instructions with their offsets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := global.features()
			if err != nil {
				return err
			}
			m, err := loadModule(args[0], f)
			if err != nil {
				return err
			}
			return runDump(cmd.OutOrStdout(), m, f, function)
		},
	}

	cmd.Flags().StringVarP(&function, "function", "f", "", "Function name or index (default: every function)")
	return cmd
}

func runDump(out io.Writer, m *wasm.Module, f features.Features, function string) error {
	if function != "" {
		idx, body, err := resolveFunction(m, function)
		if err != nil {
			return err
		}
		return dumpFunction(out, m, f, idx, body)
	}
	imported := uint32(m.NumImportedFuncs())
	for i := range m.Code {
		if err := dumpFunction(out, m, f, imported+uint32(i), &m.Code[i]); err != nil {
			return err
		}
	}
	return nil
}

func dumpFunction(out io.Writer, m *wasm.Module, f features.Features, idx uint32, body *wasm.FuncBody) error {
	fmt.Fprintf(out, "%s:\n", functionLabel(m, idx))
	for _, l := range body.Locals {
		fmt.Fprintf(out, "  (local %d %s)\n", l.Count, l.ValType)
	}

	depth := 1
	it := wasm.NewIterator(body.Code, body.Offset, f, nil)
	for it.Next() {
		instr := it.Instruction()
		switch instr.Opcode {
		case wasm.OpEnd, wasm.OpElse:
			depth = max(depth-1, 0)
		}
		fmt.Fprintf(out, "  %06x: %s%s\n", it.Offset(), strings.Repeat("  ", depth), instr)
		switch instr.Opcode {
		case wasm.OpBlock, wasm.OpLoop, wasm.OpIf, wasm.OpElse:
			depth++
		}
	}
	return it.Err()
}
