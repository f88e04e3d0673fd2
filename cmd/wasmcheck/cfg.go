package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-validator/cfg"
)

func newCFGCommand(global *globalOptions) *cobra.Command {
	var (
		function string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "cfg FILE -f FUNCTION",
		Short: "Write a function's control-flow graph in Graphviz dot syntax",
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
			_, body, err := resolveFunction(m, function)
			if err != nil {
				return err
			}
			g, err := cfg.Build(*body, f)
			if err != nil {
				return fmt.Errorf("build graph: %w", err)
			}

			if output == "" || output == "-" {
				return g.WriteDot(cmd.OutOrStdout())
			}
			file, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := g.WriteDot(file); err != nil {
				file.Close()
				return err
			}
			return file.Close()
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&function, "function", "f", "", "Function name or index")
	flags.StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	_ = cmd.MarkFlagRequired("function")
	return cmd
}
