package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	wasmvalidator "github.com/wippyai/wasm-validator"
)

type validateOptions struct {
	workers    int
	maxErrors  int
	crossCheck bool
	quiet      bool
}

func newValidateCommand(global *globalOptions) *cobra.Command {
	var opts validateOptions

	cmd := &cobra.Command{
		Use:   "validate FILE [FILE...]",
		Short: "Validate modules and print diagnostics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), cmd.OutOrStdout(), global, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.workers, "workers", 0, "Function bodies validated in parallel (0 uses every CPU)")
	flags.IntVar(&opts.maxErrors, "max-errors", 0, "Diagnostics shown per function (0 shows all)")
	flags.BoolVar(&opts.crossCheck, "crosscheck", false, "Also compile with wazero and report disagreements")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Only print invalid files")

	return cmd
}

func runValidate(ctx context.Context, out io.Writer, global *globalOptions, opts validateOptions, files []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f, err := global.features()
	if err != nil {
		return err
	}
	p := painter(isTerminal(out))
	status := 0

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(out, "%s: %s\n", path, p.paint(errorStyle, err.Error()))
			status = 1
			continue
		}
		rep, err := wasmvalidator.Check(ctx, data, wasmvalidator.Config{
			Features:   f,
			Workers:    opts.workers,
			MaxErrors:  opts.maxErrors,
			CrossCheck: opts.crossCheck,
		})
		if err != nil {
			return err
		}

		for _, e := range rep.Errors {
			fmt.Fprintf(out, "%s: %s\n", path, p.paint(errorStyle, e.Error()))
		}
		if !rep.Valid {
			status = 1
		}
		if rep.Engine != nil {
			switch {
			case rep.Engine.Skipped:
				fmt.Fprintf(out, "%s: wazero check skipped: %s\n", path, rep.Engine.Reason)
			case rep.EngineErr != nil:
				fmt.Fprintf(out, "%s: %s\n", path, p.paint(warnStyle, rep.EngineErr.Error()))
				status = 1
			}
		}
		if rep.Valid && !opts.quiet {
			fmt.Fprintf(out, "%s: %s (%d functions)\n", path, p.paint(okStyle, "ok"), rep.Functions)
		}
	}

	if status != 0 {
		return statusError{code: status}
	}
	return nil
}
