package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-validator/cfg"
	"github.com/wippyai/wasm-validator/crosscheck"
	"github.com/wippyai/wasm-validator/features"
	"github.com/wippyai/wasm-validator/valid"
	"github.com/wippyai/wasm-validator/wasm"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		var status statusError
		if !errors.As(err, &status) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(status.code)
	}
}

// statusError ends the process with code after the command has already
// printed its own diagnostics.
type statusError struct {
	code int
}

func (e statusError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

type globalOptions struct {
	enable      []string
	disable     []string
	allFeatures bool
	verbose     bool
}

func (o *globalOptions) features() (features.Features, error) {
	f := features.Default()
	if o.allFeatures {
		f.EnableAll()
	}
	if err := f.EnableNames(o.enable); err != nil {
		return f, err
	}
	if err := f.DisableNames(o.disable); err != nil {
		return f, err
	}
	f.UpdateDependencies()
	return f, nil
}

func (o *globalOptions) setupLogging() error {
	log := zap.NewNop()
	if o.verbose {
		var err error
		if log, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	wasm.SetLogger(log)
	valid.SetLogger(log)
	cfg.SetLogger(log)
	crosscheck.SetLogger(log)
	return nil
}

func newRootCommand() *cobra.Command {
	var opts globalOptions

	cmd := &cobra.Command{
		Use:           "wasmcheck",
		Short:         "Validate and inspect WebAssembly modules",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setupLogging()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringSliceVar(&opts.enable, "enable", nil, "Enable features (comma separated: "+featureList()+")")
	flags.StringSliceVar(&opts.disable, "disable", nil, "Disable features")
	flags.BoolVar(&opts.allFeatures, "all-features", false, "Enable every feature")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log progress to stderr")

	cmd.AddCommand(
		newValidateCommand(&opts),
		newDumpCommand(&opts),
		newCFGCommand(&opts),
		newInspectCommand(&opts),
	)
	return cmd
}

func featureList() string {
	return strings.Join(features.Names(), ", ")
}
