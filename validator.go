package wasmvalidator

import (
	"context"

	"github.com/wippyai/wasm-validator/crosscheck"
	"github.com/wippyai/wasm-validator/errors"
	"github.com/wippyai/wasm-validator/features"
	"github.com/wippyai/wasm-validator/valid"
	"github.com/wippyai/wasm-validator/wasm"
)

// Config controls Check.
type Config struct {
	Features features.Features

	// Workers and MaxErrors are passed to valid.ValidateModule.
	Workers   int
	MaxErrors int

	// CrossCheck also compiles the module with wazero.
	CrossCheck bool
}

// Report is the outcome of Check.
type Report struct {
	Valid bool

	// Errors holds every diagnostic in report order, each with its full
	// context path.
	Errors []*errors.Error

	// Functions counts defined functions; zero if the module did not parse.
	Functions int

	// Engine is wazero's verdict when CrossCheck is set.
	Engine *crosscheck.Result

	// EngineErr is set when wazero and the validator disagree.
	EngineErr error
}

// Check parses and validates data. Malformed or invalid modules are
// described by the report; the returned error is only set when ctx is done.
func Check(ctx context.Context, data []byte, cfg Config) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sink errors.List
	rep := &Report{}
	m, err := wasm.ReadModule(data, cfg.Features, &sink)
	if err == nil {
		rep.Functions = len(m.Code)
		rep.Valid = valid.ValidateModule(m, valid.ModuleConfig{
			Features:  cfg.Features,
			Workers:   cfg.Workers,
			MaxErrors: cfg.MaxErrors,
		}, &sink)
	}
	rep.Errors = sink.Errors()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.CrossCheck {
		res := crosscheck.Compile(ctx, data, crosscheck.Config{Features: cfg.Features})
		rep.Engine = &res
		if d := crosscheck.Compare(rep.Valid, res); d != nil {
			rep.EngineErr = d
		}
	}
	return rep, nil
}
