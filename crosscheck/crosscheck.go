// Package crosscheck compiles modules with wazero so its verdict can be
// compared with this validator's.
package crosscheck

import (
	"context"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-validator/errors"
	"github.com/wippyai/wasm-validator/features"
)

// Config holds the settings for one engine compile.
type Config struct {
	Features features.Features

	// MemoryLimitPages caps memory declarations in 64 KiB pages.
	// 0 keeps wazero's default of 65536.
	MemoryLimitPages uint32
}

// Result is wazero's verdict on a module.
type Result struct {
	// Skipped is set when the enabled features have no wazero equivalent.
	Skipped bool
	Reason  string

	// Err is the compile failure, nil when wazero accepted the module.
	Err     error
	Elapsed time.Duration
}

// Accepted reports whether wazero compiled the module.
func (r Result) Accepted() bool { return !r.Skipped && r.Err == nil }

// unmapped lists features wazero cannot check. Tail calls have no wazero
// flag. SIMD and reference types are decoded here in their pre-standard
// encodings (v128.const is 0xfd 0x02, ref.null has no type immediate),
// which wazero reads as different instructions.
const unmapped = features.TailCall | features.SIMD | features.ReferenceTypes

// CoreFeatures maps f onto wazero's core features. Flags wazero cannot
// express are returned as missing.
func CoreFeatures(f features.Features) (core api.CoreFeatures, missing features.Feature) {
	mapping := []struct {
		feature features.Feature
		core    api.CoreFeatures
	}{
		{features.MutableGlobals, api.CoreFeatureMutableGlobal},
		{features.SignExtension, api.CoreFeatureSignExtensionOps},
		{features.SaturatingFloatToInt, api.CoreFeatureNonTrappingFloatToIntConversion},
		{features.MultiValue, api.CoreFeatureMultiValue},
		{features.BulkMemory, api.CoreFeatureBulkMemoryOperations},
		{features.Threads, experimental.CoreFeaturesThreads},
	}
	for _, m := range mapping {
		if f.IsEnabled(m.feature) {
			core |= m.core
		}
	}
	return core, f.Flags() & unmapped
}

// Compile compiles data with wazero's interpreter under the features in
// cfg. Compilation decodes and validates every function body.
func Compile(ctx context.Context, data []byte, cfg Config) Result {
	core, missing := CoreFeatures(cfg.Features)
	if missing != 0 {
		Logger().Debug("engine check skipped", zap.Stringer("missing", missing))
		return Result{Skipped: true, Reason: "wazero does not support " + missing.String()}
	}

	rc := wazero.NewRuntimeConfigInterpreter().WithCoreFeatures(core)
	if cfg.MemoryLimitPages > 0 {
		rc = rc.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, rc)
	defer rt.Close(ctx)

	start := time.Now()
	compiled, err := rt.CompileModule(ctx, data)
	res := Result{Err: err, Elapsed: time.Since(start)}
	if err == nil {
		_ = compiled.Close(ctx)
	}
	Logger().Debug("compiled with wazero",
		zap.Int("size", len(data)),
		zap.Bool("accepted", err == nil),
		zap.Duration("elapsed", res.Elapsed))
	return res
}

// Compare returns an error when the validator and wazero disagree. A
// skipped engine check never disagrees.
func Compare(valid bool, r Result) *errors.Error {
	switch {
	case r.Skipped:
		return nil
	case valid && r.Err != nil:
		return errors.New(errors.PhaseValidate, errors.KindInvalidData).
			Detail("module is valid but wazero rejects it").Cause(r.Err).Build()
	case !valid && r.Err == nil:
		return errors.New(errors.PhaseValidate, errors.KindInvalidData).
			Detail("module is invalid but wazero accepts it").Build()
	}
	return nil
}
