package valid

import (
	"fmt"
	"runtime"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/wasm-validator/errors"
	"github.com/wippyai/wasm-validator/features"
	"github.com/wippyai/wasm-validator/wasm"
)

// ModuleConfig controls ValidateModule.
type ModuleConfig struct {
	// Features gates optional instruction families.
	Features features.Features

	// Workers bounds how many function bodies are validated at once.
	// Zero means runtime.GOMAXPROCS(0); one validates sequentially.
	Workers int

	// MaxErrors caps the diagnostics recorded per function body.
	// Zero means no cap.
	MaxErrors int
}

func (c ModuleConfig) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// ValidateModule validates the declarations and every function body of m.
// Body diagnostics are reported under the context "function N", N being
// the index in the function index space, in function order.
func ValidateModule(m *wasm.Module, cfg ModuleConfig, sink errors.Sink) bool {
	if sink == nil {
		sink = errors.Nop{}
	}
	decls := NewDeclarations(m)
	valid := allTrue(
		validateTypeIndices(m, sink),
		validateEntities(m, decls, cfg.Features, sink),
		validateGlobals(m, decls, cfg.Features, sink),
		validateExports(m, decls, cfg.Features, sink),
		validateStart(m, decls, sink),
		validateSegments(m, decls, cfg.Features, sink),
		validateCodeCount(m, sink),
	)
	return allTrue(validateBodies(m, decls, cfg, sink), valid)
}

func outOfBounds(sink errors.Sink, what string, idx uint32, length int) bool {
	if uint64(idx) < uint64(length) {
		return true
	}
	sink.OnError(errors.OutOfBounds(errors.PhaseValidate, what, uint64(idx), uint64(length)))
	return false
}

func validateTypeIndices(m *wasm.Module, sink errors.Sink) bool {
	valid := true
	for i, imp := range m.Imports {
		if imp.Desc.Kind != wasm.KindFunc {
			continue
		}
		sink.PushContext("import " + strconv.Itoa(i))
		valid = allTrue(outOfBounds(sink, "type index", imp.Desc.TypeIdx, len(m.Types)), valid)
		sink.PopContext()
	}
	for i, typeIdx := range m.Funcs {
		sink.PushContext("function " + strconv.Itoa(m.NumImportedFuncs()+i))
		valid = allTrue(outOfBounds(sink, "type index", typeIdx, len(m.Types)), valid)
		sink.PopContext()
	}
	return valid
}

func validateEntities(m *wasm.Module, decls *Declarations, f features.Features, sink errors.Sink) bool {
	valid := true
	for i, tt := range decls.Tables {
		sink.PushContext("table " + strconv.Itoa(i))
		valid = allTrue(ValidateTableType(tt, f, sink), valid)
		sink.PopContext()
	}
	if len(decls.Tables) > 1 && !f.IsEnabled(features.ReferenceTypes) {
		sink.OnError(errors.Unsupported(errors.PhaseValidate, "multiple tables", features.ReferenceTypes.String()))
		valid = false
	}
	for i, mt := range decls.Memories {
		sink.PushContext("memory " + strconv.Itoa(i))
		valid = allTrue(ValidateMemoryType(mt, f, sink), valid)
		sink.PopContext()
	}
	if len(decls.Memories) > 1 {
		sink.OnError(errors.Validation(errors.KindLimits, "only one memory is allowed, got %d", len(decls.Memories)))
		valid = false
	}
	for i, imp := range m.Imports {
		if imp.Desc.Kind == wasm.KindGlobal && imp.Desc.Global != nil && imp.Desc.Global.Mutable &&
			!f.IsEnabled(features.MutableGlobals) {
			sink.PushContext("import " + strconv.Itoa(i))
			sink.OnError(errors.Unsupported(errors.PhaseValidate, "importing a mutable global", features.MutableGlobals.String()))
			sink.PopContext()
			valid = false
		}
	}
	return valid
}

func validateGlobals(m *wasm.Module, decls *Declarations, f features.Features, sink errors.Sink) bool {
	valid := true
	for i, g := range m.Globals {
		sink.PushContext("global " + strconv.Itoa(decls.ImportedGlobals+i))
		valid = allTrue(ValidateConstExpr(decls, g.Init, g.Type.ValType, f, sink), valid)
		sink.PopContext()
	}
	return valid
}

func validateExports(m *wasm.Module, decls *Declarations, f features.Features, sink errors.Sink) bool {
	valid := true
	seen := make(map[string]bool, len(m.Exports))
	for i, exp := range m.Exports {
		sink.PushContext(fmt.Sprintf("export %d (%s)", i, exp.Name))
		if seen[exp.Name] {
			sink.OnError(errors.Validation(errors.KindInvalidData, "duplicate export name %q", exp.Name))
			valid = false
		}
		seen[exp.Name] = true

		switch exp.Kind {
		case wasm.KindFunc:
			valid = allTrue(outOfBounds(sink, "function index", exp.Idx, len(decls.Functions)), valid)
		case wasm.KindTable:
			valid = allTrue(outOfBounds(sink, "table index", exp.Idx, len(decls.Tables)), valid)
		case wasm.KindMemory:
			valid = allTrue(outOfBounds(sink, "memory index", exp.Idx, len(decls.Memories)), valid)
		case wasm.KindGlobal:
			if !outOfBounds(sink, "global index", exp.Idx, len(decls.Globals)) {
				valid = false
				break
			}
			if decls.Globals[exp.Idx].Mutable && !f.IsEnabled(features.MutableGlobals) {
				sink.OnError(errors.Unsupported(errors.PhaseValidate, "exporting a mutable global", features.MutableGlobals.String()))
				valid = false
			}
		}
		sink.PopContext()
	}
	return valid
}

func validateStart(m *wasm.Module, decls *Declarations, sink errors.Sink) bool {
	if m.Start == nil {
		return true
	}
	sink.PushContext("start")
	defer sink.PopContext()

	idx := *m.Start
	if !outOfBounds(sink, "function index", idx, len(decls.Functions)) {
		return false
	}
	typeIdx := decls.Functions[idx]
	if uint64(typeIdx) >= uint64(len(decls.Types)) {
		// Reported by validateTypeIndices.
		return false
	}
	ft := decls.Types[typeIdx]
	if len(ft.Params) != 0 || len(ft.Results) != 0 {
		sink.OnError(errors.Validation(errors.KindSignatureMismatch,
			"start function must have type () -> (), got %s", ft))
		return false
	}
	return true
}

func validateSegments(m *wasm.Module, decls *Declarations, f features.Features, sink errors.Sink) bool {
	valid := true
	for i, e := range m.Elements {
		sink.PushContext("element segment " + strconv.Itoa(i))
		if e.Mode == wasm.SegmentActive {
			valid = allTrue(outOfBounds(sink, "table index", e.TableIdx, len(decls.Tables)), valid)
			valid = allTrue(ValidateConstExpr(decls, e.Offset, wasm.ValI32, f, sink), valid)
		}
		for j, idx := range e.FuncIdxs {
			sink.PushContext("init " + strconv.Itoa(j))
			valid = allTrue(outOfBounds(sink, "function index", idx, len(decls.Functions)), valid)
			sink.PopContext()
		}
		for j, expr := range e.Exprs {
			sink.PushContext("init " + strconv.Itoa(j))
			valid = allTrue(ValidateConstExpr(decls, expr, decls.ElementSegments[i], f, sink), valid)
			sink.PopContext()
		}
		sink.PopContext()
	}

	if m.DataCount != nil && int(*m.DataCount) != len(m.Data) {
		sink.OnError(errors.Validation(errors.KindStructure,
			"data count section declares %d segments, data section has %d", *m.DataCount, len(m.Data)))
		valid = false
	}
	for i, d := range m.Data {
		if d.Mode != wasm.SegmentActive {
			continue
		}
		sink.PushContext("data segment " + strconv.Itoa(i))
		valid = allTrue(
			outOfBounds(sink, "memory index", d.MemIdx, len(decls.Memories)),
			ValidateConstExpr(decls, d.Offset, wasm.ValI32, f, sink),
			valid)
		sink.PopContext()
	}
	return valid
}

func validateCodeCount(m *wasm.Module, sink errors.Sink) bool {
	if len(m.Funcs) == len(m.Code) {
		return true
	}
	sink.OnError(errors.Validation(errors.KindStructure,
		"function and code section have inconsistent lengths: %d, %d", len(m.Funcs), len(m.Code)))
	return false
}

// bodyResult holds one function's verdict and diagnostics until they are
// merged in function order.
type bodyResult struct {
	errs    errors.List
	valid   bool
	skipped bool
}

func validateBodies(m *wasm.Module, decls *Declarations, cfg ModuleConfig, sink errors.Sink) bool {
	imported := m.NumImportedFuncs()
	n := min(len(m.Code), len(m.Funcs))
	results := make([]bodyResult, n)

	var eg errgroup.Group
	eg.SetLimit(cfg.workers())
	for i := range n {
		eg.Go(func() error {
			res := &results[i]
			res.errs.Limit = cfg.MaxErrors
			funcIdx := imported + i
			typeIdx := m.Funcs[i]
			if uint64(typeIdx) >= uint64(len(decls.Types)) {
				res.skipped = true
				return nil
			}
			Logger().Debug("validating function", zap.Int("index", funcIdx), zap.Int("size", len(m.Code[i].Code)))
			res.valid = ValidateCode(decls, decls.Types[typeIdx], m.Code[i], cfg.Features, &res.errs)
			Logger().Debug("validated function",
				zap.Int("index", funcIdx),
				zap.Bool("valid", res.valid),
				zap.Int("errors", res.errs.Len()))
			return nil
		})
	}
	_ = eg.Wait()

	valid := true
	for i := range results {
		res := &results[i]
		if res.skipped {
			valid = false
			continue
		}
		sink.PushContext("function " + strconv.Itoa(imported+i))
		for _, err := range res.errs.Errors() {
			sink.OnError(err)
		}
		if res.errs.Dropped > 0 {
			sink.OnError(errors.Validation(errors.KindLimits, "%d more errors not shown", res.errs.Dropped))
		}
		sink.PopContext()
		valid = allTrue(res.valid, valid)
	}
	return valid
}
