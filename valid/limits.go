package valid

import (
	"math"

	"github.com/wippyai/wasm-validator/errors"
	"github.com/wippyai/wasm-validator/features"
	"github.com/wippyai/wasm-validator/wasm"
)

// MaxPages is the largest memory size in 64 KiB pages.
const MaxPages = 65536

func validateLimits(l wasm.Limits, max uint64, sink errors.Sink) bool {
	valid := true
	if uint64(l.Min) > max {
		sink.OnError(errors.New(errors.PhaseValidate, errors.KindLimits).
			Detailf("expected minimum %d to be <= %d", l.Min, max).Value(l.Min).Build())
		valid = false
	}
	if l.Max != nil {
		if uint64(*l.Max) > max {
			sink.OnError(errors.New(errors.PhaseValidate, errors.KindLimits).
				Detailf("expected maximum %d to be <= %d", *l.Max, max).Value(*l.Max).Build())
			valid = false
		}
		if l.Min > *l.Max {
			sink.OnError(errors.New(errors.PhaseValidate, errors.KindLimits).
				Detailf("expected minimum %d to be <= maximum %d", l.Min, *l.Max).Build())
			valid = false
		}
	}
	return valid
}

// ValidateMemoryType checks page limits and sharing.
func ValidateMemoryType(mt wasm.MemoryType, f features.Features, sink errors.Sink) bool {
	if sink == nil {
		sink = errors.Nop{}
	}
	sink.PushContext("memory type")
	defer sink.PopContext()

	valid := validateLimits(mt.Limits, MaxPages, sink)
	if mt.Limits.Shared {
		if !f.IsEnabled(features.Threads) {
			sink.OnError(errors.New(errors.PhaseValidate, errors.KindSharedMemory).
				Detail("memories cannot be shared").Build())
			valid = false
		}
		if mt.Limits.Max == nil {
			sink.OnError(errors.Validation(errors.KindLimits, "shared memory must have a maximum"))
			valid = false
		}
	}
	return valid
}

// ValidateTableType checks table limits.
func ValidateTableType(tt wasm.TableType, f features.Features, sink errors.Sink) bool {
	if sink == nil {
		sink = errors.Nop{}
	}
	sink.PushContext("table type")
	defer sink.PopContext()

	valid := validateLimits(tt.Limits, math.MaxUint32, sink)
	if tt.ElemType != wasm.ValFuncRef && !f.IsEnabled(features.ReferenceTypes) {
		sink.OnError(errors.Unsupported(errors.PhaseValidate, tt.ElemType.String()+" tables", features.ReferenceTypes.String()))
		valid = false
	}
	return valid
}
