package valid

import (
	"strings"

	"github.com/wippyai/wasm-validator/wasm"
)

// StackType is the type of an operand stack entry.
type StackType uint8

// Stack types. Any appears only in unreachable code, standing in for
// values popped past the bottom of a polymorphic stack.
const (
	I32 StackType = iota + 1
	I64
	F32
	F64
	V128
	FuncRef
	AnyRef
	NullRef
	Any
)

func (t StackType) String() string {
	switch t {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case V128:
		return "v128"
	case FuncRef:
		return "funcref"
	case AnyRef:
		return "anyref"
	case NullRef:
		return "nullref"
	case Any:
		return "any"
	default:
		return "invalid"
	}
}

// IsRef reports whether t is a reference type.
func (t StackType) IsRef() bool {
	return t == FuncRef || t == AnyRef || t == NullRef
}

// StackTypeOf maps a value type to its stack type.
func StackTypeOf(vt wasm.ValType) StackType {
	switch vt {
	case wasm.ValI32:
		return I32
	case wasm.ValI64:
		return I64
	case wasm.ValF32:
		return F32
	case wasm.ValF64:
		return F64
	case wasm.ValV128:
		return V128
	case wasm.ValFuncRef:
		return FuncRef
	case wasm.ValAnyRef:
		return AnyRef
	case wasm.ValNullRef:
		return NullRef
	default:
		return I32
	}
}

// StackTypes maps a list of value types.
func StackTypes(vts []wasm.ValType) []StackType {
	if len(vts) == 0 {
		return nil
	}
	out := make([]StackType, len(vts))
	for i, vt := range vts {
		out[i] = StackTypeOf(vt)
	}
	return out
}

// TypesMatch reports whether a value of type actual may be used where
// expected is required. Any matches everything, anyref accepts every
// reference type, and nullref is accepted by every reference type.
func TypesMatch(expected, actual StackType) bool {
	switch {
	case expected == actual:
		return true
	case expected == Any || actual == Any:
		return true
	case expected == AnyRef && actual.IsRef():
		return true
	case expected.IsRef() && actual == NullRef:
		return true
	}
	return false
}

// TypeListsMatch applies TypesMatch pairwise to lists of equal length.
func TypeListsMatch(expected, actual []StackType) bool {
	if len(expected) != len(actual) {
		return false
	}
	for i := range expected {
		if !TypesMatch(expected[i], actual[i]) {
			return false
		}
	}
	return true
}

func formatTypes(types []StackType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
