package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode   Phase = "decode"   // bytes to instructions
	PhaseEncode   Phase = "encode"   // instructions to bytes
	PhaseValidate Phase = "validate" // static type checking
	PhaseLoad     Phase = "load"     // module framing and sections
	PhaseAnalyze  Phase = "analyze"  // control-flow analysis
)

// Kind categorizes the error
type Kind string

const (
	KindTruncated         Kind = "truncated"
	KindOverflow          Kind = "overflow"
	KindNonCanonical      Kind = "non_canonical"
	KindUnknownOpcode     Kind = "unknown_opcode"
	KindDisabledFeature   Kind = "disabled_feature"
	KindInvalidData       Kind = "invalid_data"
	KindOutOfBounds       Kind = "out_of_bounds"
	KindTypeMismatch      Kind = "type_mismatch"
	KindImmutable         Kind = "immutable"
	KindAlignment         Kind = "alignment"
	KindSharedMemory      Kind = "shared_memory"
	KindSignatureMismatch Kind = "signature_mismatch"
	KindStructure         Kind = "structure"
	KindLimits            Kind = "limits"
	KindImmediateMismatch Kind = "immediate_mismatch"
	KindNotFound          Kind = "not_found"
	KindInvalidInput      Kind = "invalid_input"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value     any
	Cause     error
	Phase     Phase
	Kind      Kind
	Detail    string
	Path      []string
	Offset    int
	HasOffset bool
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, " > "))
	}

	if e.HasOffset {
		fmt.Fprintf(&b, " @0x%x", e.Offset)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the context path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// At sets the byte offset
func (b *Builder) At(offset int) *Builder {
	b.err.Offset = offset
	b.err.HasOffset = true
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string) *Builder {
	b.err.Detail = msg
	return b
}

// Detailf sets the detail message from a format string
func (b *Builder) Detailf(format string, args ...any) *Builder {
	b.err.Detail = fmt.Sprintf(format, args...)
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Validation creates a validation error with a formatted detail
func Validation(kind Kind, format string, args ...any) *Error {
	return New(PhaseValidate, kind).Detailf(format, args...).Build()
}

// OutOfBounds creates an index out of bounds error
func OutOfBounds(phase Phase, what string, index, length uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("invalid %s %d, must be less than %d", what, index, length),
		Value:  index,
	}
}

// Unsupported creates a disabled feature error
func Unsupported(phase Phase, what, feature string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDisabledFeature,
		Detail: fmt.Sprintf("%s requires the %s feature", what, feature),
	}
}
