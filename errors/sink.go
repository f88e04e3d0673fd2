package errors

import stderrors "errors"

// Sink receives diagnostics from readers and validators. Contexts form a
// stack describing where the reporter currently is (a function, an
// instruction, a section).
//
// Sinks are owned by a single pass and are not safe for concurrent use.
type Sink interface {
	PushContext(desc string)
	PopContext()
	OnError(err *Error)
}

// Nop is a Sink that discards everything. It is used when only the
// boolean verdict of a check matters.
type Nop struct{}

func (Nop) PushContext(string) {}
func (Nop) PopContext()        {}
func (Nop) OnError(*Error)     {}

// List is a Sink that records every error. Each recorded error has the
// list's context stack at report time prepended to its own Path.
//
// The zero value is ready to use. Set Limit to cap the number of recorded
// errors; Dropped counts the ones past the cap.
type List struct {
	context []string
	errs    []*Error
	Limit   int
	Dropped int
}

// PushContext enters a nested context.
func (l *List) PushContext(desc string) {
	l.context = append(l.context, desc)
}

// PopContext leaves the innermost context.
func (l *List) PopContext() {
	if len(l.context) > 0 {
		l.context = l.context[:len(l.context)-1]
	}
}

// OnError records err.
func (l *List) OnError(err *Error) {
	if err == nil {
		return
	}
	if l.Limit > 0 && len(l.errs) >= l.Limit {
		l.Dropped++
		return
	}
	if len(l.context) > 0 {
		path := make([]string, 0, len(l.context)+len(err.Path))
		path = append(path, l.context...)
		err.Path = append(path, err.Path...)
	}
	l.errs = append(l.errs, err)
}

// Errors returns the recorded errors in report order.
func (l *List) Errors() []*Error {
	return l.errs
}

// Len returns the number of recorded errors.
func (l *List) Len() int {
	return len(l.errs)
}

// Err joins every recorded error, or returns nil when there are none.
func (l *List) Err() error {
	if len(l.errs) == 0 {
		return nil
	}
	joined := make([]error, len(l.errs))
	for i, err := range l.errs {
		joined[i] = err
	}
	return stderrors.Join(joined...)
}

// Reset clears errors and context.
func (l *List) Reset() {
	l.context = l.context[:0]
	l.errs = nil
	l.Dropped = 0
}
