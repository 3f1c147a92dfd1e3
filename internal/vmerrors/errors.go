// Package vmerrors is the runtime error taxonomy: a small, closed set of
// error kinds that accumulate a trace of {kind, description, location}
// frames as an error propagates outward through enclosing blocks, ending
// in the fixed traceback format printed at the top level.
package vmerrors

import "strings"

// Kind is the closed set of runtime error categories.
type Kind int

const (
	TypeError Kind = iota
	NotFoundError
	SyntaxError
	Internal
)

func (k Kind) String() string {
	switch k {
	case TypeError:
		return "TypeError"
	case NotFoundError:
		return "NotFoundError"
	case SyntaxError:
		return "SyntaxError"
	case Internal:
		return "Internal"
	}
	return "Internal"
}

// Frame is one entry of a ScratchError's trace, innermost first.
type Frame struct {
	Kind        Kind
	Description string
	Location    string
}

// ScratchError is the single error type every interpreter and transformer
// failure is expressed as. It satisfies the standard error interface and
// accumulates Frames as it's returned up through nested evaluation.
type ScratchError struct {
	Trace []Frame
}

func (e *ScratchError) Error() string {
	var b strings.Builder
	b.WriteString("Runtime error occured. Traceback:\n")
	for _, f := range e.Trace {
		b.WriteString("at ")
		b.WriteString(f.Location)
		b.WriteString("\n    ")
		b.WriteString(f.Kind.String())
		b.WriteString(": ")
		b.WriteString(f.Description)
		b.WriteString("\n")
	}
	b.WriteString("See the above traceback for details.\n")
	return b.String()
}

func newErr(kind Kind, description, location string) *ScratchError {
	return &ScratchError{Trace: []Frame{{Kind: kind, Description: description, Location: location}}}
}

func TypeErrorf(description, location string) *ScratchError {
	return newErr(TypeError, description, location)
}

func NotFoundErrorf(description, location string) *ScratchError {
	return newErr(NotFoundError, description, location)
}

func SyntaxErrorf(description, location string) *ScratchError {
	return newErr(SyntaxError, description, location)
}

func Internalf(description, location string) *ScratchError {
	return newErr(Internal, description, location)
}

// Push appends a new outer frame and returns the same error, so call sites
// can write `return err.Push(vmerrors.TypeError, ...)` while unwinding.
func (e *ScratchError) Push(kind Kind, description, location string) *ScratchError {
	e.Trace = append(e.Trace, Frame{Kind: kind, Description: description, Location: location})
	return e
}

func (e *ScratchError) PushType(description, location string) *ScratchError {
	return e.Push(TypeError, description, location)
}

func (e *ScratchError) PushNotFound(description, location string) *ScratchError {
	return e.Push(NotFoundError, description, location)
}

func (e *ScratchError) PushSyntax(description, location string) *ScratchError {
	return e.Push(SyntaxError, description, location)
}

func (e *ScratchError) PushInternal(description, location string) *ScratchError {
	return e.Push(Internal, description, location)
}

// AsScratchError unwraps a plain error into a *ScratchError, wrapping it
// as an Internal-kind single-frame error if it isn't one already. Used at
// the boundary between Go's ambient errors (e.g. a failed goroutine join)
// and the runtime's own taxonomy.
func AsScratchError(err error, location string) *ScratchError {
	if err == nil {
		return nil
	}
	if se, ok := err.(*ScratchError); ok {
		return se
	}
	return newErr(Internal, err.Error(), location)
}
