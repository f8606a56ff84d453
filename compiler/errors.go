package compiler

import (
	"errors"
	"fmt"
)

var (
	ErrSyntax             = errors.New("syntax error")
	ErrUnsupported        = errors.New("unsupported construct")
	ErrLiteralRange       = errors.New("integer literal out of range")
	ErrUnresolvedSymbol   = errors.New("unresolved symbol")
	ErrDuplicateSymbol    = errors.New("duplicate symbol")
	ErrRegistersExhausted = errors.New("registers exhausted")
	ErrFinalized          = errors.New("builder already finalized")
)

// Error is a compile error tied to a source position. Kind is one of the
// sentinel errors above and is what errors.Is matches against.
type Error struct {
	Pos  Position
	Kind error
	Name string // symbol involved, if any
	Msg  string
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Name != "" {
		msg += ": " + e.Name
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Pos.Line == 0 {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, msg)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Errors flattens err into the positioned compile errors it carries.
// Errors without a position are returned as-is in a zero-position Error.
func Errors(err error) []*Error {
	if err == nil {
		return nil
	}
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*Error
		for _, e := range multi.Unwrap() {
			out = append(out, Errors(e)...)
		}
		return out
	}
	var ce *Error
	if errors.As(err, &ce) {
		return []*Error{ce}
	}
	return []*Error{{Kind: err}}
}
