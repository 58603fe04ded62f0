// Package apperr defines the error taxonomy returned by services and
// rendered by handlers into the response envelope.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	InternalError Kind = iota
	NotFound
	Forbidden
	InvalidInput
	Conflict
	StateConflict
	ExternalServiceError
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "NotFound"
	case Forbidden:
		return "Forbidden"
	case InvalidInput:
		return "InvalidInput"
	case Conflict:
		return "Conflict"
	case StateConflict:
		return "StateConflict"
	case ExternalServiceError:
		return "ExternalServiceError"
	default:
		return "InternalError"
	}
}

// Error is a classified failure. Code is a stable machine-readable name
// (e.g. "Exhausted"); Message is safe to show to end users.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same Kind and Code, so sentinel values
// survive being re-created with a different message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches a cause to a classified error.
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// WithMessage returns a copy of e with a different user-facing message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

func Invalid(message string) *Error {
	return New(InvalidInput, "InvalidInput", message)
}

func Internal(err error) *Error {
	return Wrap(InternalError, "InternalError", "internal error", err)
}

func External(message string, err error) *Error {
	return Wrap(ExternalServiceError, "ExternalServiceError", message, err)
}

// KindOf returns the Kind of err; unclassified errors are InternalError.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return InternalError
}

// As extracts the classified error, classifying anything else as internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
