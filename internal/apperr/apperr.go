package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the HTTP boundary.
type Kind string

const (
	Validation    Kind = "VALIDATION"
	NotFound      Kind = "NOT_FOUND"
	Conflict      Kind = "CONFLICT"
	Protected     Kind = "PROTECTED"
	Frozen        Kind = "FROZEN"
	AlreadyFrozen Kind = "ALREADY_FROZEN"
	NotFrozen     Kind = "NOT_FROZEN"
	NotEmpty      Kind = "NOT_EMPTY"
	Internal      Kind = "INTERNAL"
)

// Error carries a machine-readable kind plus a human-readable message.
// Details holds extra payload for the caller (e.g. the current balance
// when a freeze is rejected for nonzero balance).
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Kind, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Message: msg}
}

func Newf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// WithDetail attaches one key/value to the error's details and returns it.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewInternal wraps an unexpected failure (storage errors and the like).
func NewInternal(op string, err error) *Error {
	return &Error{Kind: Internal, Op: op, Message: "internal error", Err: err}
}

// KindOf returns the kind of err, or Internal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// AsError returns the underlying *Error, or nil.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
