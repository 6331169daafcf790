// Package apperror defines the domain error taxonomy. Every validation and
// policy failure is raised before any write, so callers never observe
// partially mutated state alongside one of these errors.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping (404/403/400)
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindForbidden
	KindBadRequest
)

// Error is a typed domain error
type Error struct {
	Kind    Kind
	Message string
	wrapped error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

// NotFound reports that a referenced entity does not exist
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbidden reports a policy denial or an invariant violation, including
// "wrong source state for this transition"
func Forbidden(format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// BadRequest reports malformed input
func BadRequest(format string, args ...interface{}) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause while keeping the kind and message
func (e *Error) Wrap(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, wrapped: err}
}

// KindOf returns the kind of err if it is (or wraps) an *Error, else 0
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

// IsNotFound reports whether err is a NotFound domain error
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsForbidden reports whether err is a Forbidden domain error
func IsForbidden(err error) bool { return KindOf(err) == KindForbidden }

// IsBadRequest reports whether err is a BadRequest domain error
func IsBadRequest(err error) bool { return KindOf(err) == KindBadRequest }
