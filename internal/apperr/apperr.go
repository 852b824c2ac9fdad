// Package apperr defines the error taxonomy shared by the stores, services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the caller. Every kind is recoverable by the user retrying.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthentication
	KindCapacity
	KindDuplicate
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindAuthentication:
		return "AUTHENTICATION"
	case KindCapacity:
		return "CAPACITY"
	case KindDuplicate:
		return "DUPLICATE"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	default:
		return "UNKNOWN"
	}
}

// Violation is one failed rule on one field.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Error is a classified domain error.
type Error struct {
	Kind       Kind
	Message    string
	Violations []Violation
	// Redirect is the route the caller should navigate to, if any.
	Redirect string
}

func (e *Error) Error() string {
	return e.Message
}

// WithRedirect returns a copy of e that asks the caller to navigate to route.
func (e *Error) WithRedirect(route string) *Error {
	cp := *e
	cp.Redirect = route
	return &cp
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(message string, violations ...Violation) *Error {
	return &Error{Kind: KindValidation, Message: message, Violations: violations}
}

func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func Capacity(message string) *Error {
	return &Error{Kind: KindCapacity, Message: message}
}

func Duplicate(message string) *Error {
	return &Error{Kind: KindDuplicate, Message: message}
}

func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
