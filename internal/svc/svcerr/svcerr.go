// Package svcerr is the error taxonomy shared by every service.
// Any error which is not *Error must be treated as internal error.
package svcerr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error carries message which is safe to show to the end user.
type Error struct {
	Kind    Kind
	Message string
	Err     error // optional cause, never shown to the user
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func InvalidInput(format string, args ...interface{}) error {
	return newf(KindInvalidInput, format, args...)
}

func Unauthorized(format string, args ...interface{}) error {
	return newf(KindUnauthorized, format, args...)
}

func Forbidden(format string, args ...interface{}) error {
	return newf(KindForbidden, format, args...)
}

func NotFound(format string, args ...interface{}) error {
	return newf(KindNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return newf(KindConflict, format, args...)
}

// KindOf returns KindInternal for nil-kind or non *Error values.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}

// Is reports whether err is *Error of the kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}

	return KindOf(err) == kind
}
