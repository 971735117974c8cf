// Package errors provides coded domain errors for the sidecar extraction
// engine.
//
// Usage:
//
//	// In parsers - wrap I/O failures so callers can tell them apart
//	// from malformed content (which is not an error at all):
//	return nil, errors.Wrapf(err, errors.CodeUnreadable, "read %s", path)
//
//	// In callers - check with errors.Is:
//	if errors.Is(err, errors.ErrUnreadable) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the engine.
const (
	// CodeUnreadable marks an I/O failure opening or reading a candidate
	// file. The candidate is skipped; extraction continues.
	CodeUnreadable Code = "UNREADABLE"
	// CodeNotFound marks an item path that does not exist.
	CodeNotFound Code = "NOT_FOUND"
	// CodeInvalidConfig marks a configuration that fails validation.
	CodeInvalidConfig Code = "INVALID_CONFIG"
	// CodeCanceled marks a collection aborted by the caller's context.
	CodeCanceled Code = "CANCELED"
	// CodeInternal marks everything else.
	CodeInternal Code = "INTERNAL"
)

// Error is a domain error with a code, message, and optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors for use with errors.Is().
var (
	ErrUnreadable    = &Error{Code: CodeUnreadable, Message: "unreadable file"}
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrInvalidConfig = &Error{Code: CodeInvalidConfig, Message: "invalid configuration"}
	ErrCanceled      = &Error{Code: CodeCanceled, Message: "canceled"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "internal error"}
)

// Unreadable creates an unreadable-file error wrapping the I/O cause.
func Unreadable(err error, path string) *Error {
	return &Error{Code: CodeUnreadable, Message: fmt.Sprintf("unreadable file %s", path), cause: err}
}

// NotFoundf creates a not found error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidConfigf creates an invalid configuration error with a formatted message.
func InvalidConfigf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidConfig, Message: fmt.Sprintf(format, args...)}
}

// Canceled wraps a context error as a canceled collection.
func Canceled(err error) *Error {
	return &Error{Code: CodeCanceled, Message: "collection canceled", cause: err}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
