// Package domainerrors defines the error vocabulary shared by services and
// transport. Services attach a Code to every failure so handlers can map it to
// an HTTP status without inspecting message text, and callers can branch on
// HasCode instead of string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain failure.
type Code string

const (
	// CodeValidation marks malformed or missing input. The caller can fix the
	// request and retry.
	CodeValidation Code = "validation"
	// CodeBadRequest marks a request that could not be decoded at all.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks a missing referenced entity.
	CodeNotFound Code = "not_found"
	// CodeConflict marks an operation attempted from a state that forbids it,
	// including uniqueness violations.
	CodeConflict Code = "conflict"
	// CodeForbidden marks an actor that is not the permitted party.
	CodeForbidden Code = "forbidden"
	// CodeUnauthorized marks a request with no established actor identity.
	CodeUnauthorized Code = "unauthorized"
	// CodeTimeout marks a transaction aborted by deadline or cancellation.
	CodeTimeout Code = "timeout"
	// CodeUnavailable marks infrastructure that could not serve the request,
	// e.g. the sequence allocator failing to guarantee a unique ordinal.
	CodeUnavailable Code = "unavailable"
	// CodeInternal marks unexpected failures. Details are logged, not returned.
	CodeInternal Code = "internal_error"
)

// Error carries a machine-readable code alongside a human-readable message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is / errors.As chains.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// CodeOf returns the code carried by err, or CodeInternal when err carries
// none. Unknown failures are deliberately reported as internal.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// MessageOf returns the human-readable message carried by err, or an empty
// string for non-domain errors.
func MessageOf(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return ""
}
