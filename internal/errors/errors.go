// Package errors provides the coded error taxonomy used by the rules engine.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an error that did not come from the engine.
	CodeUnknown Code = "UNKNOWN"

	// CodeValidation is a malformed mutation request (amount out of range, empty name).
	CodeValidation Code = "VALIDATION"
	// CodeIllegalState is an action the player state machine does not allow.
	CodeIllegalState Code = "ILLEGAL_STATE"
	// CodeInvalidAction is an unrecognized face, target or choice combination.
	CodeInvalidAction Code = "INVALID_ACTION"
	// CodeLedgerIntegrity is an event record that fails its write-time checks.
	CodeLedgerIntegrity Code = "LEDGER_INTEGRITY"
	// CodeCapacity is a roster that is already full.
	CodeCapacity Code = "CAPACITY"
	// CodeNotFound is a lookup by name with no match.
	CodeNotFound Code = "NOT_FOUND"
)

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Human-readable message
	Metadata map[string]string // Additional context (player names, amounts)
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// WithMetadata creates a domain error with metadata attached.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
