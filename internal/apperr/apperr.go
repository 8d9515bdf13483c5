// Package apperr defines the recoverable error taxonomy shared by every
// audit subsystem. Errors carry a Code so callers can branch on failure
// class without parsing messages.
package apperr

import (
	"errors"
	"fmt"
)

// Code classifies a recoverable error into one of the taxonomy entries
// from the error handling design.
type Code string

const (
	// CodeDatabase covers recoverable Indexed Store failures.
	CodeDatabase Code = "persistence/database"
	// CodeIO covers recoverable Chain Log append/read failures.
	CodeIO Code = "persistence/io"
	// CodeChainBreak marks a detected break in chain continuity.
	CodeChainBreak Code = "integrity/chain_break"
	// CodeInvalidHash marks a detected per-entry hash mismatch.
	CodeInvalidHash Code = "integrity/invalid_hash"
	// CodePolicy marks a caller error in retention policy configuration.
	CodePolicy Code = "retention/policy"
	// CodeMigration marks a fatal startup migration failure.
	CodeMigration Code = "migration"
)

// Error wraps an underlying cause with a taxonomy Code.
type Error struct {
	Code Code
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// New builds an Error with no wrapped cause.
func New(code Code, msg string) error {
	return &Error{Code: code, msg: msg}
}

// Wrap builds an Error that wraps cause, preserving it for errors.Is/As.
func Wrap(code Code, msg string, cause error) error {
	if cause == nil {
		return New(code, msg)
	}
	return &Error{Code: code, msg: msg, err: cause}
}

// HasCode reports whether err (or any error it wraps) carries code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf extracts the Code from err, if any, and whether one was found.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}
