package fmdapi

import (
	"errors"
	"fmt"
)

// Data API message codes the runtime and the generator react to.
const (
	CodeOK            = "0"
	CodeRecordMissing = "101"
	CodeLayoutMissing = "105"
	CodeNoRecords     = "401"
	CodeInvalidToken  = "952"
)

// Standard sentinel errors for common operations.
var (
	// ErrLayoutMissing is matched by any *Error carrying CodeLayoutMissing.
	ErrLayoutMissing = errors.New("fmdapi: layout is missing")

	// ErrNotSingular is returned by FindOne when the result set is not exactly one record.
	ErrNotSingular = errors.New("fmdapi: record not singular")

	// ErrNoHost is returned by a HostAdapter that has no bridge to send requests through.
	ErrNoHost = errors.New("fmdapi: no host bridge registered")
)

// Error is a failed Data API call. Code is the first message code reported
// by FileMaker ("105", "952", ...), Status the HTTP status when known.
type Error struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fmdapi: request failed with code %s (%d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("fmdapi: request failed with code %s: %s", e.Code, e.Message)
}

// Is reports whether the target matches the sentinel error for the code.
func (e *Error) Is(target error) bool {
	return target == ErrLayoutMissing && e.Code == CodeLayoutMissing
}

// NewError returns a new Error for the given code and message.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// IsLayoutMissing returns true if the error reports a missing layout.
func IsLayoutMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrLayoutMissing)
}

// ErrorCode returns the Data API code carried by err, or "" if err is not an *Error.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// NotSingularError is returned when a query expects exactly one record.
type NotSingularError struct {
	Layout string
	Count  int
}

// Error returns the error string.
func (e *NotSingularError) Error() string {
	return fmt.Sprintf("fmdapi: %s not singular (got %d records, expected 1)", e.Layout, e.Count)
}

// Is reports whether the target error matches NotSingularError.
func (e *NotSingularError) Is(err error) bool {
	return err == ErrNotSingular
}

// ValidationError wraps a failure of a record validator.
type ValidationError struct {
	Layout   string
	RecordID string
	Err      error
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("fmdapi: record %s from layout %q failed validation: %v", e.RecordID, e.Layout, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}
