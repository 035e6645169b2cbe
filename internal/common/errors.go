package common

import (
	"errors"
	"fmt"
)

// Error codes. Business-rule checks run inside the same transaction as the
// mutation they guard, so any of these surfacing means the transaction was
// already rolled back.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInvalidState = "INVALID_STATE"
	CodeTransient    = "TRANSIENT"
	CodeServer       = "SERVER_ERROR"
)

// Error is the service-layer error type. Handlers map Code to an HTTP status;
// anything that is not an *Error is reported as an opaque server error.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NewValidationError(format string, args ...interface{}) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(resource string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func NewConflictError(format string, args ...interface{}) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidStateError(format string, args ...interface{}) *Error {
	return &Error{Code: CodeInvalidState, Message: fmt.Sprintf(format, args...)}
}

// NewTransientError wraps a transaction begin/commit failure. Safe to retry
// only for idempotent operations.
func NewTransientError(err error) *Error {
	return &Error{Code: CodeTransient, Message: "operation aborted, retry may succeed", Err: err}
}

func NewServerError(err error) *Error {
	return &Error{Code: CodeServer, Message: "internal server error", Err: err}
}

// ErrorCode extracts the taxonomy code, defaulting to SERVER_ERROR.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeServer
}

func IsNotFound(err error) bool     { return ErrorCode(err) == CodeNotFound }
func IsConflict(err error) bool     { return ErrorCode(err) == CodeConflict }
func IsInvalidState(err error) bool { return ErrorCode(err) == CodeInvalidState }
func IsValidation(err error) bool   { return ErrorCode(err) == CodeValidation }
