// Package errors provides structured error types for partree.
//
// Every failure that crosses a package boundary toward a user (CLI output,
// HTTP response) carries a machine-readable [Code] plus a human-readable
// message. Lower layers keep returning plain Go errors; the pipeline and the
// front ends wrap them once with the code that describes what went wrong.
//
// # Error Codes
//
// Codes follow a flat naming convention:
//   - INVALID_*: input validation failures (expression, format, config)
//   - EVALUATION_FAILED: the evaluator could not produce a value
//   - NOT_FOUND: a stored resource is missing
//   - BACKEND_*: cache or history backend failures
//   - INTERNAL_ERROR: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidExpression, buildErr, "cannot build tree")
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the machine-readable part of an [Error]. The HTTP API returns it
// verbatim in the "code" field.
type Code string

const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidExpression Code = "INVALID_EXPRESSION"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidEvaluator  Code = "INVALID_EVALUATOR"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"
	ErrCodeInvalidPath       Code = "INVALID_PATH"

	// Evaluation errors
	ErrCodeEvaluation Code = "EVALUATION_FAILED"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Backend errors
	ErrCodeCache   Code = "BACKEND_CACHE"
	ErrCodeHistory Code = "BACKEND_HISTORY"
	ErrCodeRender  Code = "BACKEND_RENDER"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error pairs a [Code] with the message shown to users.
type Error struct {
	Code    Code
	Message string
	Cause   error // may be nil
}

// Error implements the error interface. A cause whose text equals the
// message is not repeated.
func (e *Error) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an Error with a formatted message and no cause.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap returns an Error whose cause is err.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether the first *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the text printed after "Error: " in the CLI: the
// message of a coded error without its code, or err.Error() otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status code an API handler should answer
// with. Errors without a code are internal errors.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidExpression:
		return http.StatusUnprocessableEntity
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidEvaluator, ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	case ErrCodeCache, ErrCodeHistory, ErrCodeRender:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
