// Package errors defines the coded errors services return to the HTTP
// layer. A Code fixes the response status; Details carries per-field
// messages for validation failures.
//
// Match with the standard library:
//
//	if errors.Is(err, domainerrors.ErrForbidden) { ... }
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the machine-readable error code sent to clients.
type Code string

// Codes reported by the API.
const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeValidation         Code = "VALIDATION"
	CodeConflict           Code = "CONFLICT"
	CodeInternal           Code = "INTERNAL"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeRateLimited        Code = "RATE_LIMITED"
)

// Duplicate registrations and bad credentials are rejected payloads, so
// they share 400 with validation failures.
var statusByCode = map[Code]int{
	CodeNotFound:           http.StatusNotFound,
	CodeAlreadyExists:      http.StatusBadRequest,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeValidation:         http.StatusBadRequest,
	CodeConflict:           http.StatusConflict,
	CodeInvalidCredentials: http.StatusBadRequest,
	CodeRateLimited:        http.StatusTooManyRequests,
}

// HTTPStatus returns the response status for c. Unknown codes are 500.
func (c Code) HTTPStatus() int {
	if status, ok := statusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a coded error with an optional details payload and cause.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same Code, so sentinels work with
// errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && e.Code == t.Code
}

// HTTPStatus returns the response status for the error's code.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy carrying details.
func (e *Error) WithDetails(details any) *Error {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy wrapping err.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

// Sentinels for errors.Is.
var (
	ErrNotFound           = New(CodeNotFound, "not found")
	ErrAlreadyExists      = New(CodeAlreadyExists, "already exists")
	ErrUnauthorized       = New(CodeUnauthorized, "authentication required")
	ErrForbidden          = New(CodeForbidden, "forbidden")
	ErrValidation         = New(CodeValidation, "validation error")
	ErrInvalidCredentials = New(CodeInvalidCredentials, "invalid credentials")
)

// New returns an error with code and msg.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap returns an error with code and msg whose cause is err.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

func NotFound(msg string) *Error { return New(CodeNotFound, msg) }

func NotFoundf(format string, args ...any) *Error {
	return New(CodeNotFound, fmt.Sprintf(format, args...))
}

func AlreadyExists(msg string) *Error { return New(CodeAlreadyExists, msg) }
func Unauthorized(msg string) *Error { return New(CodeUnauthorized, msg) }
func Forbidden(msg string) *Error { return New(CodeForbidden, msg) }
func Validation(msg string) *Error { return New(CodeValidation, msg) }
func InvalidCredentials(msg string) *Error { return New(CodeInvalidCredentials, msg) }
func RateLimited(msg string) *Error { return New(CodeRateLimited, msg) }

// ValidationWithDetails returns a validation error with per-field details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}
