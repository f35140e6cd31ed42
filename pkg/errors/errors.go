package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is the stable, machine-readable part of an API error
type ErrorCode string

const (
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidEmail    ErrorCode = "INVALID_EMAIL"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeAccountNotFound ErrorCode = "ACCOUNT_NOT_FOUND"
)

// Error carries a code, a message safe to show clients, and the underlying cause
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the status the code maps to
func (e *Error) HTTPStatusCode() int {
	return MapErrorCodeToHTTPStatus(e.Code)
}

// New creates an error with code and message
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches code and message to err
func Wrap(err error, code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// GetCode returns the code of the first *Error in err's chain, or ErrCodeInternal
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// MapErrorCodeToHTTPStatus maps a code to its HTTP status
func MapErrorCodeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidEmail:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeAccountNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Unauthorized is returned when a request needs a signed-in user
func Unauthorized() *Error {
	return New(ErrCodeUnauthorized, "Unauthorized")
}

// Internal hides err behind message
func Internal(err error, message string) *Error {
	return Wrap(err, ErrCodeInternal, message)
}
