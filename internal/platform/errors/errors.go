// Package errors defines the structured error type shared by the service
// layer and the HTTP boundary. Each error carries a Type that decides its
// status code and how loudly it is logged.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	TypeValidation  ErrorType = "validation"
	TypeNotFound    ErrorType = "not_found"
	TypeTooLarge    ErrorType = "too_large"
	TypeUnavailable ErrorType = "unavailable"
	TypeInternal    ErrorType = "internal"
	TypeExternal    ErrorType = "external"
)

type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// HTTPStatus maps the error type onto a response status. Unknown types are 500.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeTooLarge:
		return http.StatusRequestEntityTooLarge
	case TypeUnavailable:
		return http.StatusServiceUnavailable
	case TypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ClientFault reports whether the error was caused by the request rather
// than by the server or one of its dependencies.
func (e *Error) ClientFault() bool {
	switch e.Type {
	case TypeValidation, TypeNotFound, TypeTooLarge:
		return true
	default:
		return false
	}
}

func newError(t ErrorType, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause}
}

func Validation(message string) *Error { return newError(TypeValidation, message, nil) }

func Validationf(format string, args ...any) *Error {
	return newError(TypeValidation, fmt.Sprintf(format, args...), nil)
}

func NotFound(message string) *Error { return newError(TypeNotFound, message, nil) }

func TooLarge(message string) *Error { return newError(TypeTooLarge, message, nil) }

func Unavailable(message string, cause error) *Error {
	return newError(TypeUnavailable, message, cause)
}

func Internal(message string, cause error) *Error { return newError(TypeInternal, message, cause) }

func External(message string, cause error) *Error { return newError(TypeExternal, message, cause) }

// WithCause attaches an underlying error and returns e.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithField attaches a key/value pair that is returned to the client and logged.
func (e *Error) WithField(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

type Response struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse renders the client-facing body. Internal causes are never included.
func (e *Error) ToResponse() Response {
	return Response{Error: e.Message, Type: e.Type, Context: e.Context}
}

// As returns the first *Error in err's chain, or wraps err as an internal
// error when there is none. It returns nil for a nil err.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var structured *Error
	if errors.As(err, &structured) {
		return structured
	}
	return Internal("internal server error", err)
}

// IsType reports whether err carries a structured error of type t.
func IsType(err error, t ErrorType) bool {
	var structured *Error
	return errors.As(err, &structured) && structured.Type == t
}
