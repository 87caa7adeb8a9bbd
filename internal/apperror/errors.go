// Package apperror provides domain error types for Storefront. Each error
// carries an HTTP status code and a message that is safe to show in the
// browser. The Echo error handler maps them to responses automatically.
//
// Upstream failures from the authentication API are never echoed verbatim;
// wrap them with NewBadGateway or NewInternal.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the base error type for all domain errors.
type AppError struct {
	// Code is the HTTP status code (e.g., 404, 400, 502).
	Code int `json:"-"`

	// Type is a machine-readable classifier (e.g., "not_found").
	Type string `json:"type"`

	// Message is a human-readable description safe for the client.
	Message string `json:"message"`

	// Internal holds the underlying error for logging. Never exposed.
	Internal error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewNotFound creates a 404 Not Found error.
func NewNotFound(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Type: "not_found", Message: message}
}

// NewBadRequest creates a 400 Bad Request error.
func NewBadRequest(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Type: "bad_request", Message: message}
}

// NewUnauthorized creates a 401 Unauthorized error. Browser requests that
// end in this error are redirected to the login page.
func NewUnauthorized(message string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Type: "unauthorized", Message: message}
}

// NewValidation creates a 422 Unprocessable Entity error.
func NewValidation(message string) *AppError {
	return &AppError{Code: http.StatusUnprocessableEntity, Type: "validation_error", Message: message}
}

// NewBadGateway creates a 502 error for a failed or malformed response from
// the authentication API.
func NewBadGateway(err error) *AppError {
	return &AppError{
		Code:     http.StatusBadGateway,
		Type:     "bad_gateway",
		Message:  "The authentication service is unavailable. Please try again.",
		Internal: err,
	}
}

// errMissingContext is the shared internal error for nil precondition checks.
var errMissingContext = errors.New("missing required context")

// NewMissingContext creates a 500 error for handlers that run without the
// middleware they depend on (e.g. no session store attached).
func NewMissingContext() *AppError {
	return NewInternal(errMissingContext)
}

// NewInternal creates a 500 Internal Server Error. The real error is kept
// in Internal for logging; the client only sees a generic message.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:     http.StatusInternalServerError,
		Type:     "internal_error",
		Message:  "An unexpected error occurred. Please try again.",
		Internal: err,
	}
}

// SafeMessage returns the client-safe message from an error, or a generic
// message for anything that is not an AppError.
func SafeMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "an unexpected error occurred"
}

// SafeCode returns the HTTP status code from an AppError, or 500.
func SafeCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
