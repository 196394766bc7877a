// Copyright (c) 2026 Komira. All rights reserved.

/*
Package apperr defines the application error model for Komira.

Services and stores return an [*AppError] whenever a failure should reach
the client as something better than a generic 500. The respond package
maps the error onto the HTTP response; nothing else in the codebase
hand-writes status codes for failures.

The Cause field exists for server-side logs only. Client payloads carry
the code, the message, and for validation failures the per-field details.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Model

// AppError is the canonical error type for the Komira API.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError is one field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap exposes the cause chain to [errors.Is] and [errors.As].
func (e *AppError) Unwrap() error { return e.Cause }

// newError builds the common shape shared by every constructor below.
func newError(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// # Client Errors (4xx)

// NotFound creates a 404 for a named resource, e.g. NotFound("Manga")
// produces "Manga not found".
func NotFound(resource string) *AppError {
	return newError(http.StatusNotFound, "NOT_FOUND", resource+" not found")
}

// Unauthorized creates a 401.
func Unauthorized(msg string) *AppError {
	return newError(http.StatusUnauthorized, "UNAUTHORIZED", msg)
}

// Forbidden creates a 403.
func Forbidden(msg string) *AppError {
	return newError(http.StatusForbidden, "FORBIDDEN", msg)
}

// Conflict creates a 409 for duplicates and unique-constraint violations.
func Conflict(msg string) *AppError {
	return newError(http.StatusConflict, "CONFLICT", msg)
}

// ValidationError creates a 400 with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	appError := newError(http.StatusBadRequest, "VALIDATION_ERROR", msg)
	appError.Details = details
	return appError
}

// RateLimited creates a 429 telling the client when to retry.
func RateLimited(retryAfterSeconds int) *AppError {
	return newError(http.StatusTooManyRequests, "RATE_LIMITED",
		fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds))
}

// Unprocessable creates a 422 for well-formed but semantically invalid input.
func Unprocessable(msg string) *AppError {
	return newError(http.StatusUnprocessableEntity, "UNPROCESSABLE", msg)
}

// # Server Errors (5xx)

// Internal creates a 500 wrapping an unexpected server-side error. The
// cause is kept for logging and never reaches the client.
func Internal(cause error) *AppError {
	appError := newError(http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	appError.Cause = cause
	return appError
}

// ServiceUnavailable creates a 503, used while dependencies are down or
// the service is in maintenance.
func ServiceUnavailable(msg string) *AppError {
	return newError(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", msg)
}

// # Helpers

// IsAppError reports whether err's chain contains an [*AppError].
func IsAppError(err error) bool {
	var appError *AppError
	return errors.As(err, &appError)
}

// As extracts the [*AppError] from err's chain, nil when there is none.
func As(err error) *AppError {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError
	}
	return nil
}
