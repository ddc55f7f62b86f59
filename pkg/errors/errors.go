package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Stable error codes surfaced to callers. Each failure class maps to exactly
// one code so clients can distinguish "fix your input", "try later",
// "already done" and "system problem" without parsing messages.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeNotOwner           = "NOT_OWNER"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeRateLimited        = "RATE_LIMITED"
	CodeUpstreamFailure    = "UPSTREAM_FAILURE"
	CodePersistenceFailure = "PERSISTENCE_FAILURE"
	CodeInternal           = "INTERNAL_ERROR"
)

// AppError represents an application error with HTTP status code and a stable
// error code. None of these are retried automatically by the core; retry
// guidance is carried in Details where it applies.
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// New creates a new application error
func New(statusCode int, code string, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// NewValidation creates a 400 error for missing or malformed input.
func NewValidation(message string) *AppError {
	return New(http.StatusBadRequest, CodeValidation, message)
}

// NewUnauthenticated creates a 401 error for requests without a valid session.
func NewUnauthenticated(message string) *AppError {
	return New(http.StatusUnauthorized, CodeUnauthenticated, message)
}

// NewNotOwner creates a 403 error for actions on another user's character.
func NewNotOwner(message string) *AppError {
	return New(http.StatusForbidden, CodeNotOwner, message)
}

// NewNotFound creates a 404 error for unknown users or characters.
func NewNotFound(message string) *AppError {
	return New(http.StatusNotFound, CodeNotFound, message)
}

// NewConflict creates a 409 error for uniqueness violations such as a double
// vote. Terminal: callers must not retry.
func NewConflict(message string) *AppError {
	return New(http.StatusConflict, CodeConflict, message)
}

// NewRateLimited creates a 429 error carrying the remaining wait so the
// caller can tell the user when to try again.
func NewRateLimited(message string, retryAfter time.Duration) *AppError {
	e := New(http.StatusTooManyRequests, CodeRateLimited, message)
	e.Details = map[string]any{
		"retry_after_seconds": int(retryAfter.Round(time.Second).Seconds()),
	}
	return e
}

// NewUpstreamFailure creates a 502 error for a failed or timed-out external
// media or language-model call. The core never fabricates a fallback result.
func NewUpstreamFailure(message string) *AppError {
	return New(http.StatusBadGateway, CodeUpstreamFailure, message)
}

// NewPersistenceFailure creates a 500 error for a storage write that failed
// after an upstream call already succeeded. The most serious class: it can
// strand a paid external side effect with no stored record.
func NewPersistenceFailure(message string) *AppError {
	return New(http.StatusInternalServerError, CodePersistenceFailure, message)
}

// NewInternal creates a generic 500 error.
func NewInternal(message string) *AppError {
	return New(http.StatusInternalServerError, CodeInternal, message)
}

// FromError converts a standard error to an AppError. If the error already is
// (or wraps) an AppError it is returned as-is, otherwise it is wrapped as an
// internal error.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return NewInternal(fmt.Sprintf("An unexpected error occurred: %s", err.Error()))
}

// Is reports whether err carries the given stable code.
func Is(err error, code string) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}

// StatusCode extracts the HTTP status from an error, 500 when unknown.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
