// Package apperr defines the status-coded error taxonomy shared by all
// handlers and repositories. Domain checks return these directly; infra
// failures are translated into them at the storage boundary so callers never
// see raw driver errors.
package apperr

import (
	"errors"
	"net/http"
)

// Context carries optional machine-checkable remediation hints.
type Context struct {
	Field      string `json:"field,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Error is a status-coded application error.
type Error struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Context *Context `json:"context,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// WithContext returns a copy of e carrying the given context.
func (e *Error) WithContext(ctx Context) *Error {
	return &Error{Status: e.Status, Message: e.Message, Context: &ctx}
}

// New creates an error with an explicit status.
func New(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

// Validation is a 400 error for malformed or rejected input.
func Validation(msg string) *Error { return New(http.StatusBadRequest, msg) }

// Unauthorized is a 401 error for missing or invalid credentials.
func Unauthorized(msg string) *Error { return New(http.StatusUnauthorized, msg) }

// Forbidden is a 403 error for authenticated but disallowed access.
func Forbidden(msg string) *Error { return New(http.StatusForbidden, msg) }

// NotFound is a 404 error. Cross-tenant lookups report NotFound rather than
// Forbidden so resource existence does not leak across tenants.
func NotFound(msg string) *Error { return New(http.StatusNotFound, msg) }

// Conflict is a 409 error for state conflicts.
func Conflict(msg string) *Error { return New(http.StatusConflict, msg) }

// RateLimit is a 429 error.
func RateLimit(msg string) *Error { return New(http.StatusTooManyRequests, msg) }

// Database is a 500 error for failed storage operations.
func Database(msg string) *Error { return New(http.StatusInternalServerError, msg) }

// Internal is a generic 500 error.
func Internal(msg string) *Error { return New(http.StatusInternalServerError, msg) }

// Unavailable is a 503 error for unreachable backing services.
func Unavailable(msg string) *Error { return New(http.StatusServiceUnavailable, msg) }

// From converts any error into an *Error. Already-typed errors pass through;
// anything else becomes an opaque 500 so raw infra errors never reach clients.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("internal server error")
}

// StatusOf returns the HTTP status of err.
func StatusOf(err error) int {
	return From(err).Status
}
