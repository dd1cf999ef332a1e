// Package apperr defines the error kinds handlers translate into HTTP responses.
package apperr

import (
	"errors"
	"sort"
	"strings"
)

// ValidationError carries per-field messages, keyed by wire field name
type ValidationError struct {
	Fields map[string][]string
}

// Validation builds a ValidationError for a single field
func Validation(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {msg}}}
}

// Add appends a message for field
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Empty reports whether no field has a message
func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// AuthenticationError means a missing or invalid credential
type AuthenticationError struct{ Detail string }

func (e *AuthenticationError) Error() string { return e.Detail }

// AuthorizationError means a valid credential lacking role or ownership
type AuthorizationError struct{ Detail string }

func (e *AuthorizationError) Error() string { return e.Detail }

// NotFoundError means the id does not resolve for the caller
type NotFoundError struct{ Detail string }

func (e *NotFoundError) Error() string { return e.Detail }

// UpstreamError wraps a failure of the external risk provider
type UpstreamError struct{ Err error }

func (e *UpstreamError) Error() string { return "upstream: " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream wraps err unless it already is an UpstreamError
func Upstream(err error) error {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return &UpstreamError{Err: err}
}

func Unauthenticated(detail string) error { return &AuthenticationError{Detail: detail} }
func Forbidden(detail string) error       { return &AuthorizationError{Detail: detail} }
func NotFound(detail string) error        { return &NotFoundError{Detail: detail} }
