package contentops

import (
	"errors"
	"sort"
	"strings"
)

// Error kinds. Every error returned by Service for a rejected request wraps
// exactly one of these; use errors.Is to classify.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// Error is a classified failure carrying the message shown to the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func notFound(msg string) error  { return &Error{Kind: ErrNotFound, Message: msg} }
func conflict(msg string) error  { return &Error{Kind: ErrConflict, Message: msg} }
func forbidden(msg string) error { return &Error{Kind: ErrForbidden, Message: msg} }
func invalid(msg string) error   { return &Error{Kind: ErrInvalidInput, Message: msg} }

// Message returns the caller-facing message of err, or "" when err was not
// produced by this package.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// ValidationError reports field-level problems, keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
