// Package jsonutil writes the JSON envelopes used by every /api handler.
//
// Errors are {"error": "..."}; field validation failures are
// {"errors": {"field": "..."}} with status 422.
package jsonutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// JSON encodes data with the given status. A nil data writes no body.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func OK(w http.ResponseWriter, data any)       { JSON(w, http.StatusOK, data) }
func Created(w http.ResponseWriter, data any)  { JSON(w, http.StatusCreated, data) }
func Accepted(w http.ResponseWriter, data any) { JSON(w, http.StatusAccepted, data) }

// NoContent answers 204 without a body or content type.
func NoContent(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) }

// Error writes {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func BadRequest(w http.ResponseWriter, message string)   { Error(w, http.StatusBadRequest, message) }
func Unauthorized(w http.ResponseWriter, message string) { Error(w, http.StatusUnauthorized, message) }
func Forbidden(w http.ResponseWriter, message string)    { Error(w, http.StatusForbidden, message) }
func NotFound(w http.ResponseWriter, message string)     { Error(w, http.StatusNotFound, message) }
func Conflict(w http.ResponseWriter, message string)     { Error(w, http.StatusConflict, message) }

// InternalError answers 500. Log the cause separately; message is shown
// to the client as is.
func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}

// TooManyRequests answers 429. When until is set, Retry-After carries the
// whole seconds left, never less than one.
func TooManyRequests(w http.ResponseWriter, until *time.Time, message string) {
	if until != nil {
		secs := int(time.Until(*until).Seconds()) + 1
		w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
	}
	Error(w, http.StatusTooManyRequests, message)
}

// ValidationError answers 422 with one message per offending field.
func ValidationError(w http.ResponseWriter, fields map[string]string) {
	JSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fields})
}

// Decode reads the request body into v.
func Decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// ErrInvalidJSON is the client-facing error for an unreadable body.
var ErrInvalidJSON = errors.New("Invalid JSON body.")

// DecodeObject reads the body as a JSON object so partial updates can tell
// an absent key from an explicit null. Arrays, scalars and null fail.
func DecodeObject(r *http.Request) (map[string]any, error) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload == nil {
		return nil, ErrInvalidJSON
	}
	return payload, nil
}

// Time formats a timestamp as RFC 3339.
func Time(t time.Time) string {
	return t.Format(time.RFC3339)
}

// TimePtr is Time for optional timestamps; nil stays nil.
func TimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := Time(*t)
	return &s
}
