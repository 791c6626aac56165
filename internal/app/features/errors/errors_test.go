package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["error"]
}

func TestFallbacks(t *testing.T) {
	h := NewHandler()
	r := chi.NewRouter()
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)
	r.Get("/api/pages", func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, `No route found for "DELETE /api/nope".`, errorBody(t, rec))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/pages", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed.", errorBody(t, rec))
}

func TestInternal_HidesCause(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	errLog := NewErrorLogger(zap.New(core))

	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errLog.Internal(w, r, "failed to create page", errors.New("connection reset"), zap.String("slug", "x"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/pages", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, InternalMessage, errorBody(t, rec))
	assert.NotContains(t, rec.Body.String(), "connection reset")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "failed to create page", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "x", fields["slug"])
	assert.Equal(t, "/api/admin/pages", fields["path"])
	assert.NotEmpty(t, fields["request_id"])
}
