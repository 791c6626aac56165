package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/stratasite/internal/app/system/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser is the signed-in user injected by WithUser.
type TestUser = auth.SessionUser

// AdminUser returns a fresh admin with a random id. The id does not need
// to exist in the database unless the handler looks the user up.
func AdminUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Admin Test",
		Email: "admin@example.test",
		Role:  "admin",
	}
}

// WithUser attaches u to r as if the session middleware had run.
func WithUser(r *http.Request, u TestUser) *http.Request {
	return auth.WithTestUser(r, &u)
}

func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

func NewAuthenticatedRequest(method, target string, u TestUser) *http.Request {
	return WithUser(NewRequest(method, target), u)
}

// NewJSONRequest encodes body as JSON. A string is sent as is so tests can
// post malformed payloads; nil sends an empty body.
func NewJSONRequest(t testing.TB, method, target string, body any) *http.Request {
	t.Helper()
	var rd io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err, "encode request body")
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ResponseRecorder adds assertions to httptest.ResponseRecorder.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

func (r *ResponseRecorder) AssertStatus(t assert.TestingT, want int) bool {
	return assert.Equal(t, want, r.Code, "status (body: %s)", r.Body.String())
}

func (r *ResponseRecorder) AssertContains(t assert.TestingT, want string) bool {
	return assert.Contains(t, r.Body.String(), want)
}

// DecodeJSON parses the body as a JSON object and fails the test otherwise.
func (r *ResponseRecorder) DecodeJSON(t testing.TB) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(r.Body.Bytes(), &out), "body: %s", r.Body.String())
	return out
}
