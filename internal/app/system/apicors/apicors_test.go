package apicors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusTeapot)
})

func preflight(origin string) *http.Request {
	req := httptest.NewRequest(http.MethodOptions, "/api/contact", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", "POST")
	return req
}

func TestMiddleware_AnyOrigin(t *testing.T) {
	h := Middleware()(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, preflight("https://example.com"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Retry-After")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pages/home", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMiddleware_BareOptionsReachesHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	Middleware()(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/pages/home", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMiddlewareWithOrigins(t *testing.T) {
	h := MiddlewareWithOrigins("https://helene-massage.fr/", " https://admin.helene-massage.fr")(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, preflight("https://admin.helene-massage.fr"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://admin.helene-massage.fr", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, preflight("https://helene-massage.fr"))
	assert.Equal(t, "https://helene-massage.fr", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, preflight("https://evil.example"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestMiddlewareWithOrigins_Wildcard(t *testing.T) {
	rec := httptest.NewRecorder()
	MiddlewareWithOrigins("*")(okHandler).ServeHTTP(rec, preflight("https://anything.example"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
