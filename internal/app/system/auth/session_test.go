package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const strongKey = "q7Vx2LmN9pR4sT8wY1zB5cF0hJ3kM6nP"

func newManager(t *testing.T) *SessionManager {
	t.Helper()
	sm, err := NewSessionManager(SessionOptions{Key: strongKey, CookieName: "test-session", MaxAge: time.Hour}, zap.NewNop())
	require.NoError(t, err)
	return sm
}

type stubFetcher map[string]SessionUser

func (f stubFetcher) FetchUser(_ context.Context, id string) *SessionUser {
	u, ok := f[id]
	if !ok {
		return nil
	}
	return &u
}

func cookiesOf(rec *httptest.ResponseRecorder) []*http.Cookie {
	return rec.Result().Cookies()
}

func withCookies(req *http.Request, cookies []*http.Cookie) *http.Request {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestNewSessionManager_Keys(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		secure  bool
		wantErr bool
	}{
		{"strong key in production", strongKey, true, false},
		{"strong key in development", strongKey, false, false},
		{"empty key", "", false, true},
		{"short key tolerated in development", "short", false, false},
		{"short key refused in production", "short", true, true},
		{"placeholder refused in production", "dev-only-session-key-not-for-production", true, true},
		{"change-me refused in production", "please-change-me-before-going-live-0123", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm, err := NewSessionManager(SessionOptions{Key: tt.key, Secure: tt.secure, MaxAge: time.Hour}, zap.NewNop())
			if tt.wantErr {
				var cfgErr *ConfigError
				assert.ErrorAs(t, err, &cfgErr)
				assert.Nil(t, sm)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultCookieName, sm.CookieName())
		})
	}
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newManager(t)
	id := primitive.NewObjectID().Hex()
	sm.SetUserFetcher(stubFetcher{id: {ID: id, Name: "Hélène", Email: "contact@example.fr", Role: "admin"}})

	login := httptest.NewRecorder()
	require.NoError(t, sm.CreateSession(login, httptest.NewRequest(http.MethodPost, "/api/login", nil), SessionUser{ID: id}))
	cookies := cookiesOf(login)
	require.NotEmpty(t, cookies)

	var seen *SessionUser
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = CurrentUser(r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), withCookies(httptest.NewRequest(http.MethodGet, "/api/admin/me", nil), cookies))

	require.NotNil(t, seen)
	assert.Equal(t, "contact@example.fr", seen.Email)
	assert.Equal(t, "Hélène", seen.Name)
	assert.WithinDuration(t, time.Now(), seen.SignedInAt, 5*time.Second)
}

func TestLoadSessionUser_DropsVanishedUser(t *testing.T) {
	sm := newManager(t)
	id := primitive.NewObjectID().Hex()

	login := httptest.NewRecorder()
	require.NoError(t, sm.CreateSession(login, httptest.NewRequest(http.MethodPost, "/api/login", nil), SessionUser{ID: id}))

	sm.SetUserFetcher(stubFetcher{})
	called := false
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, ok := CurrentUser(r)
		assert.False(t, ok)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withCookies(httptest.NewRequest(http.MethodGet, "/api/admin/me", nil), cookiesOf(login)))

	assert.True(t, called)
	var cleared bool
	for _, c := range cookiesOf(rec) {
		cleared = cleared || (c.Name == "test-session" && c.MaxAge < 0)
	}
	assert.True(t, cleared, "stale cookie should be expired")
}

func TestLoadSessionUser_ForeignCookieIsAnonymous(t *testing.T) {
	sm := newManager(t)
	sm.SetUserFetcher(stubFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "not-a-signed-value"})

	var ok bool
	sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = CurrentUser(r)
	})).ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, ok)
}

func TestDestroySession(t *testing.T) {
	sm := newManager(t)

	login := httptest.NewRecorder()
	require.NoError(t, sm.CreateSession(login, httptest.NewRequest(http.MethodPost, "/api/login", nil), SessionUser{ID: "abc"}))

	rec := httptest.NewRecorder()
	sm.DestroySession(rec, withCookies(httptest.NewRequest(http.MethodPost, "/api/logout", nil), cookiesOf(login)))

	var expired bool
	for _, c := range cookiesOf(rec) {
		expired = expired || (c.Name == "test-session" && c.MaxAge < 0)
	}
	assert.True(t, expired)
}

type decodeErr struct{ msg string }

func (e decodeErr) Error() string    { return e.msg }
func (e decodeErr) IsDecode() bool   { return true }
func (e decodeErr) IsUsage() bool    { return false }
func (e decodeErr) IsInternal() bool { return false }
func (e decodeErr) Cause() error     { return nil }

var _ securecookie.Error = decodeErr{}

func TestCookieErrorKind(t *testing.T) {
	assert.Equal(t, "expired", cookieErrorKind(decodeErr{"securecookie: expired timestamp"}))
	assert.Equal(t, "tampered", cookieErrorKind(decodeErr{"securecookie: the value is not valid (mac)"}))
	assert.Equal(t, "undecodable", cookieErrorKind(decodeErr{"securecookie: base64 decode failed"}))
	assert.Equal(t, "backend", cookieErrorKind(assert.AnError))
}

func TestSessionUser_UserID(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, oid, (&SessionUser{ID: oid.Hex()}).UserID())
	assert.True(t, (&SessionUser{ID: "nope"}).UserID().IsZero())
}
