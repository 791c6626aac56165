package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// DefaultCookieName is used when SessionOptions.CookieName is empty.
const DefaultCookieName = "stratasite-session"

// Keys stored in the signed cookie. Everything else about the user is
// reloaded through the UserFetcher.
const (
	keyUserID     = "uid"
	keySignedInAt = "signed_in_at"
)

// minKeyLen is the shortest session key accepted in production.
const minKeyLen = 32

// weakKeyMarkers flag placeholder keys copied from sample configs.
var weakKeyMarkers = []string{
	"dev-only", "change-me", "changeme", "placeholder", "default",
	"example", "insecure", "test-key", "secret123", "password",
}

// SessionOptions configures the back-office session cookie.
type SessionOptions struct {
	Key        string        // signing key
	CookieName string        // defaults to DefaultCookieName
	Domain     string        // empty means the request host
	MaxAge     time.Duration // cookie lifetime
	Secure     bool          // production: HTTPS only, strong key required
}

// ConfigError reports an unusable session configuration.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return "session: " + e.Message }

// SessionManager issues and reads the back-office session cookie.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	logger  *zap.Logger
	fetcher UserFetcher
}

// NewSessionManager validates opts and builds the cookie store. A weak key
// is fatal when opts.Secure is set and only logged otherwise.
func NewSessionManager(opts SessionOptions, logger *zap.Logger) (*SessionManager, error) {
	if opts.Key == "" {
		return nil, &ConfigError{Message: "key is empty"}
	}
	if weak := weakKey(opts.Key); weak != "" {
		if opts.Secure {
			return nil, &ConfigError{Message: "key " + weak + "; use at least 32 random characters"}
		}
		logger.Warn("weak session key accepted outside production", zap.String("reason", weak))
	}
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}

	store := sessions.NewCookieStore([]byte(opts.Key))
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   opts.Domain,
		MaxAge:   int(opts.MaxAge.Seconds()),
		Secure:   opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	// securecookie also rejects cookies older than MaxAge on decode.
	store.MaxAge(store.Options.MaxAge)

	return &SessionManager{store: store, name: opts.CookieName, logger: logger}, nil
}

func weakKey(key string) string {
	if len(key) < minKeyLen {
		return "is shorter than 32 characters"
	}
	lower := strings.ToLower(key)
	for _, m := range weakKeyMarkers {
		if strings.Contains(lower, m) {
			return "looks like a placeholder"
		}
	}
	return ""
}

// CookieName returns the session cookie name.
func (sm *SessionManager) CookieName() string { return sm.name }

// SetUserFetcher installs the lookup used by LoadSessionUser. Without one
// no session resolves to a user.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// CreateSession signs u in by writing a fresh session cookie.
func (sm *SessionManager) CreateSession(w http.ResponseWriter, r *http.Request, u SessionUser) error {
	// A stale or foreign cookie still yields a fresh session here.
	sess, err := sm.store.Get(r, sm.name)
	if sess == nil {
		return err
	}
	sess.Values = map[any]any{
		keyUserID:     u.ID,
		keySignedInAt: time.Now().UTC().Unix(),
	}
	return sess.Save(r, w)
}

// DestroySession expires the session cookie.
func (sm *SessionManager) DestroySession(w http.ResponseWriter, r *http.Request) {
	sess, _ := sm.store.Get(r, sm.name)
	if sess == nil {
		return
	}
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		sm.logger.Warn("expire session cookie", zap.Error(err))
	}
}

// LoadSessionUser attaches the signed-in user to the request. A cookie
// whose user is missing or disabled is cleared.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			sm.logCookieError(r, err)
		}
		uid, _ := sess.Values[keyUserID].(string)
		if uid == "" || sm.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}

		u := sm.fetcher.FetchUser(r.Context(), uid)
		if u == nil {
			sm.logger.Info("session dropped: user missing or disabled",
				zap.String("user_id", uid),
				zap.String("path", r.URL.Path))
			sess.Values = map[any]any{}
			sess.Options.MaxAge = -1
			_ = sess.Save(r, w)
			next.ServeHTTP(w, r)
			return
		}
		if ts, ok := sess.Values[keySignedInAt].(int64); ok {
			u.SignedInAt = time.Unix(ts, 0).UTC()
		}
		next.ServeHTTP(w, withUser(r, u))
	})
}

// logCookieError logs an unreadable cookie at a level matching how
// suspicious the failure is. The request continues anonymously.
func (sm *SessionManager) logCookieError(r *http.Request, err error) {
	kind := cookieErrorKind(err)
	fields := []zap.Field{zap.String("kind", kind), zap.String("path", r.URL.Path)}
	switch kind {
	case "expired":
		sm.logger.Debug("session cookie expired", fields...)
	case "tampered":
		fields = append(fields, zap.String("remote_addr", r.RemoteAddr), zap.String("user_agent", r.UserAgent()))
		sm.logger.Warn("session cookie failed MAC check", fields...)
	case "undecodable":
		sm.logger.Info("session cookie unreadable", fields...)
	default:
		sm.logger.Error("session store error", append(fields, zap.Error(err))...)
	}
}

// cookieErrorKind sorts securecookie failures into expired, tampered,
// undecodable or backend. Key rotation shows up as tampered.
func cookieErrorKind(err error) string {
	var scErr securecookie.Error
	if !errors.As(err, &scErr) || !scErr.IsDecode() {
		return "backend"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "expired timestamp"):
		return "expired"
	case strings.Contains(msg, "mac") || strings.Contains(msg, "hash"):
		return "tampered"
	default:
		return "undecodable"
	}
}
