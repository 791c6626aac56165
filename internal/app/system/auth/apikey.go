package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"go.uber.org/zap"
)

// RequireRoleOrAPIKey guards the admin API. A request passes when it carries
// "Authorization: Bearer <api-key>" matching apiKey, or when the session user
// has one of the allowed roles.
//
// An empty apiKey disables key authentication; a Bearer header with a wrong
// key is rejected outright rather than falling back to the session.
//
// Usage in routes.go:
//
//	r.Route("/api/admin", func(r chi.Router) {
//	    r.Use(sessionMgr.RequireRoleOrAPIKey(appCfg.APIKey, "admin"))
//	    ...
//	})
func (sm *SessionManager) RequireRoleOrAPIKey(apiKey string, allowed ...string) func(http.Handler) http.Handler {
	requireRole := sm.RequireRole(allowed...)

	return func(next http.Handler) http.Handler {
		roleGuard := requireRole(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				roleGuard.ServeHTTP(w, r)
				return
			}

			if apiKey == "" {
				sm.logger.Debug("API key presented but key auth is disabled",
					zap.String("path", r.URL.Path))
				jsonutil.Unauthorized(w, "Unauthorized.")
				return
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
				sm.logger.Warn("API request rejected: invalid API key",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr))
				jsonutil.Unauthorized(w, "Invalid API key.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
