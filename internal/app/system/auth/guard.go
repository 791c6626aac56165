package auth

import (
	"net/http"

	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/normalize"
	"go.uber.org/zap"
)

// RequireSignedIn answers 401 unless a user is attached to the request.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			jsonutil.Unauthorized(w, "Unauthorized.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole answers 401 for anonymous callers and 403 for users whose
// role is not among allowed. Roles compare after normalization.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	roles := make(map[string]bool, len(allowed))
	for _, role := range allowed {
		roles[normalize.Role(role)] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			switch {
			case !ok:
				jsonutil.Unauthorized(w, "Unauthorized.")
			case !roles[normalize.Role(u.Role)]:
				sm.logger.Info("admin route refused for role",
					zap.String("user_id", u.ID),
					zap.String("role", u.Role),
					zap.String("path", r.URL.Path))
				jsonutil.Forbidden(w, "Forbidden.")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
