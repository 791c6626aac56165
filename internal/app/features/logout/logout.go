// Package logout ends back-office sessions.
package logout

import (
	"net/http"
	"time"

	"github.com/dalemusser/stratasite/internal/app/system/auditlog"
	"github.com/dalemusser/stratasite/internal/app/system/auth"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	sessions *auth.SessionManager
	audit    *auditlog.Logger
	logger   *zap.Logger
}

// NewHandler accepts a nil audit logger.
func NewHandler(sessions *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{sessions: sessions, audit: audit, logger: logger}
}

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.logout)
	return r
}

// logout always succeeds and always expires the cookie, signed in or not.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.audit.Logout(r, u.UserID())
		fields := []zap.Field{zap.String("user_id", u.ID)}
		if !u.SignedInAt.IsZero() {
			fields = append(fields, zap.Duration("session_age", time.Since(u.SignedInAt).Round(time.Second)))
		}
		h.logger.Info("admin signed out", fields...)
	}
	h.sessions.DestroySession(w, r)
	jsonutil.OK(w, map[string]bool{"success": true})
}
