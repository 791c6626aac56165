// internal/app/features/login/login.go
package login

import (
	"context"
	"errors"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	"github.com/dalemusser/stratasite/internal/app/store/audit"
	"github.com/dalemusser/stratasite/internal/app/store/ratelimit"
	userstore "github.com/dalemusser/stratasite/internal/app/store/users"
	"github.com/dalemusser/stratasite/internal/app/system/auditlog"
	"github.com/dalemusser/stratasite/internal/app/system/auth"
	"github.com/dalemusser/stratasite/internal/app/system/authutil"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/ledger"
	"github.com/dalemusser/stratasite/internal/app/system/normalize"
	"github.com/dalemusser/stratasite/internal/app/system/status"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgInvalidCredentials = "Invalid credentials."
	msgMissingFields      = "Email and password are required."
	msgTooManyAttempts    = "Too many login attempts. Please try again later."
)

// Handler provides the JSON login endpoint.
type Handler struct {
	userStore      *userstore.Store
	rateLimitStore *ratelimit.Store // nil if rate limiting disabled
	sessionMgr     *auth.SessionManager
	errLog         *errorsfeature.ErrorLogger
	auditLogger    *auditlog.Logger
	logger         *zap.Logger
	now            func() time.Time
}

// NewHandler creates a new login Handler.
// rateLimitStore can be nil to disable rate limiting.
func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	rateLimitStore *ratelimit.Store,
	errLog *errorsfeature.ErrorLogger,
	auditLogger *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		userStore:      userstore.New(db),
		rateLimitStore: rateLimitStore,
		sessionMgr:     sessionMgr,
		errLog:         errLog,
		auditLogger:    auditLogger,
		logger:         logger,
		now:            time.Now,
	}
}

// Routes returns a chi.Router with the login route mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.handleLogin)
	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MeResponse is the signed-in admin as returned by login and /api/admin/me.
type MeResponse struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// NewMeResponse builds the response for a session user.
func NewMeResponse(u *auth.SessionUser) MeResponse {
	return MeResponse{ID: u.ID, Email: u.Email, Name: u.Name, Roles: models.SecurityRoles(u.Role)}
}

// handleLogin checks email and password and opens a session.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, jsonutil.ErrInvalidJSON.Error())
		return
	}
	email := normalize.Email(in.Email)
	if email == "" || in.Password == "" {
		jsonutil.BadRequest(w, msgMissingFields)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if h.rateLimitStore != nil {
		allowed, _, lockedUntil := h.rateLimitStore.CheckAllowed(ctx, email)
		if !allowed {
			h.auditLogger.LoginFailed(r, nil, audit.EventLoginRateLimited, email)
			jsonutil.TooManyRequests(w, lockedUntil, msgTooManyAttempts)
			return
		}
	}

	user, err := h.userStore.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.reject(w, r, ctx, nil, audit.EventLoginFailedUserNotFound, email)
		return
	}
	if err != nil {
		h.errLog.Internal(w, r, "database error during login lookup", err)
		return
	}

	if !status.CanSignIn(normalize.Status(user.Status)) {
		h.reject(w, r, ctx, &user.ID, audit.EventLoginFailedUserDisabled, email)
		return
	}
	if user.PasswordHash == "" || !authutil.CheckPassword(in.Password, user.PasswordHash) {
		h.reject(w, r, ctx, &user.ID, audit.EventLoginFailedWrongPassword, email)
		return
	}

	if h.rateLimitStore != nil {
		if err := h.rateLimitStore.ClearOnSuccess(ctx, email); err != nil {
			h.logger.Warn("failed to clear login attempts", zap.Error(err))
		}
	}
	if err := h.userStore.TouchLastLogin(ctx, user.ID, h.now()); err != nil {
		h.logger.Warn("failed to record last login", zap.String("user_id", user.ID.Hex()), zap.Error(err))
	}

	su := auth.SessionUser{ID: user.ID.Hex(), Name: user.FullName, Email: user.Email, Role: user.Role}
	if err := h.sessionMgr.CreateSession(w, r, su); err != nil {
		h.errLog.Internal(w, r, "failed to create session", err)
		return
	}

	h.auditLogger.LoginSuccess(r, user.ID, user.Email)
	jsonutil.OK(w, NewMeResponse(&su))
}

// reject records the failed attempt and answers with a generic 401 so the
// response does not reveal which check failed.
func (h *Handler) reject(w http.ResponseWriter, r *http.Request, ctx context.Context, userID *primitive.ObjectID, eventType, email string) {
	if h.rateLimitStore != nil {
		if lockedOut, _ := h.rateLimitStore.Record(ctx, email); lockedOut {
			h.logger.Warn("login locked out", zap.String("email", email))
		}
	}
	h.auditLogger.LoginFailed(r, userID, eventType, email)
	ledger.SetErrorClass(r.Context(), "bad_credentials")
	jsonutil.Unauthorized(w, msgInvalidCredentials)
}
