// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"errors"
	"net/http"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	"github.com/dalemusser/stratasite/internal/app/features/login"
	userstore "github.com/dalemusser/stratasite/internal/app/store/users"
	"github.com/dalemusser/stratasite/internal/app/system/auth"
	"github.com/dalemusser/stratasite/internal/app/system/authutil"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgUnauthorized      = "Unauthorized."
	msgWrongPassword     = "Current password is incorrect."
	msgPasswordsMismatch = "New passwords do not match."
	msgPasswordReused    = "New password cannot be the same as your current password."
	msgPasswordUpdated   = "Password updated."
)

// Handler serves the signed-in admin's own account.
type Handler struct {
	userStore *userstore.Store
	errLog    *errorsfeature.ErrorLogger
	logger    *zap.Logger
}

// NewHandler creates a new profile Handler.
func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		userStore: userstore.New(db),
		errLog:    errLog,
		logger:    logger,
	}
}

// Routes returns a chi.Router with profile routes mounted. It is mounted at
// /api/admin/me behind the admin role check.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.showMe)
	r.Put("/password", h.handleChangePassword)
	return r
}

// showMe returns the session user. API key callers have no session user.
func (h *Handler) showMe(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, msgUnauthorized)
		return
	}
	jsonutil.OK(w, login.NewMeResponse(su))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, msgUnauthorized)
		return
	}

	var in changePasswordRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, jsonutil.ErrInvalidJSON.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.userStore.GetByID(ctx, su.UserID())
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.Unauthorized(w, msgUnauthorized)
		return
	}
	if err != nil {
		h.errLog.Internal(w, r, "failed to load user", err)
		return
	}

	if !authutil.CheckPassword(in.CurrentPassword, user.PasswordHash) {
		jsonutil.ValidationError(w, map[string]string{"currentPassword": msgWrongPassword})
		return
	}
	if err := authutil.ValidatePassword(in.NewPassword); err != nil {
		jsonutil.ValidationError(w, map[string]string{"newPassword": err.Error()})
		return
	}
	if in.NewPassword != in.ConfirmPassword {
		jsonutil.ValidationError(w, map[string]string{"confirmPassword": msgPasswordsMismatch})
		return
	}
	if authutil.CheckPassword(in.NewPassword, user.PasswordHash) {
		jsonutil.ValidationError(w, map[string]string{"newPassword": msgPasswordReused})
		return
	}

	hash, err := authutil.HashPassword(in.NewPassword)
	if err != nil {
		h.errLog.Internal(w, r, "failed to hash password", err)
		return
	}
	if err := h.userStore.UpdatePassword(ctx, user.ID, hash); err != nil {
		h.errLog.Internal(w, r, "failed to update password", err)
		return
	}

	h.logger.Info("admin changed password", zap.String("user_id", user.ID.Hex()))
	jsonutil.OK(w, map[string]any{"success": true, "message": msgPasswordUpdated})
}
