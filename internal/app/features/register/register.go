// internal/app/features/register/register.go
package register

import (
	"context"
	"errors"
	"net/http"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	userstore "github.com/dalemusser/stratasite/internal/app/store/users"
	"github.com/dalemusser/stratasite/internal/app/system/auditlog"
	"github.com/dalemusser/stratasite/internal/app/system/authutil"
	"github.com/dalemusser/stratasite/internal/app/system/inputval"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/normalize"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgRegistrationClosed = "Registration is disabled once an admin account exists. Use backoffice login."
	msgCreated            = "Admin account created. You can now login."
	msgEmailTaken         = "An account with this email already exists."
)

// Handler bootstraps the first admin account. Once any account exists the
// endpoint refuses further registrations.
type Handler struct {
	userStore   *userstore.Store
	errLog      *errorsfeature.ErrorLogger
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		userStore:   userstore.New(db),
		errLog:      errLog,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.handleRegister)
	return r
}

type registerRequest struct {
	Name     string `json:"name" validate:"required" label:"Name"`
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password"`
}

type registerResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, jsonutil.ErrInvalidJSON.Error())
		return
	}
	in.Name = normalize.Name(in.Name)
	in.Email = normalize.Email(in.Email)

	fields := map[string]string{}
	if res := inputval.Validate(in); res.HasErrors() {
		fields = res.Fields()
	}
	if len(in.Password) < authutil.MinPasswordLength {
		fields["password"] = authutil.ErrPasswordTooShort.Error()
	}
	if len(fields) > 0 {
		jsonutil.ValidationError(w, fields)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.userStore.Count(ctx)
	if err != nil {
		h.errLog.Internal(w, r, "failed to count users", err)
		return
	}
	if n > 0 {
		jsonutil.Forbidden(w, msgRegistrationClosed)
		return
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		h.errLog.Internal(w, r, "failed to hash password", err)
		return
	}

	u, err := h.userStore.Create(ctx, userstore.CreateInput{
		FullName:     in.Name,
		Email:        in.Email,
		Role:         "admin",
		PasswordHash: hash,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		jsonutil.ValidationError(w, map[string]string{"email": msgEmailTaken})
		return
	}
	if err != nil {
		h.errLog.Internal(w, r, "failed to create admin", err)
		return
	}

	h.logger.Info("admin account registered", zap.String("email", u.Email))
	h.auditLogger.AdminRegistered(r, u.ID, u.Email)

	jsonutil.Created(w, registerResponse{
		ID:      u.ID.Hex(),
		Email:   u.Email,
		Name:    u.FullName,
		Message: msgCreated,
	})
}
