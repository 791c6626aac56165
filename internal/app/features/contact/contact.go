// Package contact handles the public contact form: it validates the message,
// applies a per-IP rate limit and mails the site owner.
package contact

import (
	"context"
	"errors"
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	"github.com/dalemusser/stratasite/internal/app/store/ratelimit"
	settingsstore "github.com/dalemusser/stratasite/internal/app/store/settings"
	"github.com/dalemusser/stratasite/internal/app/system/inputval"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/mailer"
	"github.com/dalemusser/stratasite/internal/app/system/network"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgAccepted    = "Votre message a bien ete envoye."
	msgRateLimited = "Trop de messages envoyes. Veuillez reessayer plus tard."
)

type Handler struct {
	settingsStore *settingsstore.Store
	limiter       *ratelimit.Store // nil disables rate limiting
	mail          mailer.Sender    // nil drops notifications
	errLog        *errorsfeature.ErrorLogger
	logger        *zap.Logger
}

func NewHandler(db *mongo.Database, limiter *ratelimit.Store, mail mailer.Sender, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		settingsStore: settingsstore.New(db),
		limiter:       limiter,
		mail:          mail,
		errLog:        errLog,
		logger:        logger,
	}
}

// Routes is mounted at /api/contact.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.submit)
	return r
}

type contactRequest struct {
	Name    string `json:"name" validate:"required" msg:"required=Le nom est requis."`
	Email   string `json:"email" validate:"required,email" msg:"required=L'email est requis.|email=Format d'email invalide."`
	Message string `json:"message" validate:"required" msg:"required=Le message est requis."`
	Phone   string `json:"phone"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ip := network.GetClientIP(r)
	if h.limiter != nil {
		if allowed, _, lockedUntil := h.limiter.CheckAllowed(ctx, ip); !allowed {
			h.logger.Warn("contact form rate limited", zap.String("ip", ip))
			jsonutil.TooManyRequests(w, lockedUntil, msgRateLimited)
			return
		}
	}

	p, err := jsonutil.DecodeObject(r)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	in := contactRequest{
		Name:    strings.TrimSpace(cast.ToString(p["name"])),
		Email:   strings.TrimSpace(cast.ToString(p["email"])),
		Message: strings.TrimSpace(cast.ToString(p["message"])),
		Phone:   strings.TrimSpace(cast.ToString(p["phone"])),
	}
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.ValidationError(w, res.Fields())
		return
	}

	if h.limiter != nil {
		h.limiter.Record(ctx, ip)
	}

	h.notify(ctx, in)
	h.logger.Info("contact request received",
		zap.String("name", in.Name),
		zap.String("email", in.Email),
		zap.String("phone", in.Phone))

	jsonutil.Accepted(w, map[string]string{
		"status":  "accepted",
		"message": msgAccepted,
	})
}

// notify mails the contact address from settings with the visitor as
// Reply-To. Failures are logged and never reach the visitor.
func (h *Handler) notify(ctx context.Context, in contactRequest) {
	if h.mail == nil {
		return
	}
	settings, err := h.settingsStore.Get(ctx)
	if err != nil {
		h.logger.Error("contact notification skipped: settings unavailable", zap.Error(err))
		return
	}

	subject, text, html := mailer.ContactEmail(mailer.ContactEmailData{
		SiteName: settings.GeneralOrDefault().SiteName,
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Message:  in.Message,
	})
	err = h.mail.Send(mailer.Email{
		To:       settings.ContactOrDefault().Email,
		ReplyTo:  in.Email,
		Subject:  subject,
		TextBody: text,
		HTMLBody: html,
	})
	if err != nil && !errors.Is(err, mailer.ErrDisabled) {
		h.logger.Error("failed to send contact notification",
			zap.String("name", in.Name),
			zap.String("email", in.Email),
			zap.Error(err))
	}
}
