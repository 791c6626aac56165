package reservations

import (
	"context"
	"errors"
	"net/http"
	"strings"

	servicestore "github.com/dalemusser/stratasite/internal/app/store/services"
	"github.com/dalemusser/stratasite/internal/app/system/inputval"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/mailer"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type createRequest struct {
	Name    string `json:"name" validate:"required" label:"Name"`
	Email   string `json:"email" validate:"required,email" label:"Email"`
	Message string `json:"message" validate:"required" label:"Message"`
}

type createResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, err := jsonutil.DecodeObject(r)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	in := createRequest{
		Name:    strings.TrimSpace(cast.ToString(p["name"])),
		Email:   strings.TrimSpace(cast.ToString(p["email"])),
		Message: strings.TrimSpace(cast.ToString(p["message"])),
	}
	fields := map[string]string{}
	if res := inputval.Validate(in); res.HasErrors() {
		fields = res.Fields()
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var svc *models.Service
	if raw := strings.TrimSpace(cast.ToString(p["serviceId"])); raw != "" {
		found, err := h.lookupService(ctx, raw)
		if err != nil {
			h.errLog.Internal(w, r, "failed to load service", err)
			return
		}
		if found == nil {
			fields["serviceId"] = msgServiceNotFound
		}
		svc = found
	}

	if len(fields) > 0 {
		jsonutil.ValidationError(w, fields)
		return
	}

	req := models.ReservationRequest{
		Name:        in.Name,
		Email:       in.Email,
		Message:     in.Message,
		Phone:       optionalText(p, "phone"),
		Inscription: optionalText(p, "inscription"),
	}
	if svc != nil {
		req.ServiceID = &svc.ID
		req.ServiceName = svc.Name
	}

	saved, err := h.store.Create(ctx, req)
	if err != nil {
		h.errLog.Internal(w, r, "failed to store reservation request", err)
		return
	}

	h.logger.Info("reservation request received",
		zap.String("id", saved.ID.Hex()),
		zap.String("email", saved.Email))
	h.notify(ctx, saved)

	jsonutil.Created(w, createResponse{
		ID:        saved.ID.Hex(),
		Status:    saved.Status,
		CreatedAt: jsonutil.Time(saved.CreatedAt),
	})
}

// lookupService resolves a serviceId; an id that is malformed or unknown
// yields nil without error.
func (h *Handler) lookupService(ctx context.Context, raw string) (*models.Service, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, nil
	}
	svc, err := h.serviceStore.GetByID(ctx, id)
	if errors.Is(err, servicestore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// notify mails the booking address. Delivery failures never fail the request.
func (h *Handler) notify(ctx context.Context, req models.ReservationRequest) {
	if h.mail == nil {
		return
	}
	settings, err := h.settingsStore.Get(ctx)
	if err != nil {
		h.logger.Warn("reservation notification skipped: settings unavailable", zap.Error(err))
		return
	}

	data := mailer.ReservationEmailData{
		SiteName:    settings.GeneralOrDefault().SiteName,
		Name:        req.Name,
		Email:       req.Email,
		Message:     req.Message,
		ServiceName: req.ServiceName,
		CreatedAt:   jsonutil.Time(req.CreatedAt),
	}
	if req.Phone != nil {
		data.Phone = *req.Phone
	}
	if req.Inscription != nil {
		data.Inscription = *req.Inscription
	}
	subject, text, html := mailer.ReservationEmail(data)

	err = h.mail.Send(mailer.Email{
		To:       settings.BookingOrDefault().NotificationEmail,
		ReplyTo:  req.Email,
		Subject:  subject,
		TextBody: text,
		HTMLBody: html,
	})
	if err != nil && !errors.Is(err, mailer.ErrDisabled) {
		h.logger.Warn("reservation notification failed", zap.String("id", req.ID.Hex()), zap.Error(err))
	}
}

// optionalText returns the trimmed value of key, or nil when it is absent,
// null or blank.
func optionalText(p map[string]any, key string) *string {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return nil
	}
	return &s
}
