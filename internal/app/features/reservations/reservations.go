// Package reservations accepts booking requests from the public site and lets
// admins triage them.
package reservations

import (
	"net/http"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	reservationstore "github.com/dalemusser/stratasite/internal/app/store/reservations"
	servicestore "github.com/dalemusser/stratasite/internal/app/store/services"
	settingsstore "github.com/dalemusser/stratasite/internal/app/store/settings"
	"github.com/dalemusser/stratasite/internal/app/system/auditlog"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/mailer"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgNotFound        = "Reservation request not found."
	msgServiceNotFound = "Service not found."
	msgStatusRequired  = "Status is required."
	msgStatusInvalid   = "Invalid status."
)

type Handler struct {
	store         *reservationstore.Store
	serviceStore  *servicestore.Store
	settingsStore *settingsstore.Store
	mail          mailer.Sender
	errLog        *errorsfeature.ErrorLogger
	auditLogger   *auditlog.Logger
	logger        *zap.Logger
}

// NewHandler builds the handler. mail may be nil, in which case no
// notification is sent.
func NewHandler(db *mongo.Database, mail mailer.Sender, errLog *errorsfeature.ErrorLogger, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		store:         reservationstore.New(db),
		serviceStore:  servicestore.New(db),
		settingsStore: settingsstore.New(db),
		mail:          mail,
		errLog:        errLog,
		auditLogger:   auditLogger,
		logger:        logger,
	}
}

// PublicRoutes is mounted at /api/reservation-requests.
func PublicRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.create)
	return r
}

// AdminRoutes is mounted at /api/admin/reservation-requests.
func AdminRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/count-new", h.countNew)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.updateStatus)
	r.Put("/{id}/status", h.updateStatus)
	return r
}

type serviceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type reservationResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Inscription *string     `json:"inscription"`
	Phone       *string     `json:"phone"`
	Message     string      `json:"message"`
	Status      string      `json:"status"`
	Service     *serviceRef `json:"service"`
	CreatedAt   string      `json:"createdAt"`
	ReadAt      *string     `json:"readAt"`
}

func newReservationResponse(req models.ReservationRequest) reservationResponse {
	out := reservationResponse{
		ID:          req.ID.Hex(),
		Name:        req.Name,
		Email:       req.Email,
		Inscription: req.Inscription,
		Phone:       req.Phone,
		Message:     req.Message,
		Status:      req.Status,
		CreatedAt:   jsonutil.Time(req.CreatedAt),
		ReadAt:      jsonutil.TimePtr(req.ReadAt),
	}
	if req.ServiceID != nil {
		out.Service = &serviceRef{ID: req.ServiceID.Hex(), Name: req.ServiceName}
	}
	return out
}
