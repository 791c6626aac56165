// Package services serves the treatment and price catalog: a public list and
// the admin CRUD endpoints.
package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	"github.com/dalemusser/stratasite/internal/app/store/audit"
	servicestore "github.com/dalemusser/stratasite/internal/app/store/services"
	"github.com/dalemusser/stratasite/internal/app/system/auditlog"
	"github.com/dalemusser/stratasite/internal/app/system/inputval"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgNotFound         = "Service not found."
	msgPricesNotAnArray = "Prices must be an array."
)

type Handler struct {
	store       *servicestore.Store
	errLog      *errorsfeature.ErrorLogger
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		store:       servicestore.New(db),
		errLog:      errLog,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// PublicRoutes is mounted at /api/services.
func PublicRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.listPublic)
	return r
}

// AdminRoutes is mounted at /api/admin/services.
func AdminRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.update)
	r.Post("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	return r
}

type publicService struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Prices      []any  `json:"prices"`
	Highlight   bool   `json:"highlight"`
	SortOrder   int    `json:"sortOrder"`
}

type adminService struct {
	publicService
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func newPublicService(s models.Service) publicService {
	prices := s.Prices
	if prices == nil {
		prices = []any{}
	}
	return publicService{
		ID:          s.ID.Hex(),
		Category:    s.Category,
		Name:        s.Name,
		Description: s.Description,
		Prices:      prices,
		Highlight:   s.Highlight,
		SortOrder:   s.SortOrder,
	}
}

func newAdminService(s models.Service) adminService {
	return adminService{
		publicService: newPublicService(s),
		CreatedAt:     jsonutil.Time(s.CreatedAt),
		UpdatedAt:     jsonutil.Time(s.UpdatedAt),
	}
}

func (h *Handler) listPublic(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.store.List(ctx)
	if err != nil {
		h.errLog.Internal(w, r, "failed to list services", err)
		return
	}
	items := make([]publicService, 0, len(list))
	for _, s := range list {
		items = append(items, newPublicService(s))
	}
	jsonutil.OK(w, map[string]any{"items": items})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.store.List(ctx)
	if err != nil {
		h.errLog.Internal(w, r, "failed to list services", err)
		return
	}
	items := make([]adminService, 0, len(list))
	for _, s := range list {
		items = append(items, newAdminService(s))
	}
	jsonutil.OK(w, map[string]any{"items": items})
}

// serviceFields are the required text fields of a service. Labels give the
// "<Label> is required." messages.
type serviceFields struct {
	Category    string `json:"category" validate:"required" label:"Category"`
	Name        string `json:"name" validate:"required" label:"Name"`
	Description string `json:"description" validate:"required" label:"Description"`
}

// validate checks payload. With partial set only the keys present are checked.
func validate(p map[string]any, partial bool) map[string]string {
	f := serviceFields{
		Category:    strings.TrimSpace(cast.ToString(p["category"])),
		Name:        strings.TrimSpace(cast.ToString(p["name"])),
		Description: strings.TrimSpace(cast.ToString(p["description"])),
	}
	errs := map[string]string{}
	if res := inputval.Validate(f); res.HasErrors() {
		for field, msg := range res.Fields() {
			if _, present := p[field]; !partial || present {
				errs[field] = msg
			}
		}
	}
	if _, present := p["prices"]; !partial || present {
		if _, ok := p["prices"].([]any); !ok {
			errs["prices"] = msgPricesNotAnArray
		}
	}
	return errs
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, err := jsonutil.DecodeObject(r)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	if errs := validate(p, false); len(errs) > 0 {
		jsonutil.ValidationError(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	svc, err := h.store.Create(ctx, servicestore.CreateInput{
		Category:    strings.TrimSpace(cast.ToString(p["category"])),
		Name:        strings.TrimSpace(cast.ToString(p["name"])),
		Description: strings.TrimSpace(cast.ToString(p["description"])),
		Prices:      p["prices"].([]any),
		Highlight:   cast.ToBool(p["highlight"]),
		SortOrder:   cast.ToInt(p["sortOrder"]),
	})
	if err != nil {
		h.errLog.Internal(w, r, "failed to create service", err)
		return
	}

	h.auditLogger.Admin(r, audit.EventServiceCreated, map[string]string{"service_id": svc.ID.Hex(), "name": svc.Name})
	jsonutil.Created(w, newAdminService(svc))
}

// serviceID parses the {id} parameter; a malformed id is answered as unknown.
func serviceID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgNotFound)
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := serviceID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	svc, err := h.store.GetByID(ctx, id)
	if errors.Is(err, servicestore.ErrNotFound) {
		jsonutil.NotFound(w, msgNotFound)
		return
	}
	if err != nil {
		h.errLog.Internal(w, r, "failed to load service", err)
		return
	}
	jsonutil.OK(w, newAdminService(svc))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := serviceID(w, r)
	if !ok {
		return
	}
	p, err := jsonutil.DecodeObject(r)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	if errs := validate(p, true); len(errs) > 0 {
		jsonutil.ValidationError(w, errs)
		return
	}

	in := servicestore.UpdateInput{
		Category:    trimmedField(p, "category"),
		Name:        trimmedField(p, "name"),
		Description: trimmedField(p, "description"),
	}
	if prices, ok := p["prices"].([]any); ok {
		in.Prices = prices
	}
	if v, ok := p["highlight"]; ok {
		b := cast.ToBool(v)
		in.Highlight = &b
	}
	if v, ok := p["sortOrder"]; ok {
		n := cast.ToInt(v)
		in.SortOrder = &n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	svc, err := h.store.Update(ctx, id, in)
	if errors.Is(err, servicestore.ErrNotFound) {
		jsonutil.NotFound(w, msgNotFound)
		return
	}
	if err != nil {
		h.errLog.Internal(w, r, "failed to update service", err)
		return
	}

	h.auditLogger.Admin(r, audit.EventServiceUpdated, map[string]string{"service_id": svc.ID.Hex()})
	jsonutil.OK(w, newAdminService(svc))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := serviceID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.store.Delete(ctx, id)
	if errors.Is(err, servicestore.ErrNotFound) {
		jsonutil.NotFound(w, msgNotFound)
		return
	}
	if err != nil {
		h.errLog.Internal(w, r, "failed to delete service", err)
		return
	}

	h.auditLogger.Admin(r, audit.EventServiceDeleted, map[string]string{"service_id": id.Hex()})
	jsonutil.NoContent(w)
}

func trimmedField(p map[string]any, key string) *string {
	if _, ok := p[key]; !ok {
		return nil
	}
	s := strings.TrimSpace(cast.ToString(p[key]))
	return &s
}
