// Package settingsapi serves the public subset of the site settings that the
// front end needs to render its header and footer.
package settingsapi

import (
	"context"
	"net/http"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	settingsstore "github.com/dalemusser/stratasite/internal/app/store/settings"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves GET /api/settings.
type Handler struct {
	settingsStore *settingsstore.Store
	errLog        *errorsfeature.ErrorLogger
	logger        *zap.Logger
}

// NewHandler creates a new settingsapi handler.
func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		settingsStore: settingsstore.New(db),
		errLog:        errLog,
		logger:        logger,
	}
}

// Routes returns a router with the public settings endpoint.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.show)
	return r
}

// Response is the public settings document.
type Response struct {
	SiteName     string                    `json:"siteName"`
	Tagline      string                    `json:"tagline"`
	Logo         *string                   `json:"logo"`
	Favicon      *string                   `json:"favicon"`
	ContactEmail string                    `json:"contactEmail"`
	ContactPhone *string                   `json:"contactPhone"`
	Address      models.Address            `json:"address"`
	SocialLinks  models.SocialSettings     `json:"socialLinks"`
	Hours        models.HoursSettings      `json:"hours"`
	Appearance   models.AppearanceSettings `json:"appearance"`
	Footer       models.FooterSettings     `json:"footer"`
}

// NewResponse projects settings into the public document. Missing
// namespaces fall back to their defaults.
func NewResponse(s *models.SiteSettings) Response {
	g := s.GeneralOrDefault()
	c := s.ContactOrDefault()
	return Response{
		SiteName:     g.SiteName,
		Tagline:      g.Tagline,
		Logo:         g.Logo,
		Favicon:      g.Favicon,
		ContactEmail: c.Email,
		ContactPhone: c.Phone,
		Address:      c.Address,
		SocialLinks:  s.SocialOrDefault(),
		Hours:        s.HoursOrDefault(),
		Appearance:   s.AppearanceOrDefault(),
		Footer:       s.FooterOrDefault(),
	}
}

// show never writes: a site without a settings record is served the defaults.
func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	settings, err := h.settingsStore.Get(ctx)
	if err != nil {
		h.errLog.Internal(w, r, "failed to load settings", err)
		return
	}
	jsonutil.OK(w, NewResponse(settings))
}
