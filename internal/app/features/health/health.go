// Package health serves the liveness, readiness and detailed health
// endpoints used by the load balancer and uptime monitors.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Probe is a named check reported by /health. A failing probe marks the
// service degraded; readiness only depends on the database.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

type Handler struct {
	db      Pinger
	probes  []Probe
	logger  *zap.Logger
	started time.Time
}

func NewHandler(db Pinger, logger *zap.Logger, probes ...Probe) *Handler {
	return &Handler{db: db, probes: probes, logger: logger, started: time.Now()}
}

// Response is the body of GET /health.
type Response struct {
	Status   string            `json:"status"` // ok, degraded or unavailable
	Uptime   string            `json:"uptime"`
	Services map[string]string `json:"services"`
}

// Routes serves /, /ready and /live under the mount point.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds /ready, /readyz, /live and /livez to r.
func MountRootEndpoints(r chi.Router, h *Handler) {
	for _, p := range []string{"/ready", "/readyz"} {
		r.Get(p, h.Ready)
	}
	for _, p := range []string{"/live", "/livez"} {
		r.Get(p, h.Live)
	}
}

func (h *Handler) ping(ctx context.Context) error {
	return h.db.Ping(ctx, readpref.Primary())
}

// Check pings MongoDB, then runs the probes. It answers 503 only when the
// database is unreachable.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := Response{
		Status:   "ok",
		Uptime:   time.Since(h.started).Round(time.Second).String(),
		Services: map[string]string{"mongodb": "ok"},
	}
	if err := h.ping(ctx); err != nil {
		h.logger.Warn("health: mongodb unreachable", zap.Error(err))
		resp.Status = "unavailable"
		resp.Services["mongodb"] = "unavailable"
		jsonutil.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	for _, p := range h.probes {
		state := "ok"
		if err := p.Check(ctx); err != nil {
			h.logger.Warn("health: probe failed", zap.String("probe", p.Name), zap.Error(err))
			resp.Status = "degraded"
			state = err.Error()
		}
		resp.Services[p.Name] = state
	}
	jsonutil.OK(w, resp)
}

// Ready answers 503 until MongoDB answers a ping.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if err := h.ping(ctx); err != nil {
		h.logger.Warn("readiness: mongodb unreachable", zap.Error(err))
		jsonutil.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	jsonutil.OK(w, map[string]string{"status": "ready"})
}

// Live never touches a backend.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, map[string]string{"status": "alive"})
}
