// Package apistats exposes public API traffic counters to the back office.
package apistats

import (
	"context"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	apistatsstore "github.com/dalemusser/stratasite/internal/app/store/apistats"
	"github.com/dalemusser/stratasite/internal/app/store/audit"
	"github.com/dalemusser/stratasite/internal/app/system/auditlog"
	apistatsystem "github.com/dalemusser/stratasite/internal/app/system/apistats"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var ranges = map[string]time.Duration{
	"1h":  time.Hour,
	"6h":  6 * time.Hour,
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
}

const defaultRange = "24h"

// bucketChoices are the widths an admin may select for new recordings.
var bucketChoices = []string{"1m", "15m", "1h", "24h"}

// Handler serves the API stats endpoints.
type Handler struct {
	store       *apistatsstore.Store
	recorder    *apistatsystem.Recorder
	errLog      *errorsfeature.ErrorLogger
	auditLogger *auditlog.Logger
	logger      *zap.Logger
	now         func() time.Time
}

// NewHandler creates a new API stats handler.
func NewHandler(store *apistatsstore.Store, recorder *apistatsystem.Recorder, errLog *errorsfeature.ErrorLogger, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		store:       store,
		recorder:    recorder,
		errLog:      errLog,
		auditLogger: auditLogger,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Routes is mounted at /api/admin/stats.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.summary)
	r.Get("/series", h.series)
	r.Put("/bucket", h.setBucket)
	return r
}

func (h *Handler) window(r *http.Request) (string, time.Time, time.Time) {
	name := r.URL.Query().Get("range")
	d, ok := ranges[name]
	if !ok {
		name, d = defaultRange, ranges[defaultRange]
	}
	end := h.now()
	return name, end.Add(-d), end
}

type summaryItem struct {
	apistatsstore.Summary
	ErrorRate float64 `json:"errorRate"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	name, from, to := h.window(r)
	sums, err := h.store.GetSummary(ctx, from, to)
	if err != nil {
		h.errLog.Internal(w, r, "failed to load api stats", err)
		return
	}

	items := make([]summaryItem, len(sums))
	for i, s := range sums {
		items[i] = summaryItem{Summary: s, ErrorRate: s.ErrorRate()}
	}
	jsonutil.OK(w, map[string]any{
		"range":  name,
		"from":   jsonutil.Time(from),
		"to":     jsonutil.Time(to),
		"bucket": h.recorder.BucketDuration().String(),
		"items":  items,
	})
}

func (h *Handler) series(w http.ResponseWriter, r *http.Request) {
	statType := r.URL.Query().Get("type")
	if !apistatsstore.IsStatType(statType) {
		jsonutil.BadRequest(w, "Unknown stat type.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	name, from, to := h.window(r)
	buckets, err := h.store.GetRange(ctx, apistatsstore.StatType(statType), from, to)
	if err != nil {
		h.errLog.Internal(w, r, "failed to load api stats series", err, zap.String("type", statType))
		return
	}
	jsonutil.OK(w, map[string]any{
		"type":  statType,
		"range": name,
		"items": buckets,
	})
}

func (h *Handler) setBucket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Bucket string `json:"bucket"`
	}
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, jsonutil.ErrInvalidJSON.Error())
		return
	}
	valid := false
	for _, c := range bucketChoices {
		if c == req.Bucket {
			valid = true
			break
		}
	}
	if !valid {
		jsonutil.ValidationError(w, map[string]string{"bucket": "Bucket must be one of 1m, 15m, 1h, 24h."})
		return
	}

	d, _ := time.ParseDuration(req.Bucket)
	h.recorder.SetBucketDuration(d)
	h.logger.Info("api stats bucket changed", zap.String("bucket", d.String()))
	h.auditLogger.Admin(r, audit.EventSettingsUpdated, map[string]string{
		"setting": "api_stats_bucket",
		"value":   d.String(),
	})
	jsonutil.OK(w, map[string]string{"bucket": d.String()})
}
