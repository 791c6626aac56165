// Package ledgerfeature lists recorded public API requests for the back office.
package ledgerfeature

import (
	"context"
	"errors"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	ledgerstore "github.com/dalemusser/stratasite/internal/app/store/ledger"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles ledger requests.
type Handler struct {
	store  *ledgerstore.Store
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates a new ledger handler.
func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		store:  ledgerstore.New(db),
		errLog: errLog,
		logger: logger,
		now:    time.Now,
	}
}

// Routes is mounted at /api/admin/ledger.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/summary", h.summary)
	r.Get("/{requestID}", h.show)
	return r
}

// list handles GET /?path=&class=&status=&since=24h&before=&limit=.
// nextBefore pages to older entries.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ledgerstore.ListFilter{
		PathPrefix: q.Get("path"),
		ErrorClass: q.Get("class"),
		Limit:      cast.ToInt(q.Get("limit")),
	}
	if v := q.Get("status"); v != "" {
		n, err := cast.ToIntE(v)
		if err != nil || n < 100 || n > 599 {
			jsonutil.BadRequest(w, "Invalid status.")
			return
		}
		filter.StatusCodeMin = n
	}
	if v := q.Get("since"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			jsonutil.BadRequest(w, "Invalid since duration.")
			return
		}
		t := h.now().Add(-d)
		filter.Since = &t
	}
	if v := q.Get("before"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			jsonutil.BadRequest(w, "Invalid before timestamp.")
			return
		}
		filter.Before = &t
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	entries, err := h.store.List(ctx, filter)
	if err != nil {
		h.errLog.Internal(w, r, "failed to list ledger entries", err)
		return
	}
	body := map[string]any{"items": entries}
	if n := len(entries); n > 0 {
		body["nextBefore"] = entries[n-1].StartedAt.UTC().Format(time.RFC3339Nano)
	}
	jsonutil.OK(w, body)
}

// summary handles GET /summary?since=24h
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	d := 24 * time.Hour
	if v := r.URL.Query().Get("since"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed <= 0 {
			jsonutil.BadRequest(w, "Invalid since duration.")
			return
		}
		d = parsed
	}
	since := h.now().Add(-d)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	counts, err := h.store.CountByErrorClass(ctx, since)
	if err != nil {
		h.errLog.Internal(w, r, "failed to summarize ledger", err)
		return
	}
	jsonutil.OK(w, map[string]any{
		"since":  jsonutil.Time(since),
		"counts": counts,
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	entry, err := h.store.GetByRequestID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.NotFound(w, "Request not found.")
		return
	}
	if err != nil {
		h.errLog.Internal(w, r, "failed to load ledger entry", err, zap.String("request_id", id))
		return
	}
	jsonutil.OK(w, entry)
}
