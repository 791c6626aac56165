// internal/app/features/auditlog/auditlog.go
package auditlog

import (
	"context"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	"github.com/dalemusser/stratasite/internal/app/store/audit"
	userstore "github.com/dalemusser/stratasite/internal/app/store/users"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/normalize"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Handler lists recorded audit events for the back office.
type Handler struct {
	auditStore *audit.Store
	userStore  *userstore.Store
	errLog     *errorsfeature.ErrorLogger
	logger     *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		auditStore: audit.New(db),
		userStore:  userstore.New(db),
		errLog:     errLog,
		logger:     logger,
	}
}

// Routes is mounted at /api/admin/audit.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	return r
}

type eventResponse struct {
	ID            string            `json:"id"`
	CreatedAt     string            `json:"createdAt"`
	Category      string            `json:"category"`
	EventType     string            `json:"eventType"`
	ActorName     string            `json:"actorName,omitempty"`
	IP            string            `json:"ip"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failureReason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

// list returns events newest first. Query parameters: category (admin by
// default, "all" for every category), eventType, from and to (YYYY-MM-DD, UTC,
// inclusive), success (true or false), limit and page.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	category := normalize.QueryParam(q.Get("category"))
	switch category {
	case "":
		category = audit.CategoryAdmin
	case "all":
		category = ""
	}

	limit := cast.ToInt64(q.Get("limit"))
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	page := cast.ToInt64(q.Get("page"))
	if page < 1 {
		page = 1
	}

	filter := audit.Filter{
		Category:  category,
		EventType: normalize.QueryParam(q.Get("eventType")),
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}
	if t, err := time.Parse("2006-01-02", normalize.QueryParam(q.Get("from"))); err == nil {
		filter.From = &t
	}
	if t, err := time.Parse("2006-01-02", normalize.QueryParam(q.Get("to"))); err == nil {
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}
	if v := normalize.QueryParam(q.Get("success")); v != "" {
		if ok, err := cast.ToBoolE(v); err == nil {
			filter.Success = &ok
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.auditStore.Query(ctx, filter)
	if err != nil {
		h.errLog.Internal(w, r, "failed to query audit events", err)
		return
	}
	total, err := h.auditStore.Count(ctx, filter)
	if err != nil {
		h.logger.Warn("failed to count audit events", zap.Error(err))
		total = int64(len(events))
	}

	names := h.actorNames(ctx, events)
	items := make([]eventResponse, 0, len(events))
	for _, e := range events {
		item := eventResponse{
			ID:            e.ID.Hex(),
			CreatedAt:     jsonutil.Time(e.CreatedAt),
			Category:      e.Category,
			EventType:     e.EventType,
			IP:            e.IP,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		}
		// Auth events have no separate actor; the user is acting on themselves.
		if e.ActorID != nil {
			item.ActorName = names[*e.ActorID]
		} else if e.UserID != nil && e.Category == audit.CategoryAuth {
			item.ActorName = names[*e.UserID]
		}
		items = append(items, item)
	}

	jsonutil.OK(w, map[string]any{
		"items": items,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// actorNames resolves the users referenced by events to their names.
// Deleted users resolve to nothing.
func (h *Handler) actorNames(ctx context.Context, events []audit.Event) map[primitive.ObjectID]string {
	seen := make(map[primitive.ObjectID]struct{})
	for _, e := range events {
		if e.ActorID != nil {
			seen[*e.ActorID] = struct{}{}
		}
		if e.UserID != nil {
			seen[*e.UserID] = struct{}{}
		}
	}
	names := make(map[primitive.ObjectID]string, len(seen))
	if len(seen) == 0 {
		return names
	}
	ids := make([]primitive.ObjectID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	users, err := h.userStore.GetByIDs(ctx, ids)
	if err != nil {
		h.logger.Warn("failed to resolve audit actor names", zap.Error(err))
		return names
	}
	for _, u := range users {
		names[u.ID] = u.FullName
	}
	return names
}
