package reservations

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/stratasite/internal/app/store/audit"
	reservationstore "github.com/dalemusser/stratasite/internal/app/store/reservations"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/normalize"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.store.List(ctx)
	if err != nil {
		h.errLog.Internal(w, r, "failed to list reservation requests", err)
		return
	}
	items := make([]reservationResponse, 0, len(list))
	for _, req := range list {
		items = append(items, newReservationResponse(req))
	}
	jsonutil.OK(w, map[string]any{"items": items})
}

func (h *Handler) countNew(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.store.CountNew(ctx)
	if err != nil {
		h.errLog.Internal(w, r, "failed to count reservation requests", err)
		return
	}
	jsonutil.OK(w, map[string]int64{"count": n})
}

func reservationID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgNotFound)
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := reservationID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	req, err := h.store.GetByID(ctx, id)
	if errors.Is(err, reservationstore.ErrNotFound) {
		jsonutil.NotFound(w, msgNotFound)
		return
	}
	if err != nil {
		h.errLog.Internal(w, r, "failed to load reservation request", err)
		return
	}
	jsonutil.OK(w, newReservationResponse(req))
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := reservationID(w, r)
	if !ok {
		return
	}
	p, err := jsonutil.DecodeObject(r)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	raw, present := p["status"]
	if !present {
		jsonutil.ValidationError(w, map[string]string{"status": msgStatusRequired})
		return
	}
	status := normalize.Status(cast.ToString(raw))
	if !models.IsValidReservationStatus(status) {
		jsonutil.ValidationError(w, map[string]string{"status": msgStatusInvalid})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	req, err := h.store.SetStatus(ctx, id, status)
	if errors.Is(err, reservationstore.ErrNotFound) {
		jsonutil.NotFound(w, msgNotFound)
		return
	}
	if err != nil {
		h.errLog.Internal(w, r, "failed to update reservation status", err)
		return
	}

	h.auditLogger.Admin(r, audit.EventReservationStatusChanged, map[string]string{
		"reservation_id": id.Hex(),
		"status":         status,
	})
	jsonutil.OK(w, newReservationResponse(req))
}
