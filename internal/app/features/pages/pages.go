// internal/app/features/pages/pages.go
package pages

import (
	"errors"
	"net/http"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	"github.com/dalemusser/stratasite/internal/app/system/auditlog"
	"github.com/dalemusser/stratasite/internal/app/system/contactsync"
	"github.com/dalemusser/stratasite/internal/app/system/contentops"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"go.uber.org/zap"
)

// Handler serves pages and their sections, publicly by slug and to admins
// for editing.
type Handler struct {
	content     *contentops.Service
	sync        *contactsync.Synchronizer
	errLog      *errorsfeature.ErrorLogger
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new pages Handler.
func NewHandler(content *contentops.Service, sync *contactsync.Synchronizer, errLog *errorsfeature.ErrorLogger, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		content:     content,
		sync:        sync,
		errLog:      errLog,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// writeOpError maps a content operation failure onto its HTTP status.
func (h *Handler) writeOpError(w http.ResponseWriter, r *http.Request, err error, op string) {
	var verr *contentops.ValidationError
	switch {
	case errors.As(err, &verr):
		jsonutil.ValidationError(w, verr.Fields)
	case errors.Is(err, contentops.ErrNotFound):
		jsonutil.NotFound(w, contentops.Message(err))
	case errors.Is(err, contentops.ErrConflict):
		jsonutil.Conflict(w, contentops.Message(err))
	case errors.Is(err, contentops.ErrForbidden):
		jsonutil.Forbidden(w, contentops.Message(err))
	case errors.Is(err, contentops.ErrInvalidInput):
		jsonutil.BadRequest(w, contentops.Message(err))
	default:
		h.errLog.Internal(w, r, "failed to "+op, err)
	}
}
