// Package errors holds the JSON fallbacks for unmatched routes and the
// logger behind every 500 answered by a handler.
package errors

import (
	"net/http"

	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// InternalMessage is the body of every 500 response. Storage details stay
// in the log.
const InternalMessage = "internal server error"

type ErrorLogger struct {
	logger *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{logger: logger}
}

// Internal logs err against the request and answers 500.
func (e *ErrorLogger) Internal(w http.ResponseWriter, r *http.Request, msg string, err error, fields ...zap.Field) {
	base := []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		base = append(base, zap.String("request_id", id))
	}
	e.logger.Error(msg, append(base, fields...)...)
	jsonutil.InternalError(w, InternalMessage)
}

// Handler answers requests no route claimed.
type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	jsonutil.NotFound(w, "No route found for \""+r.Method+" "+r.URL.Path+"\".")
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	jsonutil.Error(w, http.StatusMethodNotAllowed, "Method not allowed.")
}
