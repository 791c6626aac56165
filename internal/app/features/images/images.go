// Package images serves uploaded images under /images/*.
package images

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Prefix is the mount point of the image routes.
const Prefix = "/images"

const msgNotFound = "Not Found"

// Handler streams files from the storage backend. When localDir is set the
// files are served straight from disk instead.
type Handler struct {
	store  storage.Store
	static http.Handler
	logger *zap.Logger
}

func NewHandler(store storage.Store, localDir string, logger *zap.Logger) *Handler {
	h := &Handler{store: store, logger: logger}
	if localDir != "" {
		h.static = fileserver.Handler(Prefix, localDir)
	}
	return h
}

// Routes is mounted at Prefix.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/*", h.serve)
	r.Head("/*", h.serve)
	return r
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if name == "" || strings.Contains(name, "..") {
		jsonutil.NotFound(w, msgNotFound)
		return
	}

	if h.static != nil {
		h.static.ServeHTTP(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	reader, err := h.store.Get(ctx, name)
	if err != nil {
		h.logger.Debug("image not found", zap.String("name", name), zap.Error(err))
		jsonutil.NotFound(w, msgNotFound)
		return
	}
	defer reader.Close()

	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("failed to stream image", zap.String("name", name), zap.Error(err))
	}
}
