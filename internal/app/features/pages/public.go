package pages

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/stratasite/internal/app/system/contentops"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// showPublic serves a page and its sections keyed by section key.
func (h *Handler) showPublic(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	view, err := h.content.GetPage(ctx, slug)
	if errors.Is(err, contentops.ErrNotFound) {
		jsonutil.NotFound(w, fmt.Sprintf("Page %q not found.", slug))
		return
	}
	if err != nil {
		h.errLog.Internal(w, r, "failed to load page", err)
		return
	}
	jsonutil.OK(w, newPublicPage(view))
}
