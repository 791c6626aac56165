package pages

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/stratasite/internal/app/store/audit"
	"github.com/dalemusser/stratasite/internal/app/system/contactsync"
	"github.com/dalemusser/stratasite/internal/app/system/contentops"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/sectiontypes"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const (
	msgContactPageNotFound = "Page contact non trouvée"
	msgSyncDone            = "Synchronisation effectuée"
)

var success = map[string]any{"success": true}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	pages, err := h.content.ListPages(ctx)
	if err != nil {
		h.errLog.Internal(w, r, "failed to list pages", err)
		return
	}
	items := make([]pageResponse, 0, len(pages))
	for _, p := range pages {
		items = append(items, newPageResponse(p))
	}
	jsonutil.OK(w, map[string]any{"items": items})
}

func (h *Handler) sectionTypes(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, map[string]any{
		"types":      sectiontypes.Types(),
		"animations": sectiontypes.Animations(),
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, err := jsonutil.DecodeObject(r)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	view, err := h.content.CreatePage(ctx, contentops.CreatePageInput{
		Slug:            cast.ToString(p["slug"]),
		Title:           cast.ToString(p["title"]),
		MetaTitle:       stringField(p, "metaTitle"),
		MetaDescription: stringField(p, "metaDescription"),
	})
	if err != nil {
		h.writeOpError(w, r, err, "create page")
		return
	}

	h.auditLogger.Admin(r, audit.EventPageCreated, map[string]string{"slug": view.Page.Slug})
	jsonutil.Created(w, newPageResponse(view.Page))
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	view, err := h.content.GetPage(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		h.writeOpError(w, r, err, "load page")
		return
	}
	jsonutil.OK(w, newPageDetail(view))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	p, err := jsonutil.DecodeObject(r)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	view, err := h.content.UpdatePage(ctx, slug, pagePatch(p))
	if err != nil {
		h.writeOpError(w, r, err, "update page")
		return
	}

	h.auditLogger.Admin(r, audit.EventPageUpdated, map[string]string{"slug": slug})
	jsonutil.OK(w, newPageDetail(view))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.content.DeletePage(ctx, slug); err != nil {
		h.writeOpError(w, r, err, "delete page")
		return
	}

	h.auditLogger.Admin(r, audit.EventPageDeleted, map[string]string{"slug": slug})
	jsonutil.OK(w, success)
}

func (h *Handler) addSection(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	p, err := jsonutil.DecodeObject(r)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sec, err := h.content.AddSection(ctx, slug, addSectionInput(p))
	if err != nil {
		h.writeOpError(w, r, err, "add section")
		return
	}

	h.auditLogger.Admin(r, audit.EventSectionAdded, map[string]string{"slug": slug, "key": sec.SectionKey, "type": sec.Type})
	jsonutil.Created(w, newSectionResponse(sec))
}

func (h *Handler) updateSection(w http.ResponseWriter, r *http.Request) {
	slug, key := chi.URLParam(r, "slug"), chi.URLParam(r, "key")
	p, err := jsonutil.DecodeObject(r)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sec, err := h.content.UpdateSection(ctx, slug, key, sectionPatch(p))
	if err != nil {
		h.writeOpError(w, r, err, "update section")
		return
	}

	h.auditLogger.Admin(r, audit.EventSectionUpdated, map[string]string{"slug": slug, "key": key})
	jsonutil.OK(w, newSectionResponse(sec))
}

func (h *Handler) removeSection(w http.ResponseWriter, r *http.Request) {
	slug, key := chi.URLParam(r, "slug"), chi.URLParam(r, "key")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.content.RemoveSection(ctx, slug, key); err != nil {
		h.writeOpError(w, r, err, "remove section")
		return
	}

	h.auditLogger.Admin(r, audit.EventSectionRemoved, map[string]string{"slug": slug, "key": key})
	jsonutil.OK(w, success)
}

// syncContact pushes the contact page's info and map sections into settings.
func (h *Handler) syncContact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rep, err := h.sync.FromPage(ctx)
	if errors.Is(err, contactsync.ErrContactPageNotFound) {
		jsonutil.NotFound(w, msgContactPageNotFound)
		return
	}
	if err != nil {
		h.errLog.Internal(w, r, "failed to sync contact page", err)
		return
	}

	h.logger.Info("contact page synced to settings",
		zap.Bool("infos_applied", rep.Infos.Applied),
		zap.String("infos_reason", rep.Infos.Reason),
		zap.Bool("map_applied", rep.Map.Applied),
		zap.String("map_reason", rep.Map.Reason))
	h.auditLogger.Admin(r, audit.EventContactSynced, map[string]string{"direction": "page_to_settings"})
	jsonutil.OK(w, map[string]any{"success": true, "message": msgSyncDone})
}
