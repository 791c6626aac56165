// Package navigation builds the public site menu from the pages flagged for
// navigation and the external links configured in settings.
package navigation

import (
	"context"
	"net/http"
	"sort"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	pagestore "github.com/dalemusser/stratasite/internal/app/store/pages"
	settingsstore "github.com/dalemusser/stratasite/internal/app/store/settings"
	"github.com/dalemusser/stratasite/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// externalOrder places links without an explicit order after the pages.
const externalOrder = 999

// Item is one menu entry.
type Item struct {
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	Path         string `json:"path"`
	IsExternal   bool   `json:"isExternal"`
	OpenInNewTab *bool  `json:"openInNewTab,omitempty"`

	order int
}

// defaultItems is served when nothing is configured yet.
var defaultItems = []Item{
	{Slug: "home", Title: "Accueil", Path: "/"},
	{Slug: "soins", Title: "Carte & tarifs", Path: "/soins"},
	{Slug: "entreprise", Title: "Entreprise", Path: "/entreprise"},
	{Slug: "about", Title: "À propos", Path: "/a-propos"},
	{Slug: "contact", Title: "Contact", Path: "/contact"},
}

type Handler struct {
	pageStore     *pagestore.Store
	settingsStore *settingsstore.Store
	errLog        *errorsfeature.ErrorLogger
	logger        *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		pageStore:     pagestore.New(db),
		settingsStore: settingsstore.New(db),
		errLog:        errLog,
		logger:        logger,
	}
}

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	pages, err := h.pageStore.ListNav(ctx)
	if err != nil {
		h.errLog.Internal(w, r, "failed to list navigation pages", err)
		return
	}
	settings, err := h.settingsStore.Get(ctx)
	if err != nil {
		h.errLog.Internal(w, r, "failed to load settings", err)
		return
	}

	jsonutil.OK(w, map[string]any{"items": Build(pages, settings.NavigationOrDefault().ExternalLinks)})
}

// Build merges pages (already in nav order) with external links and
// stable-sorts the result by order.
func Build(pages []models.Page, links []models.ExternalLink) []Item {
	items := make([]Item, 0, len(pages)+len(links))
	for _, p := range pages {
		title := p.Title
		if p.NavTitle != nil {
			title = *p.NavTitle
		}
		items = append(items, Item{
			Slug:  p.Slug,
			Title: title,
			Path:  models.NavPath(p.Slug),
			order: p.NavOrder,
		})
	}
	for _, l := range links {
		id := l.ID
		if id == "" {
			id = uuid.NewString()
		}
		order := externalOrder
		if l.Order != nil {
			order = *l.Order
		}
		newTab := l.OpenInNewTab
		items = append(items, Item{
			Slug:         "external-" + id,
			Title:        l.Label,
			Path:         l.URL,
			IsExternal:   true,
			OpenInNewTab: &newTab,
			order:        order,
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].order < items[j].order })

	if len(items) == 0 {
		return append([]Item(nil), defaultItems...)
	}
	return items
}
