package pages

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PublicRoutes returns the read-only page API, mounted at /api/pages.
func PublicRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/{slug}", h.showPublic)
	return r
}

// AdminRoutes returns the page editing API, mounted at /api/admin/pages
// behind the admin check.
//
//   - GET    /                      list pages
//   - POST   /                      create a page
//   - GET    /section-types         selectable section types and animations
//   - POST   /contact/sync          push the contact page into settings
//   - GET    /{slug}                page with sections
//   - PUT    /{slug}                partial page update
//   - DELETE /{slug}                delete page and sections
//   - POST   /{slug}/sections       add a section
//   - PUT    /{slug}/sections/{key} partial section update
//   - DELETE /{slug}/sections/{key} remove a section
func AdminRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/section-types", h.sectionTypes)
	r.Post("/contact/sync", h.syncContact)
	r.Route("/{slug}", func(r chi.Router) {
		r.Get("/", h.show)
		r.Put("/", h.update)
		r.Delete("/", h.delete)
		r.Post("/sections", h.addSection)
		r.Put("/sections/{key}", h.updateSection)
		r.Delete("/sections/{key}", h.removeSection)
	})
	return r
}
