package suppliers

import "github.com/go-chi/chi/v5"

// MountRoutes registers supplier routes on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/bulk-delete", h.BulkDelete)
	r.Get("/{id}", h.Retrieve)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}", h.PartialUpdate)
	r.Delete("/{id}", h.Delete)
}
