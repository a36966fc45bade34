// Package masterdata mounts the supplier and part master endpoints.
package masterdata

import (
	"github.com/go-chi/chi/v5"

	"github.com/goayasushi/zaiko-be/internal/masterdata/parts"
	"github.com/goayasushi/zaiko-be/internal/masterdata/suppliers"
)

// Handler groups the master data resources under one mount point.
type Handler struct {
	suppliers *suppliers.Handler
	parts     *parts.Handler
}

// NewHandler builds Handler instance.
func NewHandler(suppliers *suppliers.Handler, parts *parts.Handler) *Handler {
	return &Handler{suppliers: suppliers, parts: parts}
}

// MountRoutes registers master data routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/suppliers", h.suppliers.MountRoutes)
	r.Route("/parts", h.parts.MountRoutes)
}
