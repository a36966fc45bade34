package suppliers

import (
	"log/slog"
	"net/http"

	"github.com/goayasushi/zaiko-be/internal/masterdata/shared"
	"github.com/goayasushi/zaiko-be/internal/platform/httpx"
)

// Handler serves the supplier REST endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	total, err := h.service.Count(ctx)
	if err != nil {
		h.fail(w, "count suppliers", err)
		return
	}
	page, err := shared.ResolvePage(r, total)
	if err != nil {
		h.fail(w, "resolve page", err)
		return
	}
	rows, err := h.service.List(ctx, page)
	if err != nil {
		h.fail(w, "list suppliers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.NewEnvelope(r, page, rows))
}

func (h *Handler) Retrieve(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		h.fail(w, "parse supplier id", err)
		return
	}
	sup, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get supplier", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sup)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := shared.DecodeRequest(r)
	if err != nil {
		h.fail(w, "decode supplier", err)
		return
	}
	created, err := h.service.Create(r.Context(), req.Fields)
	if err != nil {
		h.fail(w, "create supplier", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *Handler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	id, err := shared.ParseID(r)
	if err != nil {
		h.fail(w, "parse supplier id", err)
		return
	}
	req, err := shared.DecodeRequest(r)
	if err != nil {
		h.fail(w, "decode supplier", err)
		return
	}
	updated, err := h.service.Update(r.Context(), id, req.Fields, partial)
	if err != nil {
		h.fail(w, "update supplier", err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		h.fail(w, "parse supplier id", err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete supplier", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	ids, err := shared.DecodeBulkIDs(r)
	if err != nil {
		shared.RespondBulkError(w, err)
		return
	}
	n, err := h.service.BulkDelete(r.Context(), ids)
	if err != nil {
		if !shared.Expected(err) {
			h.logger.Error("bulk delete suppliers", slog.Int("ids", len(ids)), slog.Any("error", err))
		}
		shared.RespondBulkError(w, err)
		return
	}
	shared.RespondBulkDeleted(w, n)
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	if !shared.Expected(err) {
		h.logger.Error(msg, slog.Any("error", err))
	}
	shared.RespondError(w, err)
}
