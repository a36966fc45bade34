package parts

import (
	"log/slog"
	"net/http"

	"github.com/goayasushi/zaiko-be/internal/masterdata/shared"
	"github.com/goayasushi/zaiko-be/internal/platform/httpx"
	"github.com/goayasushi/zaiko-be/internal/platform/storage"
)

// Handler serves the part REST endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	store   storage.Store
}

// NewHandler constructs a Handler. store renders image URLs.
func NewHandler(logger *slog.Logger, service *Service, store storage.Store) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, store: store}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	total, err := h.service.Count(ctx)
	if err != nil {
		h.fail(w, "count parts", err)
		return
	}
	page, err := shared.ResolvePage(r, total)
	if err != nil {
		h.fail(w, "resolve page", err)
		return
	}
	details, err := h.service.List(ctx, page)
	if err != nil {
		h.fail(w, "list parts", err)
		return
	}
	results := make([]Response, 0, len(details))
	for _, d := range details {
		results = append(results, NewResponse(d, h.imageURL(r)))
	}
	httpx.JSON(w, http.StatusOK, shared.NewEnvelope(r, page, results))
}

func (h *Handler) Retrieve(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		h.fail(w, "parse part id", err)
		return
	}
	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get part", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewResponse(d, h.imageURL(r)))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := shared.DecodeRequest(r)
	if err != nil {
		h.fail(w, "decode part", err)
		return
	}
	d, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.fail(w, "create part", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewResponse(d, h.imageURL(r)))
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
		h.fail(w, "parse part id", err)
		return
	}
	req, err := shared.DecodeRequest(r)
	if err != nil {
		h.fail(w, "decode part", err)
		return
	}
	d, err := h.service.Update(r.Context(), id, req, partial)
	if err != nil {
		h.fail(w, "update part", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewResponse(d, h.imageURL(r)))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		h.fail(w, "parse part id", err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete part", err)
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
			h.logger.Error("bulk delete parts", slog.Int("ids", len(ids)), slog.Any("error", err))
		}
		shared.RespondBulkError(w, err)
		return
	}
	shared.RespondBulkDeleted(w, n)
}

func (h *Handler) imageURL(r *http.Request) func(string) string {
	return func(key string) string {
		if h.store == nil {
			return key
		}
		return shared.AbsoluteURL(r, h.store.URL(key))
	}
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	if !shared.Expected(err) {
		h.logger.Error(msg, slog.Any("error", err))
	}
	shared.RespondError(w, err)
}
