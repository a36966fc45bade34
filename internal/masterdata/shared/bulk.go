package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goayasushi/zaiko-be/internal/platform/httpx"
)

// BulkDeleteResponse reports a completed bulk delete.
type BulkDeleteResponse struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deleted_count"`
}

// BulkTx is the transactional surface a bulk delete needs.
type BulkTx interface {
	LockIDs(ctx context.Context, ids []int64) ([]int64, error)
	DeleteIDs(ctx context.Context, ids []int64) (int, error)
}

// DecodeBulkIDs reads {"ids": [...]} and returns the distinct ids in order.
func DecodeBulkIDs(r *http.Request) ([]int64, error) {
	var body struct {
		IDs any `json:"ids"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyIDs
		}
		return nil, httpx.MalformedBody(httpx.FormatJSON, err)
	}
	if body.IDs == nil {
		return nil, ErrEmptyIDs
	}
	list, ok := body.IDs.([]any)
	if !ok {
		return nil, ErrInvalidIDs
	}
	if len(list) == 0 {
		return nil, ErrEmptyIDs
	}
	seen := make(map[int64]struct{}, len(list))
	ids := make([]int64, 0, len(list))
	for _, item := range list {
		id, err := bulkID(item)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func bulkID(item any) (int64, error) {
	var (
		id  int64
		err error
	)
	switch v := item.(type) {
	case json.Number:
		id, err = v.Int64()
	case string:
		id, err = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	default:
		return 0, ErrInvalidIDs
	}
	if err != nil || id <= 0 {
		return 0, ErrInvalidIDs
	}
	return id, nil
}

// DeleteLocked locks ids and deletes them only when every id exists.
// Callers run it inside one transaction.
func DeleteLocked(ctx context.Context, tx BulkTx, ids []int64) (int, error) {
	locked, err := tx.LockIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("lock ids: %w", err)
	}
	if len(locked) != len(ids) {
		return 0, fmt.Errorf("%w: %d of %d found", ErrMissingIDs, len(locked), len(ids))
	}
	n, err := tx.DeleteIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// RespondBulkDeleted writes the success body for n deleted records.
func RespondBulkDeleted(w http.ResponseWriter, n int) {
	httpx.JSON(w, http.StatusOK, BulkDeleteResponse{Message: MsgBulkDeleted(n), DeletedCount: n})
}

// RespondBulkError maps a bulk delete failure to its response.
func RespondBulkError(w http.ResponseWriter, err error) {
	var protected *ProtectedError
	switch {
	case errors.Is(err, ErrEmptyIDs):
		httpx.Error(w, http.StatusBadRequest, MsgEmptyIDs)
	case errors.Is(err, ErrInvalidIDs):
		httpx.Error(w, http.StatusBadRequest, MsgInvalidIDs)
	case errors.Is(err, ErrMissingIDs):
		httpx.Error(w, http.StatusBadRequest, MsgMissingIDs)
	case errors.As(err, &protected):
		httpx.Error(w, http.StatusBadRequest, protected.Error())
	case errors.Is(err, httpx.ErrMalformedBody):
		httpx.RespondError(w, err)
	default:
		httpx.Error(w, http.StatusInternalServerError, MsgBulkDeleteError+err.Error())
	}
}

// BulkObserver records bulk delete outcomes.
type BulkObserver interface {
	ObserveBulkDelete(resource string, deleted int, err error)
}

// NopObserver discards observations.
type NopObserver struct{}

// ObserveBulkDelete implements BulkObserver.
func (NopObserver) ObserveBulkDelete(string, int, error) {}
