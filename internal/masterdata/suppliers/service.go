package suppliers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/goayasushi/zaiko-be/internal/masterdata/shared"
	"github.com/goayasushi/zaiko-be/internal/platform/httpx"
	internalShared "github.com/goayasushi/zaiko-be/internal/shared"
)

// Service wraps supplier business rules.
type Service struct {
	repo     Repository
	audit    shared.Audit
	observer shared.BulkObserver
	logger   *slog.Logger
}

// NewService constructs a Service. audit and observer may be nil.
func NewService(repo Repository, audit internalShared.AuditRecorder, observer shared.BulkObserver, logger *slog.Logger) *Service {
	if observer == nil {
		observer = shared.NopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: shared.NewAudit(audit, Entity, logger), observer: observer, logger: logger}
}

// Count returns the number of suppliers.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// List returns one page ordered by creation time.
func (s *Service) List(ctx context.Context, p internalShared.Pagination) ([]Supplier, error) {
	return s.repo.List(ctx, p.PerPage, p.Offset())
}

// Get returns a single supplier.
func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Exists reports whether id names a supplier.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// Lookup returns the suppliers named by ids keyed by id.
func (s *Service) Lookup(ctx context.Context, ids []int64) (map[int64]Supplier, error) {
	rows, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]Supplier, len(rows))
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// Create validates payload and stores a new supplier.
func (s *Service) Create(ctx context.Context, payload shared.Payload) (Supplier, error) {
	values, err := shared.Validate(ctx, s.rules(0), payload, shared.ModeCreate)
	if err != nil {
		return Supplier{}, err
	}
	var sup Supplier
	apply(values, &sup)
	created, err := s.repo.Create(ctx, sup)
	if err != nil {
		return Supplier{}, codeTaken(err)
	}
	s.audit.Record(ctx, internalShared.AuditCreate, created.ID, map[string]any{"name": created.Name})
	return created, nil
}

// Update validates payload against the stored supplier. A partial update
// only touches the keys present in payload.
func (s *Service) Update(ctx context.Context, id int64, payload shared.Payload, partial bool) (Supplier, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return Supplier{}, err
	}
	values, err := shared.Validate(ctx, s.rules(id), payload, shared.UpdateMode(partial))
	if err != nil {
		return Supplier{}, err
	}
	apply(values, &existing)
	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return Supplier{}, codeTaken(err)
	}
	s.audit.Record(ctx, internalShared.AuditUpdate, id, map[string]any{"partial": partial})
	return updated, nil
}

// Delete removes a supplier that no part references.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.protected(ctx, err, []int64{id})
	}
	s.audit.Record(ctx, internalShared.AuditDelete, id, nil)
	return nil
}

// BulkDelete deletes every id or none of them.
func (s *Service) BulkDelete(ctx context.Context, ids []int64) (int, error) {
	var deleted int
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		n, err := shared.DeleteLocked(ctx, tx, ids)
		deleted = n
		return err
	})
	if err != nil {
		err = s.protected(ctx, err, ids)
		s.observer.ObserveBulkDelete(Entity, 0, err)
		return 0, err
	}
	s.observer.ObserveBulkDelete(Entity, deleted, nil)
	s.audit.Record(ctx, internalShared.AuditBulkDelete, 0, map[string]any{"ids": ids, "deleted_count": deleted})
	return deleted, nil
}

func (s *Service) protected(ctx context.Context, err error, ids []int64) error {
	if !errors.Is(err, shared.ErrProtected) {
		return err
	}
	n, countErr := s.repo.CountReferences(ctx, ids)
	if countErr != nil {
		s.logger.Warn("count supplier references", slog.Any("error", countErr))
	}
	return &shared.ProtectedError{Resource: "取引先", Dependents: "部品", Count: n}
}

func codeTaken(err error) error {
	if errors.Is(err, ErrCodeTaken) {
		fieldErrs := httpx.FieldErrors{}
		fieldErrs.Add(FieldSupplierCode, msgCodeTaken)
		return fieldErrs
	}
	return err
}
