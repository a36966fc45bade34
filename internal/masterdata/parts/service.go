package parts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/goayasushi/zaiko-be/internal/masterdata/shared"
	"github.com/goayasushi/zaiko-be/internal/masterdata/suppliers"
	"github.com/goayasushi/zaiko-be/internal/platform/httpx"
	"github.com/goayasushi/zaiko-be/internal/platform/storage"
	internalShared "github.com/goayasushi/zaiko-be/internal/shared"
	"github.com/goayasushi/zaiko-be/internal/users"
)

// SupplierDirectory resolves the supplier reference.
type SupplierDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Lookup(ctx context.Context, ids []int64) (map[int64]suppliers.Supplier, error)
}

// ProfileDirectory resolves creator and updater profiles.
type ProfileDirectory interface {
	Profiles(ctx context.Context, ids []int64) (map[int64]users.Profile, error)
}

// ImagePurger removes replaced or orphaned image objects.
type ImagePurger interface {
	EnqueueImagePurge(ctx context.Context, key string) error
}

// Options carries the collaborators of Service.
type Options struct {
	Suppliers SupplierDirectory
	Profiles  ProfileDirectory
	Store     storage.Store
	// Purger defers object removal; without one objects are deleted inline.
	Purger   ImagePurger
	Audit    internalShared.AuditRecorder
	Observer shared.BulkObserver
	Logger   *slog.Logger
}

// Service wraps part business rules.
type Service struct {
	repo      Repository
	suppliers SupplierDirectory
	profiles  ProfileDirectory
	store     storage.Store
	purger    ImagePurger
	audit     shared.Audit
	observer  shared.BulkObserver
	logger    *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Observer == nil {
		opts.Observer = shared.NopObserver{}
	}
	return &Service{
		repo:      repo,
		suppliers: opts.Suppliers,
		profiles:  opts.Profiles,
		store:     opts.Store,
		purger:    opts.Purger,
		audit:     shared.NewAudit(opts.Audit, Entity, opts.Logger),
		observer:  opts.Observer,
		logger:    opts.Logger,
	}
}

// Count returns the number of parts.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// List returns one page ordered by id.
func (s *Service) List(ctx context.Context, p internalShared.Pagination) ([]Detail, error) {
	rows, err := s.repo.List(ctx, p.PerPage, p.Offset())
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, rows)
}

// Get returns a single part.
func (s *Service) Get(ctx context.Context, id int64) (Detail, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return s.resolveOne(ctx, p)
}

func (s *Service) get(ctx context.Context, id int64) (Part, error) {
	if id <= 0 {
		return Part{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Create validates req, stores its image and inserts the part stamped with
// the acting user.
func (s *Service) Create(ctx context.Context, req shared.Request) (Detail, error) {
	values, change, err := s.validate(ctx, req, shared.ModeCreate)
	if err != nil {
		return Detail{}, err
	}
	var p Part
	apply(values, &p)
	if actor, ok := internalShared.ActorFromContext(ctx); ok {
		p.CreatedBy = &actor
		p.UpdatedBy = &actor
	}
	stored, err := s.storeImage(ctx, change)
	if err != nil {
		return Detail{}, err
	}
	p.Image = stored

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		s.discard(ctx, stored)
		return Detail{}, supplierMissing(err, p.SupplierID)
	}
	s.audit.Record(ctx, internalShared.AuditCreate, created.ID, map[string]any{"name": created.Name})
	return s.resolveOne(ctx, created)
}

// Update validates req against the stored part. created_by is never altered.
func (s *Service) Update(ctx context.Context, id int64, req shared.Request, partial bool) (Detail, error) {
	existing, err := s.get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	values, change, err := s.validate(ctx, req, shared.UpdateMode(partial))
	if err != nil {
		return Detail{}, err
	}
	previousImage := existing.Image
	apply(values, &existing)
	if actor, ok := internalShared.ActorFromContext(ctx); ok {
		existing.UpdatedBy = &actor
	}
	if change.present {
		stored, err := s.storeImage(ctx, change)
		if err != nil {
			return Detail{}, err
		}
		existing.Image = stored
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		if change.present {
			s.discard(ctx, existing.Image)
		}
		return Detail{}, supplierMissing(err, existing.SupplierID)
	}
	if change.present {
		s.discard(ctx, previousImage)
	}
	s.audit.Record(ctx, internalShared.AuditUpdate, id, map[string]any{"partial": partial})
	return s.resolveOne(ctx, updated)
}

// Delete removes a part and schedules removal of its image.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.discard(ctx, deleted.Image)
	s.audit.Record(ctx, internalShared.AuditDelete, id, nil)
	return nil
}

// BulkDelete deletes every id or none of them.
func (s *Service) BulkDelete(ctx context.Context, ids []int64) (int, error) {
	var (
		deleted int
		images  []string
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		keys, err := tx.ImageKeys(ctx, ids)
		if err != nil {
			return fmt.Errorf("collect images: %w", err)
		}
		n, err := shared.DeleteLocked(ctx, tx, ids)
		if err != nil {
			return err
		}
		deleted, images = n, keys
		return nil
	})
	s.observer.ObserveBulkDelete(Entity, deleted, err)
	if err != nil {
		return 0, err
	}
	for _, key := range images {
		s.discard(ctx, &key)
	}
	s.audit.Record(ctx, internalShared.AuditBulkDelete, 0, map[string]any{"ids": ids, "deleted_count": deleted})
	return deleted, nil
}

func (s *Service) validate(ctx context.Context, req shared.Request, mode shared.Mode) (shared.Values, imageChange, error) {
	fieldErrs := httpx.FieldErrors{}
	values, err := shared.Validate(ctx, s.rules(), req.Fields, mode)
	if err != nil {
		if !errors.As(err, &fieldErrs) {
			return nil, imageChange{}, err
		}
	}
	change, msg := readImage(req)
	if msg != "" {
		fieldErrs.Add(FieldImage, msg)
	}
	if err := fieldErrs.Err(); err != nil {
		return nil, imageChange{}, err
	}
	return values, change, nil
}

func (s *Service) storeImage(ctx context.Context, change imageChange) (*string, error) {
	if change.image == nil {
		return nil, nil
	}
	if s.store == nil {
		return nil, errors.New("parts: image store not configured")
	}
	key := storage.NewKey(ImagePrefix, change.image.Extension)
	if err := s.store.Put(ctx, key, bytes.NewReader(change.image.Data)); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	return &key, nil
}

// discard removes an object that no part references any more.
func (s *Service) discard(ctx context.Context, key *string) {
	if key == nil || *key == "" {
		return
	}
	if s.purger != nil {
		err := s.purger.EnqueueImagePurge(ctx, *key)
		if err == nil {
			return
		}
		s.logger.Warn("enqueue image purge", slog.String("key", *key), slog.Any("error", err))
	}
	if s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, *key); err != nil {
		s.logger.Warn("delete image", slog.String("key", *key), slog.Any("error", err))
	}
}

func supplierMissing(err error, supplierID int64) error {
	if errors.Is(err, ErrSupplierMissing) {
		fieldErrs := httpx.FieldErrors{}
		fieldErrs.Add(FieldSupplierID, shared.MsgPKDoesNotExist(strconv.FormatInt(supplierID, 10)))
		return fieldErrs
	}
	return err
}

func (s *Service) resolveOne(ctx context.Context, p Part) (Detail, error) {
	details, err := s.resolve(ctx, []Part{p})
	if err != nil {
		return Detail{}, err
	}
	return details[0], nil
}

// resolve batch-loads suppliers and user profiles referenced by rows.
func (s *Service) resolve(ctx context.Context, rows []Part) ([]Detail, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	supplierIDs := make([]int64, 0, len(rows))
	userIDs := make([]int64, 0, len(rows)*2)
	for _, p := range rows {
		supplierIDs = append(supplierIDs, p.SupplierID)
		if p.CreatedBy != nil {
			userIDs = append(userIDs, *p.CreatedBy)
		}
		if p.UpdatedBy != nil {
			userIDs = append(userIDs, *p.UpdatedBy)
		}
	}
	supplierMap, err := s.suppliers.Lookup(ctx, supplierIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve suppliers: %w", err)
	}
	profiles := map[int64]users.Profile{}
	if s.profiles != nil && len(userIDs) > 0 {
		if profiles, err = s.profiles.Profiles(ctx, userIDs); err != nil {
			return nil, fmt.Errorf("resolve users: %w", err)
		}
	}

	out := make([]Detail, 0, len(rows))
	for _, p := range rows {
		d := Detail{Part: p}
		if sup, ok := supplierMap[p.SupplierID]; ok {
			d.Supplier = &sup
		}
		d.Creator = profileOf(profiles, p.CreatedBy)
		d.Updater = profileOf(profiles, p.UpdatedBy)
		out = append(out, d)
	}
	return out, nil
}

func profileOf(profiles map[int64]users.Profile, id *int64) *users.Profile {
	if id == nil {
		return nil
	}
	profile, ok := profiles[*id]
	if !ok {
		return nil
	}
	return &profile
}
