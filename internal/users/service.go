package users

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/sync/singleflight"
)

// Store defines data access methods for users.
type Store interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	Get(ctx context.Context, id int64) (User, error)
	ListByIDs(ctx context.Context, ids []int64) ([]User, error)
}

// Service resolves users for authentication and for creator/updater stamps.
type Service struct {
	store  Store
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
}

// NewService builds Service instance. cache may be nil.
func NewService(store Store, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, cache: cache, logger: logger}
}

// FindByEmail returns the account with its password hash for credential checks.
func (s *Service) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.store.FindByEmail(ctx, email)
}

// Get returns a user by id, consulting the cache first. Concurrent lookups of
// the same id share one store round trip.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	if u, ok, err := s.cache.Get(ctx, id); err != nil {
		s.logger.Warn("user cache get", slog.Int64("user_id", id), slog.Any("error", err))
	} else if ok {
		return u, nil
	}
	result := s.group.DoChan(strconv.FormatInt(id, 10), func() (interface{}, error) {
		u, err := s.store.Get(ctx, id)
		if err != nil {
			return User{}, err
		}
		if err := s.cache.Set(ctx, u); err != nil {
			s.logger.Warn("user cache set", slog.Int64("user_id", id), slog.Any("error", err))
		}
		return u, nil
	})
	select {
	case <-ctx.Done():
		return User{}, ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return User{}, res.Err
		}
		return res.Val.(User), nil
	}
}

// Profiles resolves ids to public profiles in one query. Ids that no longer
// exist are absent from the result.
func (s *Service) Profiles(ctx context.Context, ids []int64) (map[int64]Profile, error) {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	out := make(map[int64]Profile, len(unique))
	if len(unique) == 0 {
		return out, nil
	}
	list, err := s.store.ListByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	for _, u := range list {
		out[u.ID] = u.Profile()
	}
	return out, nil
}

// Invalidate drops a cached user after an account change.
func (s *Service) Invalidate(ctx context.Context, id int64) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("user cache invalidate", slog.Int64("user_id", id), slog.Any("error", err))
	}
}

var _ Store = (*Repository)(nil)
