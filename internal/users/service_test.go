package users

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu    sync.Mutex
	users map[int64]User
	gets  atomic.Int32
}

func newMemoryStore(users ...User) *memoryStore {
	s := &memoryStore{users: make(map[int64]User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memoryStore) FindByEmail(ctx context.Context, email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == NormalizeEmail(email) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *memoryStore) Get(ctx context.Context, id int64) (User, error) {
	s.gets.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *memoryStore) ListByIDs(ctx context.Context, ids []int64) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func newCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestServiceGetUsesCache(t *testing.T) {
	store := newMemoryStore(User{ID: 1, Email: "taro@example.com", PasswordHash: "secret-hash", FirstName: "太郎", IsActive: true})
	cache, mr := newCache(t)
	svc := NewService(store, cache, nil)
	ctx := context.Background()

	u, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "太郎", u.FirstName)
	require.True(t, mr.Exists("users:1"))

	raw, err := mr.Get("users:1")
	require.NoError(t, err)
	require.NotContains(t, raw, "secret-hash")

	u, err = svc.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "taro@example.com", u.Email)
	require.Equal(t, int32(1), store.gets.Load())

	svc.Invalidate(ctx, 1)
	require.False(t, mr.Exists("users:1"))
}

func TestServiceGetMissing(t *testing.T) {
	svc := NewService(newMemoryStore(), nil, nil)
	_, err := svc.Get(context.Background(), 9)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCacheTTL(t *testing.T) {
	cache, mr := newCache(t)
	require.NoError(t, cache.Set(context.Background(), User{ID: 3, Email: "a@b.co"}))
	require.Equal(t, time.Minute, mr.TTL("users:3"))

	mr.FastForward(2 * time.Minute)
	_, ok, err := cache.Get(context.Background(), 3)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestProfilesSkipsUnknownAndDuplicates(t *testing.T) {
	store := newMemoryStore(
		User{ID: 1, Email: "a@example.com", IsActive: true},
		User{ID: 2, Email: "b@example.com", IsStaff: true},
	)
	svc := NewService(store, nil, nil)

	profiles, err := svc.Profiles(context.Background(), []int64{1, 2, 2, 0, 42})
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	require.True(t, profiles[2].IsStaff)
	_, ok := profiles[42]
	require.False(t, ok)
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "Taro@example.com", NormalizeEmail(" Taro@EXAMPLE.com "))
	require.Equal(t, "no-at", NormalizeEmail("no-at"))
}
