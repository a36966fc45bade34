package users

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "users:"

// Cache keeps active user records in Redis so the auth middleware does not hit
// Postgres on every request.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

type cachedUser struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	IsActive    bool      `json:"is_active"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	DateJoined  time.Time `json:"date_joined"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func key(id int64) string {
	return cacheKeyPrefix + strconv.FormatInt(id, 10)
}

// Get loads a cached user. The bool is false on a miss.
func (c *Cache) Get(ctx context.Context, id int64) (User, bool, error) {
	if c == nil || c.client == nil {
		return User{}, false, nil
	}
	raw, err := c.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	var cu cachedUser
	if err := json.Unmarshal(raw, &cu); err != nil {
		_ = c.client.Del(ctx, key(id)).Err()
		return User{}, false, nil
	}
	return User{
		ID:          cu.ID,
		Email:       cu.Email,
		FirstName:   cu.FirstName,
		LastName:    cu.LastName,
		IsActive:    cu.IsActive,
		IsStaff:     cu.IsStaff,
		IsSuperuser: cu.IsSuperuser,
		DateJoined:  cu.DateJoined,
		UpdatedAt:   cu.UpdatedAt,
	}, true, nil
}

// Set stores u without its password hash.
func (c *Cache) Set(ctx context.Context, u User) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(cachedUser{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		DateJoined:  u.DateJoined,
		UpdatedAt:   u.UpdatedAt,
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(u.ID), raw, c.ttl).Err()
}

// Invalidate drops the cached entry for id.
func (c *Cache) Invalidate(ctx context.Context, id int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, key(id)).Err()
}
