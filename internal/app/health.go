package app

import (
	"context"
	"fmt"
	"time"

	"github.com/hellofresh/health-go/v5"
	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewReadiness builds the dependency report served at /health/ready.
func NewReadiness(version string, db Pinger, rdb redis.UniversalClient) (*health.Health, error) {
	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    "zaiko-be",
			Version: version,
		}),
		health.WithChecks(
			health.Config{
				Name:    "postgres",
				Timeout: 3 * time.Second,
				Check: func(ctx context.Context) error {
					if db == nil {
						return fmt.Errorf("postgres pool is not initialized")
					}
					return db.Ping(ctx)
				},
			},
			health.Config{
				Name:    "redis",
				Timeout: 2 * time.Second,
				Check: func(ctx context.Context) error {
					if rdb == nil {
						return fmt.Errorf("redis client is not initialized")
					}
					return rdb.Ping(ctx).Err()
				},
			},
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}
	return h, nil
}
