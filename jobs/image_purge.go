package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/goayasushi/zaiko-be/internal/jobs"
	"github.com/goayasushi/zaiko-be/internal/platform/storage"
)

// ImagePurgeJob deletes replaced or orphaned part images from the store.
type ImagePurgeJob struct {
	Store   storage.Store
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewImagePurgeJob wires dependencies for the purge handler.
func NewImagePurgeJob(store storage.Store, logger *slog.Logger, metrics *jobmetrics.Metrics) *ImagePurgeJob {
	return &ImagePurgeJob{Store: store, Logger: logger, Metrics: metrics}
}

// Handle processes TaskPartImagePurge tasks. Missing objects count as removed.
func (j *ImagePurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("image purge: handler not configured")
	}
	var payload ImagePurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.Key == "" {
		return fmt.Errorf("image purge: bad payload: %w", asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskPartImagePurge)
	logger := j.logger().With(slog.String("key", payload.Key))
	if err := j.Store.Delete(ctx, payload.Key); err != nil {
		logger.Error("purge part image", slog.Any("error", err))
		return tracker.End(err)
	}
	logger.Info("purged part image")
	return tracker.End(nil)
}

func (j *ImagePurgeJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *ImagePurgeJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
