package jobs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/goayasushi/zaiko-be/internal/jobs"
	"github.com/goayasushi/zaiko-be/internal/platform/storage"
)

func TestNewImagePurgeTask(t *testing.T) {
	task, err := NewImagePurgeTask(" parts/a.png ")
	require.NoError(t, err)
	require.Equal(t, TaskPartImagePurge, task.Type())
	require.JSONEq(t, `{"key":"parts/a.png"}`, string(task.Payload()))

	_, err = NewImagePurgeTask("  ")
	require.Error(t, err)
}

func TestImagePurgeJobRemovesObject(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewLocal(root, "/media/")
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "parts/a.png", bytes.NewReader([]byte("img"))))

	job := NewImagePurgeJob(store, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	task, err := NewImagePurgeTask("parts/a.png")
	require.NoError(t, err)

	require.NoError(t, job.Handle(ctx, task))
	_, err = os.Stat(filepath.Join(root, "parts", "a.png"))
	require.True(t, os.IsNotExist(err))

	// A second run finds nothing to remove.
	require.NoError(t, job.Handle(ctx, task))
}

func TestImagePurgeJobSkipsBadPayload(t *testing.T) {
	job := NewImagePurgeJob(&failingStore{}, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	err := job.Handle(context.Background(), asynq.NewTask(TaskPartImagePurge, []byte(`{`)))
	require.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(context.Background(), asynq.NewTask(TaskPartImagePurge, []byte(`{"key":""}`)))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestImagePurgeJobRetriesStoreFailure(t *testing.T) {
	store := &failingStore{err: errors.New("disk busy")}
	job := NewImagePurgeJob(store, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	task, err := NewImagePurgeTask("parts/b.png")
	require.NoError(t, err)

	err = job.Handle(context.Background(), task)
	require.ErrorIs(t, err, store.err)
	require.NotErrorIs(t, err, asynq.SkipRetry)
	require.Equal(t, []string{"parts/b.png"}, store.deleted)
}

type failingStore struct {
	err     error
	deleted []string
}

func (s *failingStore) Put(ctx context.Context, key string, r io.Reader) error { return s.err }

func (s *failingStore) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return s.err
}

func (s *failingStore) URL(key string) string { return "/media/" + key }
