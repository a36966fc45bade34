package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/goayasushi/zaiko-be/jobs"
)

type enqueuerStub struct {
	keys []string
	fail string
}

func (s *enqueuerStub) EnqueueImagePurge(ctx context.Context, key string) error {
	if key == s.fail {
		return errors.New("redis down")
	}
	s.keys = append(s.keys, key)
	return nil
}

type inspectorStub struct {
	info     *asynq.QueueInfo
	infoErr  error
	archived []*asynq.TaskInfo
	requeued int
}

func (s *inspectorStub) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.infoErr
}

func (s *inspectorStub) ListArchivedTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return s.archived, nil
}

func (s *inspectorStub) RunAllArchivedTasks(queue string) (int, error) {
	return s.requeued, nil
}

func run(t *testing.T, c *JobsCLI, args ...string) (int, string, string) {
	t.Helper()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	code := c.Run(context.Background(), args, JobsOptions{Stdout: stdout, Stderr: stderr})
	return code, stdout.String(), stderr.String()
}

func TestJobsStats(t *testing.T) {
	c, err := NewJobsCLI(&enqueuerStub{}, &inspectorStub{info: &asynq.QueueInfo{Queue: jobs.QueueDefault, Pending: 2, Archived: 1}})
	require.NoError(t, err)

	code, out, _ := run(t, c, "stats", "-json")
	require.Equal(t, 0, code)
	var stats QueueStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	require.Equal(t, 2, stats.Pending)
	require.Equal(t, 1, stats.Archived)

	c, err = NewJobsCLI(&enqueuerStub{}, &inspectorStub{infoErr: asynq.ErrQueueNotFound})
	require.NoError(t, err)
	code, out, _ = run(t, c, "stats")
	require.Equal(t, 0, code)
	require.Contains(t, out, "queue=default pending=0")
}

func TestJobsPurge(t *testing.T) {
	enq := &enqueuerStub{fail: "parts/bad.png"}
	c, err := NewJobsCLI(enq, &inspectorStub{})
	require.NoError(t, err)

	code, out, _ := run(t, c, "purge", "parts/a.png", "parts/b.png")
	require.Equal(t, 0, code)
	require.Equal(t, []string{"parts/a.png", "parts/b.png"}, enq.keys)
	require.Contains(t, out, "queued purge parts/b.png")

	code, _, errOut := run(t, c, "purge", "parts/bad.png")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "redis down")

	code, _, _ = run(t, c, "purge")
	require.Equal(t, 2, code)
}

func TestJobsArchived(t *testing.T) {
	payload, _ := json.Marshal(jobs.ImagePurgePayload{Key: "parts/x.png"})
	failedAt := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	c, err := NewJobsCLI(&enqueuerStub{}, &inspectorStub{
		archived: []*asynq.TaskInfo{{ID: "t1", Type: jobs.TaskPartImagePurge, Payload: payload, LastErr: "permission denied", LastFailedAt: failedAt}},
		requeued: 1,
	})
	require.NoError(t, err)

	code, out, _ := run(t, c, "archived", "-json", "-n", "5")
	require.Equal(t, 0, code)
	var tasks []ArchivedTask
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	require.Len(t, tasks, 1)
	require.Equal(t, "parts/x.png", tasks[0].Key)
	require.Equal(t, "permission denied", tasks[0].LastErr)

	code, out, _ = run(t, c, "retry-archived")
	require.Equal(t, 0, code)
	require.Equal(t, "requeued 1 tasks\n", out)
}

func TestJobsUnknownCommand(t *testing.T) {
	c, err := NewJobsCLI(&enqueuerStub{}, &inspectorStub{})
	require.NoError(t, err)

	code, _, errOut := run(t, c, "reindex")
	require.Equal(t, 2, code)
	require.Contains(t, errOut, "unknown command")

	code, _, _ = run(t, c)
	require.Equal(t, 2, code)

	_, err = NewJobsCLI(nil, &inspectorStub{})
	require.Error(t, err)
}
