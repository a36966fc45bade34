package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/goayasushi/zaiko-be/jobs"
)

// Enqueuer submits purge tasks.
type Enqueuer interface {
	EnqueueImagePurge(ctx context.Context, key string) error
}

// Inspector is the subset of *asynq.Inspector the CLI needs.
type Inspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
	ListArchivedTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
	RunAllArchivedTasks(queue string) (int, error)
}

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	enqueuer  Enqueuer
	inspector Inspector
}

// NewJobsCLI wires the CLI helpers.
func NewJobsCLI(enqueuer Enqueuer, inspector Inspector) (*JobsCLI, error) {
	if enqueuer == nil || inspector == nil {
		return nil, errors.New("jobs cli: enqueuer and inspector required")
	}
	return &JobsCLI{enqueuer: enqueuer, inspector: inspector}, nil
}

// JobsOptions controls command output.
type JobsOptions struct {
	Stdout io.Writer
	Stderr io.Writer
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string `json:"queue"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
	Archived  int    `json:"archived"`
}

// ArchivedTask is a task that exhausted its retries.
type ArchivedTask struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Key      string    `json:"key,omitempty"`
	LastErr  string    `json:"last_error"`
	FailedAt time.Time `json:"failed_at"`
}

const jobsUsage = `usage: zaiko jobs <command> [flags]

commands:
  stats               show queue depth
  purge KEY...        enqueue image purges for stored object keys
  archived [-n N]     list purges that exhausted their retries
  retry-archived      requeue every archived task
`

// Run executes a jobs subcommand and returns the process exit code.
func (c *JobsCLI) Run(ctx context.Context, args []string, opts JobsOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if len(args) == 0 {
		fmt.Fprint(opts.Stderr, jobsUsage)
		return 2
	}

	fs := flag.NewFlagSet("jobs "+args[0], flag.ContinueOnError)
	fs.SetOutput(opts.Stderr)
	jsonOut := fs.Bool("json", false, "print JSON")
	size := fs.Int("n", 20, "number of archived tasks to list")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	var (
		result any
		err    error
	)
	switch args[0] {
	case "stats":
		result, err = c.InspectQueue(ctx)
	case "purge":
		if fs.NArg() == 0 {
			fmt.Fprintln(opts.Stderr, "jobs purge: at least one key required")
			return 2
		}
		result, err = c.Purge(ctx, fs.Args())
	case "archived":
		result, err = c.ListArchived(ctx, *size)
	case "retry-archived":
		var n int
		n, err = c.inspector.RunAllArchivedTasks(jobs.QueueDefault)
		result = map[string]int{"requeued": n}
	default:
		fmt.Fprintf(opts.Stderr, "jobs: unknown command %q\n\n%s", args[0], jobsUsage)
		return 2
	}
	if err != nil {
		fmt.Fprintf(opts.Stderr, "jobs %s: %v\n", args[0], err)
		return 1
	}
	if *jsonOut {
		enc := json.NewEncoder(opts.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(opts.Stderr, "jobs %s: encode: %v\n", args[0], err)
			return 1
		}
		return 0
	}
	writeText(opts.Stdout, result)
	return 0
}

// InspectQueue reports the queue metrics for the default queue.
func (c *JobsCLI) InspectQueue(ctx context.Context) (QueueStats, error) {
	stats := QueueStats{Queue: jobs.QueueDefault}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		if errors.Is(err, asynq.ErrQueueNotFound) {
			return stats, nil
		}
		return QueueStats{}, err
	}
	stats.Pending = info.Pending
	stats.Active = info.Active
	stats.Scheduled = info.Scheduled
	stats.Retry = info.Retry
	stats.Archived = info.Archived
	return stats, nil
}

// Purge enqueues one purge per key and stops at the first failure.
func (c *JobsCLI) Purge(ctx context.Context, keys []string) ([]string, error) {
	queued := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := c.enqueuer.EnqueueImagePurge(ctx, key); err != nil {
			return queued, fmt.Errorf("%s: %w", key, err)
		}
		queued = append(queued, strings.TrimSpace(key))
	}
	return queued, nil
}

// ListArchived returns archived tasks of the default queue.
func (c *JobsCLI) ListArchived(ctx context.Context, size int) ([]ArchivedTask, error) {
	if size <= 0 {
		size = 20
	}
	infos, err := c.inspector.ListArchivedTasks(jobs.QueueDefault, asynq.PageSize(size), asynq.Page(1))
	if err != nil {
		if errors.Is(err, asynq.ErrQueueNotFound) {
			return []ArchivedTask{}, nil
		}
		return nil, err
	}
	out := make([]ArchivedTask, 0, len(infos))
	for _, info := range infos {
		task := ArchivedTask{ID: info.ID, Type: info.Type, LastErr: info.LastErr, FailedAt: info.LastFailedAt}
		if info.Type == jobs.TaskPartImagePurge {
			var payload jobs.ImagePurgePayload
			if json.Unmarshal(info.Payload, &payload) == nil {
				task.Key = payload.Key
			}
		}
		out = append(out, task)
	}
	return out, nil
}

func writeText(w io.Writer, result any) {
	switch v := result.(type) {
	case QueueStats:
		fmt.Fprintf(w, "queue=%s pending=%d active=%d scheduled=%d retry=%d archived=%d\n",
			v.Queue, v.Pending, v.Active, v.Scheduled, v.Retry, v.Archived)
	case []string:
		for _, key := range v {
			fmt.Fprintf(w, "queued purge %s\n", key)
		}
	case []ArchivedTask:
		if len(v) == 0 {
			fmt.Fprintln(w, "no archived tasks")
		}
		for _, task := range v {
			fmt.Fprintf(w, "%s %s key=%s failed_at=%s error=%s\n",
				task.ID, task.Type, task.Key, task.FailedAt.Format(time.RFC3339), task.LastErr)
		}
	case map[string]int:
		fmt.Fprintf(w, "requeued %d tasks\n", v["requeued"])
	}
}
