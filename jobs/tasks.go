package jobs

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPartImagePurge removes a part image that is no longer referenced.
	TaskPartImagePurge = "parts:image:purge"
)

// ImagePurgePayload names the stored object to remove.
type ImagePurgePayload struct {
	Key string `json:"key"`
}

// NewImagePurgeTask builds a purge task for key.
func NewImagePurgeTask(key string) (*asynq.Task, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("jobs: image key required")
	}
	body, err := json.Marshal(ImagePurgePayload{Key: key})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPartImagePurge, body, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}
