package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskWarmBilling refetches billing items into the shared cache.
	TaskWarmBilling = "billdash:warm_billing"
	// TaskWarmNursery refetches the unfiltered nursery listing into the shared cache.
	TaskWarmNursery = "billdash:warm_nursery"
)

// WarmPayload controls a cache warm run.
type WarmPayload struct {
	// Invalidate bumps the cache version before fetching so every reader,
	// including running dashboards, picks up fresh data.
	Invalidate bool `json:"invalidate"`
}

// NewWarmTask builds a warm task of the given type.
func NewWarmTask(taskType string, invalidate bool) (*asynq.Task, error) {
	body, err := json.Marshal(WarmPayload{Invalidate: invalidate})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, body, asynq.Queue(QueueDefault)), nil
}
