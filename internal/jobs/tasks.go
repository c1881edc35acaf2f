// Package jobs holds the background tasks keeping report caches fresh.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsRefresh invalidates and rebuilds every cached report.
	TaskReportsRefresh = "reports:refresh"
)

// ReportsRefreshPayload describes why a refresh was requested.
type ReportsRefreshPayload struct {
	Reason string `json:"reason"`
}

// NewReportsRefreshTask constructs an Asynq task.
func NewReportsRefreshTask(payload ReportsRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsRefresh, data), nil
}
