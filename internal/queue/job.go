// Package queue implements the Job Queue Gateway (spec.md §4.9): a
// durable enqueue/status surface for render and demo-capture jobs,
// backed by Redis with an in-memory fallback for local/test use.
package queue

import (
	"time"

	"github.com/apresai/narrated-demo/internal/config"
)

// RunType enumerates the two background job kinds spec.md §4.9 names.
type RunType string

const (
	RunTypeRender      RunType = "render"
	RunTypeDemoCapture RunType = "demo_capture"
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusStarted  Status = "started"
	StatusFinished Status = "finished"
	StatusFailed   Status = "failed"
)

// maxErrorChars bounds how much of a failure's stack/message is retained
// on the job record, per spec.md §7.
const maxErrorChars = 2000

// Job is the full record spec.md §4.9 describes for one background run.
type Job struct {
	JobID         string               `json:"job_id"`
	RunType       RunType              `json:"run_type"`
	ProjectID     string               `json:"project_id"`
	ExecutionMode config.ExecutionMode `json:"execution_mode,omitempty"`
	NarrationMode config.NarrationMode `json:"narration_mode,omitempty"`
	Status        Status               `json:"status"`
	QueuedAt      time.Time            `json:"queued_at"`
	EnqueuedAt    time.Time            `json:"enqueued_at"`
	StartedAt     *time.Time           `json:"started_at,omitempty"`
	EndedAt       *time.Time           `json:"ended_at,omitempty"`
	FuncName      string               `json:"func_name"`
	Result        any                  `json:"result,omitempty"`
	Error         string               `json:"error,omitempty"`
	QueueName     string               `json:"queue_name"`
}

// EnqueueInput describes a new job at enqueue time.
type EnqueueInput struct {
	RunType       RunType
	ProjectID     string
	ExecutionMode config.ExecutionMode
	NarrationMode config.NarrationMode
	FuncName      string
	QueueName     string
}

// NotFoundError reports a job_id with no matching record.
type NotFoundError struct {
	JobID string
}

func (e *NotFoundError) Error() string {
	return "job not found: " + e.JobID
}

func truncateError(s string) string {
	if len(s) <= maxErrorChars {
		return s
	}
	return s[len(s)-maxErrorChars:]
}
