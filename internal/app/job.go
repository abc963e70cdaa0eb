package app

import (
	"time"
)

// JobStatus is the lifecycle state of an asynchronous run.
type JobStatus string

// Job states.
const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// RunSummary describes one completed linkage run.
type RunSummary struct {
	RunID     string        `json:"run_id"`
	RaceID    string        `json:"race_id"`
	Official  int           `json:"official"`
	Community int           `json:"community"`
	Dropped   int           `json:"dropped"`
	Matched   int           `json:"matched"`
	Duration  time.Duration `json:"duration_ns"`
}

// Job is a snapshot of an asynchronous run.
type Job struct {
	ID          string      `json:"id"`
	RaceID      string      `json:"race_id"`
	Status      JobStatus   `json:"status"`
	SubmittedAt time.Time   `json:"submitted_at"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	FinishedAt  *time.Time  `json:"finished_at,omitempty"`
	Summary     *RunSummary `json:"summary,omitempty"`
	Error       string      `json:"error,omitempty"`
}

func (j Job) finished() bool {
	return j.Status == JobDone || j.Status == JobFailed
}
