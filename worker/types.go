package worker

import (
	"time"

	"listing-manager/bulk"
)

// JobState is the lifecycle of one queued row. Only pending jobs move, and
// only to a terminal state.
type JobState string

const (
	StatePending JobState = "pending"
	StateSuccess JobState = "success"
	StateFailed  JobState = "failed"
)

// Job is one CSV row waiting for, or done with, submission.
type Job struct {
	ID         int64
	BatchID    string
	Row        bulk.Row
	Columns    []string
	Format     bulk.Format
	Credential string
	State      JobState

	ResultItemID string
	Error        string
	RawDetails   any

	EnqueuedAt time.Time
	FinishedAt time.Time
}

// Submission is what an upload learns about the batch it joined.
type Submission struct {
	BatchID   string
	Added     int
	QueueSize int
	Appended  bool
}
