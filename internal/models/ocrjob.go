package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further transition may leave the status.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

type JobMetrics struct {
	Pages       int     `json:"pages,omitempty"`
	DurationMs  int64   `json:"duration_ms,omitempty"`
	GarbageRate float64 `json:"garbage_rate,omitempty"`
}

// OcrJob is one attempt at extracting text from a Document. At most one
// non-terminal job exists per document; requeue replaces the document's
// job link and leaves the orphaned attempt queryable by id for audit.
type OcrJob struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	OrgID        uuid.UUID  `json:"org_id" db:"org_id"`
	DocumentID   uuid.UUID  `json:"document_id" db:"document_id"`
	Status       JobStatus  `json:"status" db:"status"`
	Engine       string     `json:"engine,omitempty" db:"engine"`
	Attempt      int        `json:"attempt" db:"attempt"`
	QueuedAt     time.Time  `json:"queued_at" db:"queued_at"`
	StartedAt    *time.Time `json:"started_at,omitempty" db:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	Metrics      JobMetrics `json:"metrics"`
	ErrorMessage string     `json:"error_message,omitempty" db:"error_message"`
}
