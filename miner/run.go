package miner

import (
	"time"

	"github.com/teranos/graphminer/edgelist"
)

// Status of one dataset within a mining batch
type Status string

const (
	StatusRunning     Status = "running"
	StatusCompleted   Status = "completed"
	StatusUnsupported Status = "unsupported"
	StatusFailed      Status = "failed"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusRunning, StatusCompleted, StatusUnsupported, StatusFailed:
		return true
	}
	return false
}

// Run records the outcome of mining one dataset
type Run struct {
	ID          string               `json:"id"`
	BatchID     string               `json:"batch_id"`
	Repository  string               `json:"repository"`
	Dataset     string               `json:"dataset"`
	StoredName  string               `json:"stored_name"`
	Status      Status               `json:"status"`
	Error       string               `json:"error,omitempty"`
	URLs        []string             `json:"urls,omitempty"`
	Parameters  *edgelist.Parameters `json:"parameters,omitempty"`
	Summary     *edgelist.Summary    `json:"summary,omitempty"`
	Citations   []string             `json:"citations,omitempty"`
	StartedAt   *time.Time           `json:"started_at,omitempty"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// Duration is the wall time of a finished run
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil || r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(*r.StartedAt)
}
