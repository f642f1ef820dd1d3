// Package audit models the run history: one Run per govkit command
// invocation, recorded when auditing is enabled.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded command invocation.
type Run struct {
	ID         string
	Command    string
	RepoRoot   string
	Passed     bool
	Messages   []string
	TraceID    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewRun starts a run with a fresh id.
func NewRun(command, repoRoot string, startedAt time.Time) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Command:   command,
		RepoRoot:  repoRoot,
		Messages:  []string{},
		StartedAt: startedAt,
	}
}

// Finish records the outcome of the run.
func (r *Run) Finish(passed bool, messages []string, finishedAt time.Time) {
	r.Passed = passed
	r.Messages = make([]string, len(messages))
	copy(r.Messages, messages)
	r.FinishedAt = finishedAt
}

// Duration is the wall time of a finished run.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Repository persists runs.
type Repository interface {
	Save(ctx context.Context, run *Run) error
	FindByID(ctx context.Context, id string) (*Run, error)
	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]*Run, error)
}
