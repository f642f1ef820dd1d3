package presentation

import (
	"time"

	"github.com/zjrosen/govkit/internal/domain/audit"
)

// RunDTO is the JSON shape of one audit history entry.
type RunDTO struct {
	ID         string    `json:"id"`
	Command    string    `json:"command"`
	RepoRoot   string    `json:"repo_root"`
	Passed     bool      `json:"passed"`
	Messages   []string  `json:"messages"` // always present, possibly empty
	TraceID    string    `json:"trace_id,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMS int64     `json:"duration_ms"`
}

// FromRun converts a domain run to its DTO.
func FromRun(r *audit.Run) RunDTO {
	msgs := r.Messages
	if msgs == nil {
		msgs = []string{}
	}
	return RunDTO{
		ID:         r.ID,
		Command:    r.Command,
		RepoRoot:   r.RepoRoot,
		Passed:     r.Passed,
		Messages:   msgs,
		TraceID:    r.TraceID,
		StartedAt:  r.StartedAt.UTC(),
		FinishedAt: r.FinishedAt.UTC(),
		DurationMS: r.Duration().Milliseconds(),
	}
}

// FromRuns converts runs, preserving order. The result is never nil.
func FromRuns(runs []*audit.Run) []RunDTO {
	dtos := make([]RunDTO, len(runs))
	for i, r := range runs {
		dtos[i] = FromRun(r)
	}
	return dtos
}
