package sqlite

import (
	"encoding/json"
	"time"

	"github.com/zjrosen/govkit/internal/domain/audit"
)

// RunModel is the database row for the runs table. Times are Unix
// milliseconds; messages are a JSON array.
type RunModel struct {
	ID         string
	Command    string
	RepoRoot   string
	Passed     bool
	Messages   string
	TraceID    string
	StartedAt  int64
	FinishedAt int64
}

func toRunModel(r *audit.Run) (*RunModel, error) {
	msgs := r.Messages
	if msgs == nil {
		msgs = []string{}
	}
	encoded, err := json.Marshal(msgs)
	if err != nil {
		return nil, err
	}
	return &RunModel{
		ID:         r.ID,
		Command:    r.Command,
		RepoRoot:   r.RepoRoot,
		Passed:     r.Passed,
		Messages:   string(encoded),
		TraceID:    r.TraceID,
		StartedAt:  r.StartedAt.UnixMilli(),
		FinishedAt: r.FinishedAt.UnixMilli(),
	}, nil
}

func (m *RunModel) toDomain() (*audit.Run, error) {
	var msgs []string
	if err := json.Unmarshal([]byte(m.Messages), &msgs); err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []string{}
	}
	return &audit.Run{
		ID:         m.ID,
		Command:    m.Command,
		RepoRoot:   m.RepoRoot,
		Passed:     m.Passed,
		Messages:   msgs,
		TraceID:    m.TraceID,
		StartedAt:  time.UnixMilli(m.StartedAt).UTC(),
		FinishedAt: time.UnixMilli(m.FinishedAt).UTC(),
	}, nil
}
