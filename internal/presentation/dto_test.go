package presentation

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/govkit/internal/domain/audit"
)

func TestFromRuns(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	run := &audit.Run{
		ID:         "run-1",
		Command:    "graph-verify",
		RepoRoot:   "/repo",
		Passed:     false,
		Messages:   nil,
		StartedAt:  start,
		FinishedAt: start.Add(250 * time.Millisecond),
	}

	dtos := FromRuns([]*audit.Run{run})
	require.Len(t, dtos, 1)
	require.Equal(t, int64(250), dtos[0].DurationMS)
	require.NotNil(t, dtos[0].Messages)

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf).FormatCompact(dtos))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, []any{}, decoded[0]["messages"])
	require.NotContains(t, decoded[0], "trace_id")
	require.Equal(t, "2026-01-02T03:04:05Z", decoded[0]["started_at"])
}

func TestFromRuns_Empty(t *testing.T) {
	dtos := FromRuns(nil)
	require.NotNil(t, dtos)
	require.Empty(t, dtos)
}
