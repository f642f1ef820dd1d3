package check

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReport_Counts(t *testing.T) {
	var r Report
	require.True(t, r.Passed())

	r.Add(Pass("Forbidden tokens", "No forbidden tokens found"))
	r.Add(Fail("CRLF line endings", "CRLF line endings found", []string{"specs/a.md: Contains CRLF"}))
	r.Add(Warn("Soft language", "Soft language found", []string{"specs/b.md: perhaps"}))
	r.Add(Skip("Unit paths", "registry invalid"))

	require.False(t, r.Passed())
	require.Equal(t, 2, r.FailedCount())
	require.Equal(t, 1, r.WarningCount())
	require.Equal(t, []string{"specs/a.md: Contains CRLF", "Unit paths: registry invalid"}, r.Messages())
}
