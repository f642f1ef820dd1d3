package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/govkit/internal/domain/audit"
	"github.com/zjrosen/govkit/internal/infrastructure/sqlite"
	"github.com/zjrosen/govkit/internal/presentation"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent recorded command runs as JSON",
		Long: `List the most recent command runs recorded in the audit database, newest
first. Runs are recorded when audit.enabled is true.

Examples:
  govkit history
  govkit history --limit 5 | jq '.[] | select(.passed == false)'`,
		Args: cobra.NoArgs,
		RunE: c.action(func(cmd *cobra.Command, _ []string, e *env) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			runs, err := recentRuns(cmd, e, limit)
			if err != nil {
				return err
			}
			return presentation.NewFormatter(e.printer.Writer()).FormatJSON(presentation.FromRuns(runs))
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs (0 for all)")
	return cmd
}

// recentRuns reads the audit database even when recording is disabled, so
// earlier history stays visible. A missing database has no runs.
func recentRuns(cmd *cobra.Command, e *env, limit int) ([]*audit.Run, error) {
	repo := e.runs
	if repo == nil {
		p := e.auditPath()
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		db, err := sqlite.NewDB(p)
		if err != nil {
			return nil, err
		}
		defer func() { _ = db.Close() }()
		repo = db.RunRepository()
	}
	return repo.Recent(cmd.Context(), limit)
}
