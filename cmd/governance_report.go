package cmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zjrosen/govkit/internal/report"
	"github.com/zjrosen/govkit/internal/scan"
	"github.com/zjrosen/govkit/internal/tracing"
)

func newGovernanceReportCmd(c *cli) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "governance-report",
		Short: "Summarise document status, integrity and governance debt",
		Long: `Scan every document header under specs/ and report counts by status,
document type, trust class, classification and authority tier, integrity
coverage, schema versions and outstanding governance debt.

Formats: json, json-pretty, table, summary, markdown (default from
report.format). --output writes the JSON formats to a file.

Examples:
  govkit governance-report
  govkit governance-report --format summary
  govkit governance-report --format json-pretty --output report.json`,
		Args: cobra.NoArgs,
		RunE: c.action(func(cmd *cobra.Command, _ []string, e *env) error {
			if !cmd.Flags().Changed("format") {
				format = e.cfg.Report.Format
			}
			return e.run(cmd.Context(), "governance-report", func(context.Context) (tracing.Outcome, error) {
				return runGovernanceReport(e, format, output)
			})
		}),
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: json, json-pretty, table, summary, markdown")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON output to this file")
	return cmd
}

func runGovernanceReport(e *env, format, output string) (tracing.Outcome, error) {
	f, err := report.ParseFormat(format)
	if err != nil {
		return tracing.Outcome{}, err
	}
	w, err := scan.NewWalker(e.fsys, report.DefaultExcludes)
	if err != nil {
		return tracing.Outcome{}, err
	}

	gen := report.NewGenerator(w, e.cfg.SpecsDir, filepath.Base(e.root),
		report.WithVersion(version),
		report.WithClock(e.now),
	)
	r, err := gen.Generate()
	if err != nil {
		return tracing.Outcome{}, err
	}
	if err := report.Write(e.printer, r, f, output); err != nil {
		return tracing.Outcome{}, err
	}
	return tracing.Outcome{Passed: true}, nil
}
