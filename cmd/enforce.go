package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zjrosen/govkit/internal/enforce"
	"github.com/zjrosen/govkit/internal/tracing"
)

func newEnforceCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "enforce",
		Short: "Run the no-debt rules over the specification tree",
		Long: `Scan specs/ for forbidden tokens, standalone ellipses, pre-seal signature
files, emoji, forbidden paths, missing governance files and CRLF line
endings. Soft/advisory language is reported as a warning only.

Rules and exclusions are configured under "enforce" in the config file.`,
		Args: cobra.NoArgs,
		RunE: c.action(func(cmd *cobra.Command, _ []string, e *env) error {
			return e.run(cmd.Context(), "enforce", func(context.Context) (tracing.Outcome, error) {
				return runEnforce(e)
			})
		}),
	}
}

func runEnforce(e *env) (tracing.Outcome, error) {
	ec := e.cfg.Enforce
	enforcer, err := enforce.New(e.fsys, enforce.Options{
		SpecsDir:        e.cfg.SpecsDir,
		Excludes:        ec.Excludes,
		ForbiddenTokens: ec.ForbiddenTokens,
		SoftPatterns:    ec.SoftPatterns,
		ForbiddenPaths:  ec.ForbiddenPaths,
		RequiredFiles:   ec.RequiredFiles,
	})
	if err != nil {
		return tracing.Outcome{}, err
	}
	report, err := enforcer.Run()
	if err != nil {
		return tracing.Outcome{}, err
	}

	e.printer.Printf("Repository: %s", e.root)
	e.printer.Blank()
	e.printer.CheckReport(report)
	return tracing.Outcome{Passed: report.Passed(), Messages: report.Messages()}, enforce.Err(report)
}
