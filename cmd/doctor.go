package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zjrosen/govkit/internal/doctor"
	"github.com/zjrosen/govkit/internal/tracing"
)

func newDoctorCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the repository is ready for governance work",
		Args:  cobra.NoArgs,
		RunE: c.action(func(cmd *cobra.Command, _ []string, e *env) error {
			return e.run(cmd.Context(), "doctor", func(context.Context) (tracing.Outcome, error) {
				report := doctor.Run(e.fsys, doctor.Options{
					SpecsDir:      e.cfg.SpecsDir,
					RegistryPath:  e.cfg.RegistryPath,
					RequiredFiles: e.cfg.Enforce.RequiredFiles,
				})
				e.printer.Printf("Repository: %s", e.root)
				e.printer.Blank()
				e.printer.CheckReport(report)
				return tracing.Outcome{Passed: report.Passed(), Messages: report.Messages()}, doctor.Err(report)
			})
		}),
	}
}
