package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/govkit/internal/application/units"
	"github.com/zjrosen/govkit/internal/domain/check"
	"github.com/zjrosen/govkit/internal/presentation"
	"github.com/zjrosen/govkit/internal/tracing"
)

func newUnitValidateCmd(c *cli) *cobra.Command {
	var unitPath string

	cmd := &cobra.Command{
		Use:   "unit-validate",
		Short: "Validate the unit registry against UNIT.json declarations",
		Long: `Validate every registered unit: the declaration must exist and parse, its
unit_id must match the registry key, unit_type and status must be valid, and
every registry path must exist.

Examples:
  govkit unit-validate
  govkit unit-validate --unit-path specs/standards/core`,
		Args: cobra.NoArgs,
		RunE: c.action(func(cmd *cobra.Command, _ []string, e *env) error {
			return e.run(cmd.Context(), "unit-validate", func(ctx context.Context) (tracing.Outcome, error) {
				return runUnitValidate(ctx, e, units.Scope{UnitPath: unitPath})
			})
		}),
	}
	cmd.Flags().StringVar(&unitPath, "unit-path", "", "validate only the unit at this repository-relative path")
	return cmd
}

func runUnitValidate(ctx context.Context, e *env, scope units.Scope) (tracing.Outcome, error) {
	p := e.printer
	p.Banner("UNIT VALIDATION")
	p.Printf("Repository: %s", e.root)
	p.Blank()

	p.Printf("[1/3] Loading unit registry...")
	reg, err := e.units.LoadRegistry()
	if err != nil {
		p.Status(check.StatusFail, err.Error())
		return tracing.Outcome{Messages: []string{err.Error()}}, err
	}
	p.Status(check.StatusPass, fmt.Sprintf("Registry loaded (%d units)", reg.Len()))
	p.Blank()

	p.Printf("[2/3] Validating UNIT.json files...")
	res, err := units.Validate(ctx, e.loader, reg, scope)
	if err != nil {
		p.Status(check.StatusFail, err.Error())
		return tracing.Outcome{Messages: []string{err.Error()}}, err
	}
	for _, id := range res.Validated {
		p.Finding(id + ": OK")
	}
	printErrors(p, res.DeclarationErrors, "All UNIT.json files valid")
	p.Blank()

	p.Printf("[3/3] Verifying registry paths...")
	printErrors(p, res.PathErrors, "All registry paths exist")
	p.Blank()

	msgs := res.Report.Messages()
	printResult(p, "VALIDATION COMPLETE", len(msgs))
	return tracing.Outcome{Passed: res.Passed(), Messages: msgs}, res.Err()
}

// printErrors writes each error as a finding, then the step's PASS or FAIL line.
func printErrors(p *presentation.Printer, errs []string, passText string) {
	if len(errs) == 0 {
		p.Status(check.StatusPass, passText)
		return
	}
	for _, msg := range errs {
		p.Finding("ERROR: " + msg)
	}
	p.Status(check.StatusFail, fmt.Sprintf("%d error(s)", len(errs)))
}

// printResult writes the closing banner and overall result line.
func printResult(p *presentation.Printer, title string, errCount int) {
	p.Banner(title)
	if errCount == 0 {
		p.Status(check.StatusPass, "ALL CHECKS PASSED")
		return
	}
	p.Status(check.StatusFail, fmt.Sprintf("%d error(s)", errCount))
}
