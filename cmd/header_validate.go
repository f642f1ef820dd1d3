package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/govkit/internal/domain/check"
	"github.com/zjrosen/govkit/internal/header"
	"github.com/zjrosen/govkit/internal/scan"
	"github.com/zjrosen/govkit/internal/tracing"
)

func newHeaderValidateCmd(c *cli) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "header-validate",
		Short: "Validate document header frontmatter (schema v2.1)",
		Long: `Validate the YAML frontmatter of every markdown document under specs/, or
of a single file with --file. Errors fail the command; warnings are reported
but pass.

Examples:
  govkit header-validate
  govkit header-validate --file specs/standards/core/README.md`,
		Args: cobra.NoArgs,
		RunE: c.action(func(cmd *cobra.Command, _ []string, e *env) error {
			return e.run(cmd.Context(), "header-validate", func(context.Context) (tracing.Outcome, error) {
				return runHeaderValidate(e, file)
			})
		}),
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "validate only this file")
	return cmd
}

func runHeaderValidate(e *env, file string) (tracing.Outcome, error) {
	p := e.printer
	p.Banner("LIBRARY HEADER VALIDATION")
	p.Printf("Repository: %s", e.root)
	p.Printf("Schema Version: 2.1")
	p.Blank()

	var (
		sum *header.Summary
		err error
	)
	if file != "" {
		sum, err = header.ValidateFile(file)
	} else {
		var w *scan.Walker
		w, err = scan.NewWalker(e.fsys, e.cfg.Header.Excludes)
		if err == nil {
			sum, err = header.ValidateTree(w, e.cfg.SpecsDir)
		}
	}
	if err != nil {
		return tracing.Outcome{}, err
	}

	var msgs []string
	for _, f := range sum.Files {
		p.Printf("%s:", f.Path)
		for _, msg := range f.Errors {
			p.Finding("ERROR: " + msg)
			msgs = append(msgs, f.Path+": "+msg)
		}
		for _, msg := range f.Warnings {
			p.Finding("WARN: " + msg)
		}
		p.Blank()
	}

	p.Banner("VALIDATION COMPLETE")
	p.Printf("Files checked: %d", sum.Checked)
	p.Printf("Errors: %d", sum.Errors)
	p.Printf("Warnings: %d", sum.Warnings)
	p.Blank()
	switch {
	case sum.Errors > 0:
		p.Status(check.StatusFail, fmt.Sprintf("%d error(s), %d warning(s)", sum.Errors, sum.Warnings))
	case sum.Warnings > 0:
		p.Status(check.StatusPass, fmt.Sprintf("PASSED with %d warning(s)", sum.Warnings))
	default:
		p.Status(check.StatusPass, "ALL HEADERS VALID")
	}

	err = sum.Err()
	return tracing.Outcome{Passed: err == nil, Messages: msgs}, err
}
