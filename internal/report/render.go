package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/zjrosen/govkit/internal/presentation"
)

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown format")

// Format selects how a report is rendered.
type Format string

const (
	FormatJSON       Format = "json"
	FormatJSONPretty Format = "json-pretty"
	FormatTable      Format = "table"
	FormatSummary    Format = "summary"
	FormatMarkdown   Format = "markdown"
)

// ParseFormat parses a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatJSONPretty, FormatTable, FormatSummary, FormatMarkdown:
		return f, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, s)
}

// IsJSON reports whether f produces JSON.
func (f Format) IsJSON() bool {
	return f == FormatJSON || f == FormatJSONPretty
}

// Write renders r in format f. JSON formats go to outputPath when it is set
// and to p otherwise; other formats always go to p.
func Write(p *presentation.Printer, r *Report, f Format, outputPath string) error {
	if f.IsJSON() && outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		if err := encode(file, r, f); err != nil {
			_ = file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("writing report file: %w", err)
		}
		p.Printf("Report written to: %s", outputPath)
		return nil
	}

	switch f {
	case FormatJSON, FormatJSONPretty:
		return encode(p.Writer(), r, f)
	case FormatTable:
		RenderTable(p, r)
		return nil
	case FormatSummary:
		RenderSummary(p, r)
		return nil
	case FormatMarkdown:
		return RenderMarkdown(p, r)
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, f)
}

func encode(w io.Writer, r *Report, f Format) error {
	formatter := presentation.NewFormatter(w)
	if f == FormatJSONPretty {
		return formatter.FormatJSON(r)
	}
	return formatter.FormatCompact(r)
}

type count struct {
	key string
	n   int
}

func sorted(m map[string]int) []count {
	out := make([]count, 0, len(m))
	for k, n := range m {
		out = append(out, count{k, n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

func countTable(s presentation.Styles, title string, m map[string]int) string {
	rows := make([][]string, 0, len(m))
	for _, c := range sorted(m) {
		rows = append(rows, []string{c.key, fmt.Sprint(c.n)})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return s.Cell
		}).
		Headers(title, "Count").
		Rows(rows...).
		String()
}

// RenderTable writes the full report as tables.
func RenderTable(p *presentation.Printer, r *Report) {
	s := p.Styles()
	sum := r.Summary

	p.Banner("GOVERNANCE REPORT")
	p.Printf("Generated: %s", r.Metadata.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	p.Printf("Repository: %s", r.Metadata.Repository)
	p.Blank()

	p.Banner("SUMMARY")
	p.Printf("Total Documents: %d", sum.TotalDocuments)
	p.Printf("%s", countTable(s, "Status", sum.ByStatus))
	p.Printf("%s", countTable(s, "Document Type", sum.ByDocumentType))
	p.Printf("%s", countTable(s, "Trust Class", sum.ByTrustClass))
	p.Blank()

	p.Printf("Integrity Metrics:")
	p.Printf("  Content Hash Coverage: %.1f%% (%d/%d)", sum.Integrity.ContentHashCoveragePct, sum.Integrity.WithContentHash, sum.TotalDocuments)
	p.Printf("  Signature Coverage:    %.1f%% (%d/%d)", sum.Integrity.SignatureCoveragePct, sum.Integrity.WithSignature, sum.TotalDocuments)
	p.Printf("  Fully Sealed:          %d", sum.Integrity.FullySealed)
	p.Blank()

	p.Printf("Schema Versions:")
	p.Printf("  v2.1: %d  v2.0: %d  Other: %d  Missing: %d", sum.Schema.V21, sum.Schema.V20, sum.Schema.OtherVersion, sum.Schema.MissingSchema)
	p.Blank()

	debt := r.GovernanceDebt
	p.Banner("GOVERNANCE DEBT")
	p.Printf("Documents with Debt: %d", debt.DocumentsWithDebt)
	p.Printf("Total Debt Items: %d", debt.TotalItems)
	if len(debt.ByType) > 0 {
		p.Printf("%s", countTable(s, "Debt Type", debt.ByType))
	}
	if len(debt.Items) > 0 {
		rows := make([][]string, 0, len(debt.Items))
		for _, item := range debt.Items {
			rows = append(rows, []string{item.Severity, item.Path, item.Description})
		}
		p.Printf("%s", table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(s.Border).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return s.Header
				case col == 0 && row < len(debt.Items) && debt.Items[row].Severity == SeverityError:
					return s.Fail.Padding(0, 1)
				case col == 0:
					return s.Warn.Padding(0, 1)
				}
				return s.Cell
			}).
			Headers("Severity", "Path", "Description").
			Rows(rows...).
			String())
	}
}

// RenderSummary writes the short summary.
func RenderSummary(p *presentation.Printer, r *Report) {
	sum := r.Summary
	p.Banner("GOVERNANCE SUMMARY")
	p.Printf("Documents: %d", sum.TotalDocuments)
	p.Printf("Content Hash Coverage: %.1f%%", sum.Integrity.ContentHashCoveragePct)
	p.Printf("Signature Coverage: %.1f%%", sum.Integrity.SignatureCoveragePct)
	p.Printf("Governance Debt: %d items in %d documents", r.GovernanceDebt.TotalItems, r.GovernanceDebt.DocumentsWithDebt)

	parts := make([]string, 0, len(sum.ByStatus))
	for _, c := range sorted(sum.ByStatus) {
		parts = append(parts, fmt.Sprintf("%s:%d", c.key, c.n))
	}
	p.Printf("Status: %s", strings.Join(parts, " | "))
}

// Markdown returns the report as a markdown document.
func Markdown(r *Report) string {
	var b strings.Builder
	sum := r.Summary

	fmt.Fprintf(&b, "# Governance Report\n\n")
	fmt.Fprintf(&b, "- Generated: %s\n", r.Metadata.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- Repository: `%s`\n", r.Metadata.Repository)
	fmt.Fprintf(&b, "- Documents: %d\n\n", sum.TotalDocuments)

	section := func(title string, m map[string]int) {
		fmt.Fprintf(&b, "## %s\n\n| %s | Count |\n| --- | ---: |\n", title, title)
		for _, c := range sorted(m) {
			fmt.Fprintf(&b, "| %s | %d |\n", c.key, c.n)
		}
		b.WriteString("\n")
	}
	section("Status", sum.ByStatus)
	section("Document Type", sum.ByDocumentType)
	section("Trust Class", sum.ByTrustClass)
	section("Classification", sum.ByClassification)
	section("Authority Tier", sum.ByAuthorityTier)

	fmt.Fprintf(&b, "## Integrity\n\n")
	fmt.Fprintf(&b, "- Content hash coverage: %.1f%% (%d/%d)\n", sum.Integrity.ContentHashCoveragePct, sum.Integrity.WithContentHash, sum.TotalDocuments)
	fmt.Fprintf(&b, "- Signature coverage: %.1f%% (%d/%d)\n", sum.Integrity.SignatureCoveragePct, sum.Integrity.WithSignature, sum.TotalDocuments)
	fmt.Fprintf(&b, "- Fully sealed: %d\n\n", sum.Integrity.FullySealed)

	fmt.Fprintf(&b, "## Governance Debt\n\n")
	fmt.Fprintf(&b, "%d items in %d documents.\n\n", r.GovernanceDebt.TotalItems, r.GovernanceDebt.DocumentsWithDebt)
	if len(r.GovernanceDebt.Items) > 0 {
		b.WriteString("| Severity | Path | Description |\n| --- | --- | --- |\n")
		for _, item := range r.GovernanceDebt.Items {
			fmt.Fprintf(&b, "| %s | `%s` | %s |\n", item.Severity, item.Path, item.Description)
		}
	}
	return b.String()
}

// RenderMarkdown renders the markdown report for the terminal.
func RenderMarkdown(p *presentation.Printer, r *Report) error {
	style := "dark"
	if p.NoColor() {
		style = "notty"
	}
	mr, err := presentation.NewMarkdownRenderer(100, style)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := mr.Render(Markdown(r))
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	_, err = io.WriteString(p.Writer(), out)
	return err
}
