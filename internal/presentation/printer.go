package presentation

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/govkit/internal/domain/check"
)

// Printer writes human-readable command output.
type Printer struct {
	w      io.Writer
	styles Styles
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	return &Printer{w: w, styles: NewStyles(lipgloss.NewRenderer(w), noColor)}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Styles returns the printer's styles.
func (p *Printer) Styles() Styles {
	return p.styles
}

// NoColor reports whether styling is disabled.
func (p *Printer) NoColor() bool {
	return p.styles.noColor
}

// Printf writes an unstyled formatted line.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

// Blank writes an empty line.
func (p *Printer) Blank() {
	_, _ = fmt.Fprintln(p.w)
}

// Banner writes a "=== TITLE ===" section header.
func (p *Printer) Banner(title string) {
	_, _ = fmt.Fprintln(p.w, p.styles.Banner.Render("=== "+title+" ==="))
}

// Status writes "STATUS: text" with a styled label.
func (p *Printer) Status(status check.Status, text string) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", p.styles.ForStatus(status).Render(string(status)+":"), text)
}

// Finding writes an indented detail line.
func (p *Printer) Finding(text string) {
	_, _ = fmt.Fprintf(p.w, "  %s\n", p.styles.Muted.Render(text))
}

// Messages writes each message as a finding.
func (p *Printer) Messages(msgs []string) {
	for _, m := range msgs {
		p.Finding(m)
	}
}

// Outcome writes the closing PASS or FAIL line of a command.
func (p *Printer) Outcome(passed bool, passText, failText string) {
	if passed {
		p.Status(check.StatusPass, passText)
		return
	}
	p.Status(check.StatusFail, failText)
}

// CheckReport writes every result of a multi-check report followed by the
// overall outcome.
func (p *Printer) CheckReport(r *check.Report) {
	p.Banner(r.Title)
	p.Blank()
	for i, res := range r.Results {
		p.Printf("[%d/%d] %s", i+1, len(r.Results), res.Title)
		p.Messages(res.Findings)
		p.Status(res.Status, res.Summary)
		p.Blank()
	}
	if r.Passed() {
		if n := r.WarningCount(); n > 0 {
			p.Status(check.StatusPass, fmt.Sprintf("All checks passed (%d warning(s))", n))
			return
		}
		p.Status(check.StatusPass, "All checks passed")
		return
	}
	p.Status(check.StatusFail, fmt.Sprintf("%d check(s) failed", r.FailedCount()))
}
