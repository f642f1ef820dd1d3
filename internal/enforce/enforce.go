// Package enforce runs the no-debt rules over the current specification tree.
package enforce

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"github.com/zjrosen/govkit/internal/domain/check"
	"github.com/zjrosen/govkit/internal/log"
	"github.com/zjrosen/govkit/internal/scan"
)

// ErrEnforcementFailed is returned when at least one check failed.
var ErrEnforcementFailed = errors.New("enforcement failed")

// Options configures the checks. Zero-valued fields fall back to DefaultOptions.
type Options struct {
	SpecsDir        string
	GovernanceDir   string // directory name exempt from token checks
	Excludes        []string
	ForbiddenTokens []string
	SoftPatterns    []string
	ForbiddenPaths  []string
	RequiredFiles   []string
}

// DefaultOptions returns the standard rule set.
func DefaultOptions() Options {
	return Options{
		SpecsDir:      "specs",
		GovernanceDir: "_governance",
		Excludes: []string{
			"**/_deprecated/**",
			"**/_reference/**",
			"**/.git/**",
			"**/target/**",
			"**/manifests/**",
		},
		ForbiddenTokens: []string{"TODO", "TBD", "FIXME", "CHANGEME", "PLACEHOLDER", "INTENTIONALLY LEFT BLANK"},
		SoftPatterns:    []string{"should consider", "might want to", "perhaps", "ideally", "hopefully"},
		ForbiddenPaths:  []string{"drafts/", "quarantine/", "tools/legacy/"},
		RequiredFiles: []string{
			"specs/_governance/AUDIT_CONTRACT.md",
			"specs/_governance/NO_DEBT_RULES.md",
			"specs/_governance/DISTRIBUTION_EXCLUSIONS.md",
			"specs/_governance/LIBRARY_SEALING_CONTRACT.md",
			"specs/_governance/LIBRARY_STANDARD_HEADER_CONTRACT.md",
			"specs/_governance/XONAIX_SELF_GOVERNANCE_CONTRACT.md",
			"specs/_governance/UNIT_REGISTRY.json",
		},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SpecsDir == "" {
		o.SpecsDir = d.SpecsDir
	}
	if o.GovernanceDir == "" {
		o.GovernanceDir = d.GovernanceDir
	}
	if o.Excludes == nil {
		o.Excludes = d.Excludes
	}
	if o.ForbiddenTokens == nil {
		o.ForbiddenTokens = d.ForbiddenTokens
	}
	if o.SoftPatterns == nil {
		o.SoftPatterns = d.SoftPatterns
	}
	if o.ForbiddenPaths == nil {
		o.ForbiddenPaths = d.ForbiddenPaths
	}
	if o.RequiredFiles == nil {
		o.RequiredFiles = d.RequiredFiles
	}
	return o
}

var (
	ellipsisRe = regexp.MustCompile(`^\s*\.\.\.\s*$`)
	emojiRe    = regexp.MustCompile(`[\x{1F300}-\x{1F9FF}\x{2600}-\x{26FF}\x{2700}-\x{27BF}\x{1F600}-\x{1F64F}\x{1F680}-\x{1F6FF}]`)
)

// Enforcer runs the no-debt checks against one repository filesystem.
type Enforcer struct {
	fsys   fs.FS
	opts   Options
	walker *scan.Walker
	soft   []*regexp.Regexp
}

// New creates an Enforcer over fsys rooted at the repository root.
func New(fsys fs.FS, opts Options) (*Enforcer, error) {
	opts = opts.withDefaults()
	w, err := scan.NewWalker(fsys, opts.Excludes)
	if err != nil {
		return nil, err
	}
	soft := make([]*regexp.Regexp, 0, len(opts.SoftPatterns))
	for _, p := range opts.SoftPatterns {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(strings.ToLower(p)) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("soft pattern %q: %w", p, err)
		}
		soft = append(soft, re)
	}
	return &Enforcer{fsys: fsys, opts: opts, walker: w, soft: soft}, nil
}

// Run executes all checks in order. The returned error is non-nil only when
// the tree could not be walked; failed checks are reported in the Report.
func (e *Enforcer) Run() (*check.Report, error) {
	files, err := e.walker.Files(e.opts.SpecsDir)
	if err != nil {
		return nil, err
	}

	contents := make(map[string][]byte, len(files))
	read := func(p string) ([]byte, bool) {
		if data, ok := contents[p]; ok {
			return data, true
		}
		data, err := fs.ReadFile(e.fsys, p)
		if err != nil {
			log.Warn(log.CatEnforce, "unreadable file skipped", "path", p, "error", err)
			return nil, false
		}
		contents[p] = data
		return data, true
	}

	report := &check.Report{Title: "NO-DEBT ENFORCEMENT"}
	report.Add(e.checkTokens(files, read))
	report.Add(e.checkEllipsis(files, read))
	report.Add(e.checkSignatures(files))
	report.Add(e.checkEmoji(files, read))
	report.Add(e.checkForbiddenPaths())
	report.Add(e.checkRequiredFiles())
	report.Add(e.checkCRLF(files, read))
	report.Add(e.checkSoftLanguage(files, read))

	log.Debug(log.CatEnforce, "enforcement finished", "files", len(files), "failed", report.FailedCount())
	return report, nil
}

// Err returns nil when report passed, otherwise an error wrapping ErrEnforcementFailed.
func Err(report *check.Report) error {
	if report.Passed() {
		return nil
	}
	return fmt.Errorf("%w: %d check(s) failed", ErrEnforcementFailed, report.FailedCount())
}

type reader func(p string) ([]byte, bool)

func ext(p string) string {
	return strings.ToLower(path.Ext(p))
}

func isText(p string) bool {
	e := ext(p)
	return e == ".md" || e == ".json"
}

func (e *Enforcer) isGovernance(p string) bool {
	return strings.Contains(p, e.opts.GovernanceDir+"/")
}

func result(title, pass, fail string, findings []string) check.Result {
	if len(findings) == 0 {
		return check.Pass(title, pass)
	}
	return check.Fail(title, fail, findings)
}

func (e *Enforcer) checkTokens(files []string, read reader) check.Result {
	var findings []string
	for _, p := range files {
		if !isText(p) || e.isGovernance(p) {
			continue
		}
		data, ok := read(p)
		if !ok {
			continue
		}
		for _, tok := range e.opts.ForbiddenTokens {
			if bytes.Contains(data, []byte(tok)) {
				findings = append(findings, fmt.Sprintf("%s: Contains %s", p, tok))
			}
		}
	}
	return result("Forbidden tokens", "No forbidden tokens found", "Forbidden tokens found", findings)
}

func (e *Enforcer) checkEllipsis(files []string, read reader) check.Result {
	var findings []string
	for _, p := range files {
		if ext(p) != ".md" {
			continue
		}
		data, ok := read(p)
		if !ok {
			continue
		}
		for i, line := range splitLines(data) {
			if ellipsisRe.MatchString(line) {
				findings = append(findings, fmt.Sprintf("%s:%d: Standalone ellipsis", p, i+1))
			}
		}
	}
	return result("Ellipsis patterns", "No ellipsis patterns found", "Standalone ellipsis lines found", findings)
}

func (e *Enforcer) checkSignatures(files []string) check.Result {
	var findings []string
	for _, p := range files {
		if x := ext(p); x == ".asc" || x == ".sig" {
			findings = append(findings, fmt.Sprintf("%s: Pre-seal signature file", p))
		}
	}
	return result("Pre-seal signature files", "No pre-seal signature files found", "Pre-seal signature files found", findings)
}

func (e *Enforcer) checkEmoji(files []string, read reader) check.Result {
	var findings []string
	for _, p := range files {
		if ext(p) != ".md" {
			continue
		}
		if data, ok := read(p); ok && emojiRe.Match(data) {
			findings = append(findings, fmt.Sprintf("%s: Contains emoji", p))
		}
	}
	return result("Emoji", "No emojis found", "Emojis found", findings)
}

func (e *Enforcer) checkForbiddenPaths() check.Result {
	var findings []string
	for _, fp := range e.opts.ForbiddenPaths {
		if e.walker.Exists(path.Join(e.opts.SpecsDir, fp)) {
			findings = append(findings, "Forbidden path exists: "+fp)
		}
	}
	return result("Forbidden paths", "No forbidden paths found", "Forbidden paths found", findings)
}

func (e *Enforcer) checkRequiredFiles() check.Result {
	var findings []string
	for _, f := range e.opts.RequiredFiles {
		if !e.walker.Exists(f) {
			findings = append(findings, "Missing: "+f)
		}
	}
	return result("Required governance files", "All required governance files present", "Required governance files missing", findings)
}

func (e *Enforcer) checkCRLF(files []string, read reader) check.Result {
	var findings []string
	for _, p := range files {
		if !isText(p) {
			continue
		}
		if data, ok := read(p); ok && bytes.Contains(data, []byte("\r\n")) {
			findings = append(findings, fmt.Sprintf("%s: Contains CRLF", p))
		}
	}
	return result("CRLF line endings", "No CRLF line endings found", "CRLF line endings found", findings)
}

func (e *Enforcer) checkSoftLanguage(files []string, read reader) check.Result {
	var findings []string
	for _, p := range files {
		if ext(p) != ".md" {
			continue
		}
		data, ok := read(p)
		if !ok {
			continue
		}
		lower := bytes.ToLower(data)
		for i, re := range e.soft {
			if re.Match(lower) {
				findings = append(findings, fmt.Sprintf("%s: Contains soft language pattern '%s'", p, e.opts.SoftPatterns[i]))
			}
		}
	}
	if len(findings) == 0 {
		return check.Pass("Soft/advisory language", "No soft language patterns found")
	}
	return check.Warn("Soft/advisory language", "Soft language patterns found", findings)
}

// splitLines splits on \n, dropping a trailing \r so CRLF files report the
// same line numbers.
func splitLines(data []byte) []string {
	s := strings.TrimSuffix(string(data), "\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
