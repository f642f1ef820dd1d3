package enforce

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/govkit/internal/domain/check"
)

// cleanRepo returns a tree that passes every check.
func cleanRepo() fstest.MapFS {
	fsys := fstest.MapFS{
		"specs/standards/a/README.md": {Data: []byte("# A\n\nThe unit MUST do things.\n")},
		"specs/standards/a/UNIT.json": {Data: []byte("{\"unit_id\": \"standards/a\"}\n")},
		"specs/meta/index.md":         {Data: []byte("# Index\n")},
	}
	for _, f := range DefaultOptions().RequiredFiles {
		fsys[f] = &fstest.MapFile{Data: []byte("governance rules mention TODO and TBD\n")}
	}
	return fsys
}

func run(t *testing.T, fsys fstest.MapFS) *check.Report {
	t.Helper()
	e, err := New(fsys, Options{})
	require.NoError(t, err)
	report, err := e.Run()
	require.NoError(t, err)
	require.Len(t, report.Results, 8)
	return report
}

func findResult(t *testing.T, r *check.Report, title string) check.Result {
	t.Helper()
	for _, res := range r.Results {
		if res.Title == title {
			return res
		}
	}
	require.Failf(t, "missing result", "no result titled %q", title)
	return check.Result{}
}

func TestRun_CleanRepoPasses(t *testing.T) {
	report := run(t, cleanRepo())
	require.True(t, report.Passed(), "%v", report.Messages())
	require.NoError(t, Err(report))
}

func TestRun_Violations(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		remove   string
		title    string
		findings []string
	}{
		{
			name:     "forbidden token",
			files:    map[string]string{"specs/standards/a/notes.md": "FIXME later\n"},
			title:    "Forbidden tokens",
			findings: []string{"specs/standards/a/notes.md: Contains FIXME"},
		},
		{
			name:     "tokens in excluded dirs are ignored",
			files:    map[string]string{"specs/_deprecated/old.md": "TODO\n", "specs/x/_reference/r.md": "TBD\n"},
			title:    "Forbidden tokens",
			findings: nil,
		},
		{
			name:     "standalone ellipsis with line number",
			files:    map[string]string{"specs/meta/e.md": "intro\n  ...  \nmore...\n"},
			title:    "Ellipsis patterns",
			findings: []string{"specs/meta/e.md:2: Standalone ellipsis"},
		},
		{
			name:     "signature file",
			files:    map[string]string{"specs/standards/a/README.md.asc": "sig"},
			title:    "Pre-seal signature files",
			findings: []string{"specs/standards/a/README.md.asc: Pre-seal signature file"},
		},
		{
			name:     "emoji",
			files:    map[string]string{"specs/meta/fun.md": "done \U0001F680\n"},
			title:    "Emoji",
			findings: []string{"specs/meta/fun.md: Contains emoji"},
		},
		{
			name:     "forbidden path",
			files:    map[string]string{"specs/drafts/wip.txt": "x"},
			title:    "Forbidden paths",
			findings: []string{"Forbidden path exists: drafts/"},
		},
		{
			name:     "missing governance file",
			remove:   "specs/_governance/NO_DEBT_RULES.md",
			title:    "Required governance files",
			findings: []string{"Missing: specs/_governance/NO_DEBT_RULES.md"},
		},
		{
			name:     "crlf",
			files:    map[string]string{"specs/meta/win.json": "{\r\n}\r\n"},
			title:    "CRLF line endings",
			findings: []string{"specs/meta/win.json: Contains CRLF"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := cleanRepo()
			for p, content := range tt.files {
				fsys[p] = &fstest.MapFile{Data: []byte(content)}
			}
			if tt.remove != "" {
				delete(fsys, tt.remove)
			}

			report := run(t, fsys)
			res := findResult(t, report, tt.title)
			require.Equal(t, tt.findings, res.Findings)
			if tt.findings == nil {
				require.True(t, report.Passed())
				return
			}
			require.Equal(t, check.StatusFail, res.Status)
			require.Equal(t, 1, report.FailedCount())
			require.True(t, errors.Is(Err(report), ErrEnforcementFailed))
		})
	}
}

func TestRun_SoftLanguageOnlyWarns(t *testing.T) {
	fsys := cleanRepo()
	fsys["specs/meta/soft.md"] = &fstest.MapFile{Data: []byte("Perhaps we SHOULD CONSIDER this.\nNot perhapsy.\n")}

	report := run(t, fsys)
	res := findResult(t, report, "Soft/advisory language")

	require.Equal(t, check.StatusWarn, res.Status)
	require.Equal(t, []string{
		"specs/meta/soft.md: Contains soft language pattern 'should consider'",
		"specs/meta/soft.md: Contains soft language pattern 'perhaps'",
	}, res.Findings)
	require.True(t, report.Passed())
	require.Equal(t, 1, report.WarningCount())
}

func TestRun_CustomTokens(t *testing.T) {
	fsys := cleanRepo()
	fsys["specs/meta/x.md"] = &fstest.MapFile{Data: []byte("XXX marker\n")}

	e, err := New(fsys, Options{ForbiddenTokens: []string{"XXX"}})
	require.NoError(t, err)
	report, err := e.Run()
	require.NoError(t, err)
	require.Equal(t, []string{"specs/meta/x.md: Contains XXX"}, report.Messages())
}

func TestNew_InvalidExclude(t *testing.T) {
	_, err := New(cleanRepo(), Options{Excludes: []string{"[["}})
	require.Error(t, err)
}

func TestSplitLines(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitLines([]byte("a\r\nb\r\n")))
	require.Nil(t, splitLines(nil))
}
