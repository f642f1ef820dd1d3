package doctor

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/govkit/internal/domain/check"
)

var requiredFiles = []string{
	"specs/_governance/NO_DEBT_RULES.md",
	"specs/_governance/UNIT_REGISTRY.json",
}

const registry = `{
  "registry_version": "1.0.0",
  "description": "units",
  "units": {
    "standards/a": {"path": "specs/standards/a", "domain": "standards", "status": "active", "description": "A"},
    "standards/b": {"path": "specs/standards/b", "domain": "standards", "status": "active", "description": "B"}
  }
}`

func healthyRepo() fstest.MapFS {
	return fstest.MapFS{
		"specs/_governance/NO_DEBT_RULES.md":   {Data: []byte("rules")},
		"specs/_governance/UNIT_REGISTRY.json": {Data: []byte(registry)},
		"specs/standards/a/UNIT.json":          {Data: []byte("{}")},
		"specs/standards/b/UNIT.json":          {Data: []byte("{}")},
		"specs/meta/index.md":                  {Data: []byte("# meta")},
	}
}

func statuses(r *check.Report) []check.Status {
	out := make([]check.Status, len(r.Results))
	for i, res := range r.Results {
		out[i] = res.Status
	}
	return out
}

func TestRun_Healthy(t *testing.T) {
	report := Run(healthyRepo(), Options{RequiredFiles: requiredFiles})
	require.Len(t, report.Results, 5)
	require.True(t, report.Passed(), "%v", report.Messages())
	require.NoError(t, Err(report))
	require.Equal(t, "All 2 unit paths exist", report.Results[3].Summary)
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(fstest.MapFS)
		want   []check.Status
		msgs   []string
	}{
		{
			name:   "missing governance file",
			mutate: func(fs fstest.MapFS) { delete(fs, "specs/_governance/NO_DEBT_RULES.md") },
			want:   []check.Status{check.StatusFail, check.StatusPass, check.StatusPass, check.StatusPass, check.StatusPass},
			msgs:   []string{"Missing: specs/_governance/NO_DEBT_RULES.md"},
		},
		{
			name:   "missing meta dir",
			mutate: func(fs fstest.MapFS) { delete(fs, "specs/meta/index.md") },
			want:   []check.Status{check.StatusPass, check.StatusPass, check.StatusFail, check.StatusPass, check.StatusPass},
			msgs:   []string{"Missing: specs/meta"},
		},
		{
			name:   "missing unit path",
			mutate: func(fs fstest.MapFS) { delete(fs, "specs/standards/b/UNIT.json") },
			want:   []check.Status{check.StatusPass, check.StatusPass, check.StatusPass, check.StatusFail, check.StatusPass},
			msgs:   []string{"standards/b: Path does not exist: specs/standards/b"},
		},
		{
			name: "malformed registry skips unit paths",
			mutate: func(fs fstest.MapFS) {
				fs["specs/_governance/UNIT_REGISTRY.json"] = &fstest.MapFile{Data: []byte("{not json")}
			},
			want: []check.Status{check.StatusPass, check.StatusFail, check.StatusPass, check.StatusSkip, check.StatusPass},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := healthyRepo()
			tt.mutate(fsys)
			report := Run(fsys, Options{RequiredFiles: requiredFiles})
			require.Equal(t, tt.want, statuses(report))
			for _, m := range tt.msgs {
				require.Contains(t, report.Messages(), m)
			}
			require.True(t, errors.Is(Err(report), ErrDoctorFailed))
		})
	}
}

func TestRun_MissingRegistryCountsTwice(t *testing.T) {
	fsys := healthyRepo()
	delete(fsys, "specs/_governance/UNIT_REGISTRY.json")

	report := Run(fsys, Options{RequiredFiles: requiredFiles})
	require.Equal(t, 3, report.FailedCount())
	require.Equal(t, "UNIT_REGISTRY.json does not exist", report.Results[1].Summary)
	require.EqualError(t, Err(report), "doctor checks failed: 3 check(s) failed")
}
