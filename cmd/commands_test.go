package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/govkit/internal/application/units"
	"github.com/zjrosen/govkit/internal/doctor"
	"github.com/zjrosen/govkit/internal/enforce"
	"github.com/zjrosen/govkit/internal/header"
	"github.com/zjrosen/govkit/internal/manifest"
	"github.com/zjrosen/govkit/internal/paths"
	"github.com/zjrosen/govkit/internal/report"
	"github.com/zjrosen/govkit/internal/testutil"
)

func TestUnitValidate_Passes(t *testing.T) {
	out, err := inRepo(t, newRepo(t), newConfig(t), "unit-validate")
	require.NoError(t, err, out)
	require.Contains(t, out, "=== UNIT VALIDATION ===")
	require.Contains(t, out, "PASS: Registry loaded (2 units)")
	require.Contains(t, out, "  standards/a: OK")
	require.Contains(t, out, "PASS: All registry paths exist")
	require.Contains(t, out, "PASS: ALL CHECKS PASSED")
}

func TestUnitValidate_ReportsEveryError(t *testing.T) {
	root := testutil.NewBuilder(t).
		WithStandardRepo().
		WithUnit("standards/a", testutil.UnitType("bogus")).
		Build()
	require.NoError(t, os.RemoveAll(filepath.Join(root, "specs", "standards", "b")))

	out, err := inRepo(t, root, newConfig(t), "unit-validate")
	require.True(t, errors.Is(err, units.ErrValidationFailed), "%v", err)
	require.Contains(t, out, "ERROR: standards/a: Invalid unit_type: bogus")
	require.Contains(t, out, "ERROR: standards/b: UNIT declaration missing")
	require.Contains(t, out, "ERROR: standards/b: Path does not exist: specs/standards/b")
	require.Contains(t, out, "FAIL: 3 error(s)")
}

func TestUnitValidate_UnitPath(t *testing.T) {
	root := newRepo(t)

	out, err := inRepo(t, root, newConfig(t), "unit-validate", "--unit-path", "specs/standards/b")
	require.NoError(t, err, out)
	require.Contains(t, out, "  standards/b: OK")
	require.NotContains(t, out, "standards/a: OK")

	_, err = inRepo(t, root, newConfig(t), "unit-validate", "--unit-path", "specs/standards/missing")
	require.True(t, errors.Is(err, units.ErrUnitPathNotFound), "%v", err)
}

func TestGraphVerify(t *testing.T) {
	out, err := inRepo(t, newRepo(t), newConfig(t), "graph-verify")
	require.NoError(t, err, out)
	require.Contains(t, out, "PASS: Graph built (2 nodes, 1 edges)")
	require.Contains(t, out, "PASS: No cycles detected (valid DAG)")

	cyclic := testutil.NewBuilder(t).
		WithStandardRepo().
		WithUnit("standards/b", testutil.DependsOn("standards/a")).
		Build()
	out, err = inRepo(t, cyclic, newConfig(t), "graph-verify")
	require.True(t, errors.Is(err, units.ErrGraphVerificationFailed), "%v", err)
	require.Contains(t, out, "FAIL: Cycle detected: standards/a -> standards/b -> standards/a")
}

func TestRegistryMissingIsFatal(t *testing.T) {
	root := newRepo(t)
	require.NoError(t, os.Remove(filepath.Join(root, "specs", "_governance", "UNIT_REGISTRY.json")))

	for _, command := range []string{"unit-validate", "graph-verify"} {
		_, err := inRepo(t, root, newConfig(t), command)
		require.True(t, errors.Is(err, units.ErrRegistryNotFound), "%s: %v", command, err)
	}
}

func TestRepoRootNotFound(t *testing.T) {
	cfg := newConfig(t)
	t.Chdir(t.TempDir())

	_, err := execute(t, "unit-validate", "--config", cfg)
	require.True(t, errors.Is(err, paths.ErrRepoRootNotFound), "%v", err)
}

func TestEnforce(t *testing.T) {
	root := newRepo(t)
	out, err := inRepo(t, root, newConfig(t), "enforce")
	require.NoError(t, err, out)
	require.Contains(t, out, "PASS: All checks passed")

	testutil.WriteFiles(t, root, map[string]string{"specs/meta/notes.md": "FIXME\n"})
	out, err = inRepo(t, root, newConfig(t), "enforce")
	require.True(t, errors.Is(err, enforce.ErrEnforcementFailed), "%v", err)
	require.Contains(t, out, "specs/meta/notes.md: Contains FIXME")
}

func TestEnforce_ConfiguredTokens(t *testing.T) {
	root := newRepo(t)
	testutil.WriteFiles(t, root, map[string]string{"specs/meta/notes.md": "XXX marker\n"})

	cfg := newConfig(t)
	require.NoError(t, os.WriteFile(cfg, []byte("enforce:\n  forbidden_tokens: [XXX]\n"), 0o600))

	out, err := inRepo(t, root, cfg, "enforce")
	require.Error(t, err)
	require.Contains(t, out, "specs/meta/notes.md: Contains XXX")
}

func TestHeaderValidate(t *testing.T) {
	root := newRepo(t)

	out, err := inRepo(t, root, newConfig(t), "header-validate", "--file", filepath.Join(root, "specs", "standards", "a", "README.md"))
	require.NoError(t, err, out)
	require.Contains(t, out, "Files checked: 1")
	require.Contains(t, out, "PASS: ALL HEADERS VALID")

	// specs/meta/index.md has no frontmatter.
	out, err = inRepo(t, root, newConfig(t), "header-validate")
	require.True(t, errors.Is(err, header.ErrHeaderValidationFailed), "%v", err)
	require.Contains(t, out, "ERROR: Missing YAML frontmatter")
}

func TestHeaderValidate_ScansSpecsDirNotMarkerDir(t *testing.T) {
	root := newRepo(t)
	cfg := newConfig(t, "marker_dir", ".git", "specs_dir", "specs/standards")

	out, err := inRepo(t, root, cfg, "header-validate")
	require.NoError(t, err, out)
	require.Contains(t, out, "Files checked: 2")
	require.Contains(t, out, "PASS: ALL HEADERS VALID")
}

func TestDoctor(t *testing.T) {
	root := newRepo(t)
	out, err := inRepo(t, root, newConfig(t), "doctor")
	require.NoError(t, err, out)
	require.Contains(t, out, "=== ENVIRONMENT DOCTOR ===")
	require.Contains(t, out, "PASS: All 2 unit paths exist")

	require.NoError(t, os.RemoveAll(filepath.Join(root, "specs", "meta")))
	out, err = inRepo(t, root, newConfig(t), "doctor")
	require.True(t, errors.Is(err, doctor.ErrDoctorFailed), "%v", err)
	require.Contains(t, out, "Missing: specs/meta")
}

func TestGenerateManifest_WriteThenCheck(t *testing.T) {
	root := newRepo(t)
	cfg := newConfig(t)

	out, err := inRepo(t, root, cfg, "generate-manifest", "--governance")
	require.NoError(t, err, out)
	written := filepath.Join(root, "specs", "_governance", "manifests", manifest.GovernanceFile)
	require.Contains(t, out, "Generated: "+written)
	require.FileExists(t, written)

	out, err = inRepo(t, root, cfg, "generate-manifest", "--governance", "--check")
	require.NoError(t, err, out)
	require.Contains(t, out, "PASS: Manifest up-to-date")

	testutil.WriteFiles(t, root, map[string]string{"specs/_governance/NO_DEBT_RULES.md": "changed rules\n"})
	out, err = inRepo(t, root, cfg, "generate-manifest", "--governance", "--check")
	require.True(t, errors.Is(err, manifest.ErrManifestDrift), "%v", err)
	require.Contains(t, out, "FAIL: Manifest drift detected!")
}

func TestGenerateManifest_Unit(t *testing.T) {
	root := newRepo(t)
	output := filepath.Join(t.TempDir(), "unit.json")

	out, err := inRepo(t, root, newConfig(t), "generate-manifest", "--unit", "standards/a", "--output", output)
	require.NoError(t, err, out)
	require.Contains(t, out, "Files: 2")

	var m manifest.Manifest
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &m))
	require.Equal(t, "specs/standards/a/README.md", m.Files[0].Path)
}

func TestGenerateManifest_FlagErrors(t *testing.T) {
	root := newRepo(t)

	_, err := inRepo(t, root, newConfig(t), "generate-manifest")
	require.ErrorContains(t, err, "either --governance or --unit is required")

	_, err = inRepo(t, root, newConfig(t), "generate-manifest", "--governance", "--unit", "standards/a")
	require.Error(t, err)

	_, err = inRepo(t, root, newConfig(t), "generate-manifest", "--governance", "--publish")
	require.ErrorContains(t, err, "publish.endpoint is required")
}

func TestGovernanceReport(t *testing.T) {
	root := newRepo(t)

	out, err := inRepo(t, root, newConfig(t), "governance-report", "--format", "json")
	require.NoError(t, err, out)
	var r report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	require.Equal(t, 2, r.Summary.TotalDocuments)
	require.Equal(t, 2, r.Summary.ByStatus["approved"])
	require.Equal(t, filepath.Base(root), r.Metadata.Repository)

	out, err = inRepo(t, root, newConfig(t), "governance-report", "--format", "summary")
	require.NoError(t, err, out)
	require.Contains(t, out, "approved:2")

	_, err = inRepo(t, root, newConfig(t), "governance-report", "--format", "xml")
	require.True(t, errors.Is(err, report.ErrUnknownFormat), "%v", err)
}

func TestGovernanceReport_FormatFromConfig(t *testing.T) {
	out, err := inRepo(t, newRepo(t), newConfig(t, "report.format", "summary"), "governance-report")
	require.NoError(t, err, out)
	require.Contains(t, out, "approved:2")
}

func TestHistory_RecordsRuns(t *testing.T) {
	root := newRepo(t)
	cfg := newConfig(t, "audit.enabled", "true")

	_, err := inRepo(t, root, cfg, "doctor")
	require.NoError(t, err)
	_, err = inRepo(t, root, cfg, "graph-verify")
	require.NoError(t, err)
	testutil.WriteFiles(t, root, map[string]string{"specs/meta/notes.md": "TBD\n"})
	_, err = inRepo(t, root, cfg, "enforce")
	require.Error(t, err)

	out, err := inRepo(t, root, cfg, "history", "--limit", "2")
	require.NoError(t, err, out)

	var runs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 2)
	require.Equal(t, "enforce", runs[0]["command"])
	require.Equal(t, false, runs[0]["passed"])
	require.Equal(t, []any{"specs/meta/notes.md: Contains TBD"}, runs[0]["messages"])
	require.Equal(t, "graph-verify", runs[1]["command"])
	require.Equal(t, root, runs[1]["repo_root"])
	require.FileExists(t, filepath.Join(root, ".govkit", "audit.db"))
}

func TestHistory_NoDatabase(t *testing.T) {
	out, err := inRepo(t, newRepo(t), newConfig(t), "history")
	require.NoError(t, err)
	require.JSONEq(t, "[]", out)
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "govkit", "config.yaml")

	out, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	require.Contains(t, out, "Wrote "+path)

	_, err = execute(t, "config", "init", "--config", path)
	require.ErrorContains(t, err, "already exists")

	_, err = execute(t, "config", "set", "watch.debounce", "1s", "--config", path)
	require.NoError(t, err)
	_, err = execute(t, "config", "set", "publish.secret_key", "hunter2", "--config", path)
	require.NoError(t, err)

	out, err = execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	require.Contains(t, out, "debounce: 1s")
	require.Contains(t, out, "********")
	require.NotContains(t, out, "hunter2")

	_, err = execute(t, "config", "set", "enforce", "x", "--config", path)
	require.ErrorContains(t, err, "is a section")
}

func TestInvalidConfigRejected(t *testing.T) {
	_, err := inRepo(t, newRepo(t), newConfig(t, "tracing.sample_rate", "2"), "doctor")
	require.ErrorContains(t, err, "tracing.sample_rate must be between 0.0 and 1.0")
}
