package testutil

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilder_WithUnit(t *testing.T) {
	files := NewBuilder(t).
		WithUnit("standards/a").
		Files()

	require.Contains(t, files, "specs/standards/a/UNIT.json")
	require.Contains(t, files, "specs/standards/a/README.md")

	var decl map[string]any
	require.NoError(t, json.Unmarshal([]byte(files["specs/standards/a/UNIT.json"]), &decl))
	require.Equal(t, "standards/a", decl["unit_id"])
	require.Equal(t, "standard", decl["unit_type"])
	require.Equal(t, "active", decl["status"])
	require.Equal(t, []any{}, decl["dependencies"])

	var reg struct {
		Units map[string]map[string]string `json:"units"`
	}
	require.NoError(t, json.Unmarshal([]byte(files[RegistryPath]), &reg))
	require.Equal(t, "specs/standards/a", reg.Units["standards/a"]["path"])
	require.Equal(t, "standards", reg.Units["standards/a"]["domain"])
}

func TestBuilder_UnitOptions(t *testing.T) {
	files := NewBuilder(t).
		WithUnit("standards/a", UnitType("bogus"), Status("retired"), DependsOn("x", "y")).
		WithUnit("standards/b", Path("specs/other/b"), WithoutDeclaration()).
		WithUnit("standards/c", WithoutDirectory()).
		Files()

	var decl map[string]any
	require.NoError(t, json.Unmarshal([]byte(files["specs/standards/a/UNIT.json"]), &decl))
	require.Equal(t, "bogus", decl["unit_type"])
	require.Equal(t, "retired", decl["status"])
	require.Equal(t, []any{"x", "y"}, decl["dependencies"])

	require.NotContains(t, files, "specs/other/b/UNIT.json")
	require.Contains(t, files, "specs/other/b/README.md")
	require.NotContains(t, files, "specs/standards/c/README.md")
	require.Contains(t, files[RegistryPath], `"standards/c"`)
}

func TestBuilder_BuildFS(t *testing.T) {
	fsys := NewBuilder(t).WithStandardRepo().BuildFS()

	data, err := fs.ReadFile(fsys, "specs/meta/index.md")
	require.NoError(t, err)
	require.Equal(t, "# Index\n", string(data))

	_, err = fs.Stat(fsys, "specs/_governance/NO_DEBT_RULES.md")
	require.NoError(t, err)
}

func TestBuilder_Build(t *testing.T) {
	root := NewBuilder(t).WithStandardRepo().Build()

	data, err := os.ReadFile(filepath.Join(root, "specs", "standards", "a", "README.md"))
	require.NoError(t, err)
	require.Equal(t, Document("specs/standards/a/README.md", "standards/a", "approved"), string(data))
	require.DirExists(t, filepath.Join(root, "specs", "meta"))
}

func TestBuilder_WithUnitReplaces(t *testing.T) {
	files := NewBuilder(t).
		WithUnit("standards/a").
		WithUnit("standards/a", UnitType("mini-standard")).
		Files()

	var decl map[string]any
	require.NoError(t, json.Unmarshal([]byte(files["specs/standards/a/UNIT.json"]), &decl))
	require.Equal(t, "mini-standard", decl["unit_type"])
}
