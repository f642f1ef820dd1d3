package units

import (
	"encoding/json"
	"sort"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

type fixtureUnit struct {
	id       string
	declared string // unit_id written to the declaration; defaults to id
	unitType string
	status   string
	deps     []string
	raw      string // when set, written verbatim instead of a generated declaration
	noDecl   bool
	noDir    bool
}

func unitPath(id string) string {
	return "specs/" + id
}

func declarationJSON(t require.TestingT, u fixtureUnit) []byte {
	declared := u.declared
	if declared == "" {
		declared = u.id
	}
	unitType := u.unitType
	if unitType == "" {
		unitType = "standard"
	}
	status := u.status
	if status == "" {
		status = "active"
	}
	doc := map[string]any{
		"unit_id":     declared,
		"unit_type":   unitType,
		"version":     "1.0.0",
		"status":      status,
		"description": "unit " + u.id,
		"owner":       "governance",
		"compatibility": map[string]any{
			"breaking_changes":    "none",
			"backward_compatible": true,
		},
	}
	if u.deps != nil {
		doc["dependencies"] = u.deps
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

// buildRepo lays out a registry plus unit directories in a MapFS.
func buildRepo(t require.TestingT, units ...fixtureUnit) fstest.MapFS {
	fsys := fstest.MapFS{}
	entries := map[string]any{}
	for _, u := range units {
		entries[u.id] = map[string]any{
			"path":        unitPath(u.id),
			"domain":      "standards",
			"status":      "active",
			"description": "unit " + u.id,
		}
		if u.noDir {
			continue
		}
		fsys[unitPath(u.id)+"/README.md"] = &fstest.MapFile{Data: []byte("# " + u.id)}
		if u.noDecl {
			continue
		}
		data := []byte(u.raw)
		if u.raw == "" {
			data = declarationJSON(t, u)
		}
		fsys[unitPath(u.id)+"/UNIT.json"] = &fstest.MapFile{Data: data}
	}

	registry, err := json.Marshal(map[string]any{
		"registry_version": "1.0.0",
		"description":      "test registry",
		"units":            entries,
	})
	require.NoError(t, err)
	fsys[DefaultRegistryPath] = &fstest.MapFile{Data: registry}
	return fsys
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func mustService(t *testing.T, fsys fstest.MapFS) *Service {
	t.Helper()
	return NewService(NewLoader(fsys), "")
}
