// Package testutil builds governance repository fixtures for tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/govkit/internal/config"
)

// RegistryPath is where the builder writes the unit registry.
const RegistryPath = "specs/_governance/UNIT_REGISTRY.json"

// Builder accumulates repository content and writes it out in one go.
type Builder struct {
	t     *testing.T
	units []unitData
	files map[string]string
}

// NewBuilder creates a builder for an empty repository.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t, files: map[string]string{}}
}

// WithUnit registers a unit with optional configuration. Registering an id
// again replaces the earlier unit.
func (b *Builder) WithUnit(id string, opts ...UnitOption) *Builder {
	u := defaultUnit(id)
	for _, opt := range opts {
		opt(&u)
	}
	for i := range b.units {
		if b.units[i].id == id {
			b.units[i] = u
			return b
		}
	}
	b.units = append(b.units, u)
	return b
}

// WithFile adds a file at a repository-relative slash path.
func (b *Builder) WithFile(p, content string) *Builder {
	b.files[p] = content
	return b
}

// WithGovernanceFiles adds every required governance file except the registry.
func (b *Builder) WithGovernanceFiles() *Builder {
	for _, f := range config.Defaults().Enforce.RequiredFiles {
		if f != RegistryPath {
			b.files[f] = "governance rules\n"
		}
	}
	return b
}

// Files renders the repository as a path to content map.
func (b *Builder) Files() map[string]string {
	b.t.Helper()
	out := make(map[string]string, len(b.files)+2*len(b.units)+1)
	for p, c := range b.files {
		out[p] = c
	}

	entries := make(map[string]any, len(b.units))
	for _, u := range b.units {
		entries[u.id] = map[string]any{
			"path":        u.path,
			"domain":      strings.SplitN(u.id, "/", 2)[0],
			"status":      u.status,
			"description": "unit " + u.id,
		}
		if u.noDir {
			continue
		}
		if !u.noDecl {
			out[u.path+"/UNIT.json"] = b.declaration(u)
		}
		out[u.path+"/README.md"] = Document(u.path+"/README.md", u.id, u.docStatus)
	}
	out[RegistryPath] = b.marshal(map[string]any{
		"registry_version": "1.0.0",
		"description":      "test registry",
		"units":            entries,
	})
	return out
}

// BuildFS returns the repository as an in-memory filesystem.
func (b *Builder) BuildFS() fstest.MapFS {
	b.t.Helper()
	fsys := fstest.MapFS{}
	for p, c := range b.Files() {
		fsys[p] = &fstest.MapFile{Data: []byte(c)}
	}
	return fsys
}

// Build writes the repository under a fresh temp dir and returns its root.
func (b *Builder) Build() string {
	b.t.Helper()
	root := b.t.TempDir()
	WriteFiles(b.t, root, b.Files())
	return root
}

// WriteFiles writes slash-path files under root, creating directories.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for p, content := range files {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func (b *Builder) declaration(u unitData) string {
	deps := u.dependencies
	if deps == nil {
		deps = []string{}
	}
	return b.marshal(map[string]any{
		"unit_id":      u.id,
		"unit_type":    u.unitType,
		"version":      u.version,
		"status":       u.status,
		"description":  "unit " + u.id,
		"owner":        u.owner,
		"dependencies": deps,
		"compatibility": map[string]any{
			"breaking_changes":    "none",
			"backward_compatible": true,
		},
	})
}

func (b *Builder) marshal(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	require.NoError(b.t, err)
	return string(data) + "\n"
}
