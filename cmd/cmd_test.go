package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/govkit/internal/config"
	"github.com/zjrosen/govkit/internal/testutil"
)

// newRepo writes a repository that passes every check and returns its root.
func newRepo(t *testing.T) string {
	t.Helper()
	return testutil.NewBuilder(t).WithStandardRepo().Build()
}

// newConfig writes a default config file with settings applied as
// key/value pairs and returns its path.
func newConfig(t *testing.T, settings ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(path))
	for i := 0; i+1 < len(settings); i += 2 {
		require.NoError(t, config.SetValue(path, settings[i], settings[i+1]))
	}
	return path
}

// execute runs govkit with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// inRepo runs a repository command against root with the given config.
func inRepo(t *testing.T, root, cfgPath string, args ...string) (string, error) {
	t.Helper()
	return execute(t, append(args, "--repo-root", root, "--config", cfgPath, "--no-color")...)
}
