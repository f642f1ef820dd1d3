// Package paths provides repository path resolution utilities.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMarker is the directory whose presence identifies a repository root.
const DefaultMarker = "specs"

// ErrRepoRootNotFound is returned when no ancestor contains the marker directory.
var ErrRepoRootNotFound = errors.New("repository root not found")

// ResolveRepoRoot returns the repository root to operate on.
//
// When override is non-empty it is returned (made absolute) without searching.
// Otherwise the search starts at startDir and walks upward until a directory
// containing marker as a subdirectory is found:
//   - "/repo/specs/standards" with marker "specs" -> "/repo"
//   - "/repo" -> "/repo"
//   - "/tmp/elsewhere" -> ErrRepoRootNotFound
//
// An empty marker falls back to DefaultMarker.
func ResolveRepoRoot(startDir, override, marker string) (string, error) {
	if override != "" {
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", fmt.Errorf("resolving repo root %s: %w", override, err)
		}
		return abs, nil
	}
	if marker == "" {
		marker = DefaultMarker
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving start dir %s: %w", startDir, err)
	}

	for {
		if isDir(filepath.Join(dir, marker)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %q directory above %s", ErrRepoRootNotFound, marker, startDir)
		}
		dir = parent
	}
}

// Rel returns target relative to root using forward slashes, or target
// unchanged when it is not under root.
func Rel(root, target string) string {
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
