// Package scan walks the repository filesystem with glob-based exclusions.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Walker lists repository files while skipping excluded paths.
// Exclusion patterns use doublestar syntax and match slash-separated,
// repository-relative paths, e.g. "**/_deprecated/**".
type Walker struct {
	fsys     fs.FS
	excludes []string
}

// NewWalker validates the exclusion patterns and returns a Walker over fsys.
func NewWalker(fsys fs.FS, excludes []string) (*Walker, error) {
	for _, p := range excludes {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return &Walker{fsys: fsys, excludes: excludes}, nil
}

// FS returns the walked filesystem.
func (w *Walker) FS() fs.FS {
	return w.fsys
}

// Excluded reports whether rel matches any exclusion pattern.
func (w *Walker) Excluded(rel string) bool {
	for _, p := range w.excludes {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Files returns every non-excluded regular file under dir, in lexical order.
// When exts is non-empty only files with one of those extensions (".md")
// are returned. A missing dir yields no files.
func (w *Walker) Files(dir string, exts ...string) ([]string, error) {
	var files []string
	err := fs.WalkDir(w.fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if p != dir && w.Excluded(p) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || w.Excluded(p) {
			return nil
		}
		if len(exts) > 0 && !hasExt(p, exts) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	return files, nil
}

// Exists reports whether p exists in the walked filesystem.
func (w *Walker) Exists(p string) bool {
	_, err := fs.Stat(w.fsys, p)
	return err == nil
}

func hasExt(p string, exts []string) bool {
	ext := path.Ext(p)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
