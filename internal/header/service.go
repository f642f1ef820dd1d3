package header

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/zjrosen/govkit/internal/log"
	"github.com/zjrosen/govkit/internal/scan"
)

// ErrHeaderValidationFailed is returned when at least one header error was found.
var ErrHeaderValidationFailed = errors.New("header validation failed")

// DefaultExcludes are the paths skipped when scanning the specification tree.
var DefaultExcludes = []string{
	"**/_deprecated/**",
	"**/_reference/**",
	"**/.git/**",
	"**/target/**",
	"**/manifests/**",
	"**/_roadmap/**",
}

// FileResult is the validation outcome for one document.
type FileResult struct {
	Path string
	Result
}

// Summary aggregates a validation run.
type Summary struct {
	Files    []FileResult // only documents with findings
	Checked  int
	Errors   int
	Warnings int
}

// Err returns nil when no errors were found, otherwise an error wrapping
// ErrHeaderValidationFailed. Warnings alone pass.
func (s *Summary) Err() error {
	if s.Errors == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d error(s), %d warning(s)", ErrHeaderValidationFailed, s.Errors, s.Warnings)
}

func (s *Summary) add(path string, res Result) {
	s.Checked++
	s.Errors += len(res.Errors)
	s.Warnings += len(res.Warnings)
	if !res.Clean() {
		s.Files = append(s.Files, FileResult{Path: path, Result: res})
	}
}

// ValidateTree validates every markdown document under dir.
func ValidateTree(w *scan.Walker, dir string) (*Summary, error) {
	files, err := w.Files(dir, ".md")
	if err != nil {
		return nil, err
	}

	sum := &Summary{}
	for _, p := range files {
		content, err := fs.ReadFile(w.FS(), p)
		if err != nil {
			log.Warn(log.CatHeader, "unreadable document skipped", "path", p, "error", err)
			continue
		}
		res := Validate(content)
		for _, warning := range res.Warnings {
			log.Debug(log.CatHeader, "header warning", "path", p, "warning", warning)
		}
		sum.add(p, res)
	}
	return sum, nil
}

// ValidateFile validates a single document on the local filesystem.
func ValidateFile(path string) (*Summary, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path is the user-selected document
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	sum := &Summary{}
	sum.add(path, Validate(content))
	return sum, nil
}
