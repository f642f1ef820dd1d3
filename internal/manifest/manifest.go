// Package manifest generates deterministic SHA-256 manifests for the
// governance tree and for individual units, detects drift against a
// committed manifest, and publishes manifests to object storage.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/zjrosen/govkit/internal/log"
	"github.com/zjrosen/govkit/internal/scan"
)

const (
	Version          = "2.0.0"
	DefaultGenerator = "govkit"
	GovernanceDir    = "specs/_governance"
	DefaultOutputDir = "specs/_governance/manifests"
	GovernanceFile   = "MANIFEST_governance.sha256.json"
)

var (
	// ErrPathNotFound is returned when the directory to manifest does not exist.
	ErrPathNotFound = errors.New("path does not exist")
	// ErrUnitNotFound is returned when --unit names an unregistered unit.
	ErrUnitNotFound = errors.New("unit not found")
	// ErrManifestDrift is returned when a regenerated manifest differs from the stored one.
	ErrManifestDrift = errors.New("manifest drift detected")
)

// FileEntry describes one file in a manifest.
type FileEntry struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
	Type   string `json:"type"`
}

// Manifest is the on-disk manifest document. Field order is the
// serialisation order.
type Manifest struct {
	Baseline        string      `json:"baseline"`
	Domain          string      `json:"domain"`
	FileCount       int         `json:"file_count"`
	Files           []FileEntry `json:"files"`
	GeneratedAt     string      `json:"generated_at"`
	Generator       string      `json:"generator"`
	ManifestVersion string      `json:"manifest_version"`
}

// UnitFileName returns the default manifest file name for a unit id.
func UnitFileName(unitID string) string {
	return "UNIT_MANIFEST_" + strings.ReplaceAll(unitID, "/", "_") + ".sha256.json"
}

// baseExcludes apply to every manifest.
var baseExcludes = []string{
	"**/.git*",
	"**/.git*/**",
	"**/_reference/**",
	"**/CODEOWNERS",
	"**/manifests/**",
}

// Builder hashes repository files into manifests.
type Builder struct {
	fsys      fs.FS
	hasher    *Hasher
	generator string
	now       func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithHasher shares a file-hash memo between builds.
func WithHasher(h *Hasher) BuilderOption {
	return func(b *Builder) { b.hasher = h }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// WithGenerator sets the generator field.
func WithGenerator(name string) BuilderOption {
	return func(b *Builder) { b.generator = name }
}

// NewBuilder creates a Builder over fsys rooted at the repository root.
func NewBuilder(fsys fs.FS, opts ...BuilderOption) *Builder {
	b := &Builder{fsys: fsys, generator: DefaultGenerator, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	if b.hasher == nil {
		b.hasher = NewHasher(0)
	}
	return b
}

// Governance builds the manifest of the governance directory.
func (b *Builder) Governance() (*Manifest, error) {
	return b.build(GovernanceDir, "_governance", "global")
}

// Unit builds the manifest of one unit directory.
func (b *Builder) Unit(unitPath string) (*Manifest, error) {
	dir := path.Clean(strings.TrimPrefix(unitPath, "./"))
	return b.build(dir, "unit", dir)
}

func (b *Builder) build(dir, domain, baseline string) (*Manifest, error) {
	info, err := fs.Stat(b.fsys, dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, dir)
	}

	w, err := scan.NewWalker(b.fsys, baseExcludes)
	if err != nil {
		return nil, err
	}
	paths, err := w.Files(dir)
	if err != nil {
		return nil, err
	}

	files := make([]FileEntry, 0, len(paths))
	for _, p := range paths {
		sum, size, err := b.hasher.Sum(b.fsys, p)
		if err != nil {
			return nil, fmt.Errorf("hashing %s: %w", p, err)
		}
		files = append(files, FileEntry{Path: p, SHA256: sum, Size: size, Type: "file"})
	}

	log.Debug(log.CatManifest, "manifest built", "dir", dir, "files", len(files))
	return &Manifest{
		Baseline:        baseline,
		Domain:          domain,
		FileCount:       len(files),
		Files:           files,
		GeneratedAt:     b.now().UTC().Format("2006-01-02T15:04:05.000000+00:00"),
		Generator:       b.generator,
		ManifestVersion: Version,
	}, nil
}

// Encode renders m as indented JSON with a trailing newline.
func Encode(m *Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return buf.Bytes(), nil
}
