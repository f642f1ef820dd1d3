package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zjrosen/govkit/internal/application/units"
	"github.com/zjrosen/govkit/internal/log"
)

// Request selects what to manifest and how to handle the result.
type Request struct {
	Governance bool
	UnitID     string
	Output     string // explicit output path; defaults under the output dir
	Check      bool   // compare against the stored manifest instead of writing
}

// Outcome describes a completed generate or check.
type Outcome struct {
	Manifest   *Manifest
	Content    []byte
	Name       string // file name, also used as the object key
	OutputPath string
	Diff       []string
	Written    bool
}

// Service generates manifests for one repository root.
type Service struct {
	root         string
	fsys         fs.FS
	builder      *Builder
	outputDir    string
	registryPath string
}

// NewService creates a Service for the repository at root. Empty outputDir
// and registryPath use the defaults.
func NewService(root string, builder *Builder, outputDir, registryPath string) *Service {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	return &Service{
		root:         root,
		fsys:         builder.fsys,
		builder:      builder,
		outputDir:    outputDir,
		registryPath: registryPath,
	}
}

// Run builds the requested manifest and either writes it or, with Check,
// compares it to the stored copy.
func (s *Service) Run(req Request) (*Outcome, error) {
	m, name, err := s.build(req)
	if err != nil {
		return nil, err
	}
	content, err := Encode(m)
	if err != nil {
		return nil, err
	}

	out := &Outcome{Manifest: m, Content: content, Name: name, OutputPath: req.Output}
	if out.OutputPath == "" {
		out.OutputPath = filepath.Join(s.root, filepath.FromSlash(s.outputDir), name)
	}

	if req.Check {
		stored, err := os.ReadFile(out.OutputPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return out, fmt.Errorf("%w: manifest file does not exist: %s", ErrManifestDrift, out.OutputPath)
			}
			return out, fmt.Errorf("reading %s: %w", out.OutputPath, err)
		}
		out.Diff, err = CheckDrift(out.OutputPath, stored, content)
		if err != nil {
			log.Warn(log.CatManifest, "manifest drift", "path", out.OutputPath, "changed_lines", len(out.Diff))
		}
		return out, err
	}

	if err := os.MkdirAll(filepath.Dir(out.OutputPath), 0o755); err != nil {
		return out, fmt.Errorf("creating manifest dir: %w", err)
	}
	if err := os.WriteFile(out.OutputPath, content, 0o644); err != nil {
		return out, fmt.Errorf("writing manifest: %w", err)
	}
	out.Written = true
	log.Info(log.CatManifest, "manifest written", "path", out.OutputPath, "files", m.FileCount)
	return out, nil
}

func (s *Service) build(req Request) (*Manifest, string, error) {
	switch {
	case req.Governance && req.UnitID != "":
		return nil, "", fmt.Errorf("--governance and --unit are mutually exclusive")
	case req.Governance:
		m, err := s.builder.Governance()
		return m, GovernanceFile, err
	case req.UnitID != "":
		reg, err := units.LoadRegistry(s.fsys, s.registryPath)
		if err != nil {
			return nil, "", err
		}
		entry, ok := reg.Entry(req.UnitID)
		if !ok {
			return nil, "", fmt.Errorf("%w: %s", ErrUnitNotFound, req.UnitID)
		}
		m, err := s.builder.Unit(entry.Path)
		return m, UnitFileName(req.UnitID), err
	default:
		return nil, "", fmt.Errorf("either --governance or --unit is required")
	}
}
