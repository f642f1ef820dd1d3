package units

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/zjrosen/govkit/internal/cachemanager"
	"github.com/zjrosen/govkit/internal/domain/unit"
	"github.com/zjrosen/govkit/internal/log"
)

const (
	// DefaultRegistryPath is the registry location relative to the repository root.
	DefaultRegistryPath = "specs/_governance/UNIT_REGISTRY.json"
	// DeclarationFile is the declaration file name inside each unit directory.
	DeclarationFile = "UNIT.json"
)

// registryFile mirrors UNIT_REGISTRY.json. Pointer fields are required.
type registryFile struct {
	RegistryVersion *string                      `json:"registry_version"`
	Description     *string                      `json:"description"`
	Units           map[string]registryEntryFile `json:"units"`
	Reserved        []string                     `json:"reserved"`
	Deprecated      []string                     `json:"deprecated"`
}

type registryEntryFile struct {
	Path        *string `json:"path"`
	Domain      *string `json:"domain"`
	Status      *string `json:"status"`
	Description *string `json:"description"`
}

// declarationFile mirrors UNIT.json. Pointer fields are required.
type declarationFile struct {
	UnitID        *string            `json:"unit_id"`
	UnitType      *string            `json:"unit_type"`
	Version       *string            `json:"version"`
	Status        *string            `json:"status"`
	Description   *string            `json:"description"`
	Owner         *string            `json:"owner"`
	Dependencies  []string           `json:"dependencies"`
	Compatibility *compatibilityFile `json:"compatibility"`
}

type compatibilityFile struct {
	BreakingChanges    *string `json:"breaking_changes"`
	BackwardCompatible *bool   `json:"backward_compatible"`
}

// requiredField pairs a JSON field name with whether the document set it.
type requiredField struct {
	name    string
	present bool
}

func firstMissing(fields ...requiredField) error {
	for _, f := range fields {
		if !f.present {
			return fmt.Errorf("missing field `%s`", f.name)
		}
	}
	return nil
}

// DeclarationPath returns the slash-separated declaration path for a unit directory.
func DeclarationPath(unitDir string) string {
	return path.Join(CleanPath(unitDir), DeclarationFile)
}

// CleanPath normalises a repository-relative path for fs.FS lookup.
func CleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(strings.TrimPrefix(p, "/"))
	return strings.TrimPrefix(p, "./")
}

// LoadRegistry reads and decodes the registry at registryPath.
func LoadRegistry(fsys fs.FS, registryPath string) (*unit.Registry, error) {
	if registryPath == "" {
		registryPath = DefaultRegistryPath
	}
	registryPath = CleanPath(registryPath)

	data, err := fs.ReadFile(fsys, registryPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRegistryNotFound, registryPath)
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrRegistryParse, registryPath, err)
	}

	reg, err := decodeRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRegistryParse, registryPath, err)
	}

	log.Debug(log.CatRegistry, "registry loaded", "path", registryPath, "units", reg.Len())
	return reg, nil
}

func decodeRegistry(data []byte) (*unit.Registry, error) {
	var raw registryFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if err := firstMissing(
		requiredField{"registry_version", raw.RegistryVersion != nil},
		requiredField{"description", raw.Description != nil},
		requiredField{"units", raw.Units != nil},
	); err != nil {
		return nil, err
	}

	reg := &unit.Registry{
		Version:     *raw.RegistryVersion,
		Description: *raw.Description,
		Units:       make(map[string]unit.RegistryEntry, len(raw.Units)),
		Reserved:    raw.Reserved,
		Deprecated:  raw.Deprecated,
	}
	for id, e := range raw.Units {
		if err := firstMissing(
			requiredField{"path", e.Path != nil},
			requiredField{"domain", e.Domain != nil},
			requiredField{"status", e.Status != nil},
			requiredField{"description", e.Description != nil},
		); err != nil {
			return nil, fmt.Errorf("units.%s: %w", id, err)
		}
		reg.Units[id] = unit.RegistryEntry{
			Path:        *e.Path,
			Domain:      *e.Domain,
			Status:      *e.Status,
			Description: *e.Description,
		}
	}
	return reg, nil
}

func decodeDeclaration(data []byte) (*unit.Declaration, error) {
	var raw declarationFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if err := firstMissing(
		requiredField{"unit_id", raw.UnitID != nil},
		requiredField{"unit_type", raw.UnitType != nil},
		requiredField{"version", raw.Version != nil},
		requiredField{"status", raw.Status != nil},
		requiredField{"description", raw.Description != nil},
		requiredField{"owner", raw.Owner != nil},
		requiredField{"compatibility", raw.Compatibility != nil},
	); err != nil {
		return nil, err
	}
	if err := firstMissing(
		requiredField{"breaking_changes", raw.Compatibility.BreakingChanges != nil},
		requiredField{"backward_compatible", raw.Compatibility.BackwardCompatible != nil},
	); err != nil {
		return nil, fmt.Errorf("compatibility: %w", err)
	}

	deps := raw.Dependencies
	if deps == nil {
		deps = []string{}
	}
	return &unit.Declaration{
		UnitID:       *raw.UnitID,
		UnitType:     unit.UnitType(*raw.UnitType),
		Version:      *raw.Version,
		Status:       unit.Status(*raw.Status),
		Description:  *raw.Description,
		Owner:        *raw.Owner,
		Dependencies: deps,
		Compatibility: unit.Compatibility{
			BreakingChanges:    *raw.Compatibility.BreakingChanges,
			BackwardCompatible: *raw.Compatibility.BackwardCompatible,
		},
	}, nil
}

// Loader reads unit declarations from a repository filesystem, optionally
// through a read-through cache keyed on path, size and modification time.
type Loader struct {
	fsys  fs.FS
	cache *cachemanager.ReadThroughCache[*unit.Declaration, string]
	ttl   time.Duration
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithDeclarationCache serves declarations through cache for ttl.
func WithDeclarationCache(cache cachemanager.CacheManager[*unit.Declaration], ttl time.Duration) LoaderOption {
	return func(l *Loader) {
		l.ttl = ttl
		l.cache = cachemanager.NewReadThroughCache(cache, l.readDeclaration, false)
	}
}

// NewLoader creates a Loader over fsys.
func NewLoader(fsys fs.FS, opts ...LoaderOption) *Loader {
	l := &Loader{fsys: fsys}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FS returns the filesystem the loader reads from.
func (l *Loader) FS() fs.FS {
	return l.fsys
}

// LoadDeclaration loads the declaration file at declPath. A missing file
// yields ErrDeclarationMissing, a malformed one ErrDeclarationParse.
func (l *Loader) LoadDeclaration(ctx context.Context, declPath string) (*unit.Declaration, error) {
	declPath = CleanPath(declPath)

	info, err := fs.Stat(l.fsys, declPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil, fmt.Errorf("%w: %s", ErrDeclarationMissing, declPath)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrDeclarationParse, declPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrDeclarationMissing, declPath)
	}

	if l.cache == nil {
		return l.readDeclaration(ctx, declPath)
	}
	key := fmt.Sprintf("%s|%d|%d", declPath, info.Size(), info.ModTime().UnixNano())
	return l.cache.Get(ctx, key, declPath, l.ttl)
}

func (l *Loader) readDeclaration(_ context.Context, declPath string) (*unit.Declaration, error) {
	data, err := fs.ReadFile(l.fsys, declPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDeclarationMissing, declPath)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrDeclarationParse, declPath, err)
	}
	decl, err := decodeDeclaration(data)
	if err != nil {
		return nil, &ParseError{Path: declPath, Cause: err}
	}
	return decl, nil
}

// ParseError describes a malformed declaration. It matches ErrDeclarationParse.
type ParseError struct {
	Path  string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDeclarationParse, e.Path, e.Cause)
}

// Is reports whether target is ErrDeclarationParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrDeclarationParse
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// causeOf returns the underlying decode error for report messages.
func causeOf(err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Cause
	}
	return err
}

// LoadUnits loads every registry unit's declaration in sorted registry-key
// order. Units whose declaration cannot be loaded are skipped and never
// synthesised. The result is keyed by registry key.
func (l *Loader) LoadUnits(ctx context.Context, reg *unit.Registry) map[string]*unit.Declaration {
	loaded := make(map[string]*unit.Declaration, reg.Len())
	for _, id := range reg.IDs() {
		entry, _ := reg.Entry(id)
		decl, err := l.LoadDeclaration(ctx, DeclarationPath(entry.Path))
		if err != nil {
			log.Debug(log.CatRegistry, "skipping unit", "unit", id, "error", err)
			continue
		}
		loaded[id] = decl
	}
	return loaded
}
