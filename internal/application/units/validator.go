package units

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/zjrosen/govkit/internal/domain/unit"
	"github.com/zjrosen/govkit/internal/log"
)

// Scope selects what Validate checks. The zero value checks every
// registered unit; UnitPath restricts the declaration pass to one unit directory.
type Scope struct {
	UnitPath string
}

// ValidationResult is the outcome of Validate.
type ValidationResult struct {
	// RegistryUnits is the number of units in the registry.
	RegistryUnits int
	// Validated lists, in order, the registry keys whose declaration parsed.
	Validated []string
	// DeclarationErrors are messages from the declaration pass.
	DeclarationErrors []string
	// PathErrors are messages from the registry path pass.
	PathErrors []string
	// Report holds every message, declaration pass first.
	Report unit.ValidationReport
	// Units is the accepted working set keyed by declared unit_id.
	Units map[string]*unit.Declaration
}

// Passed reports whether no inconsistency was found.
func (r *ValidationResult) Passed() bool {
	return r.Report.Passed()
}

// Err returns nil on success or an error wrapping ErrValidationFailed.
func (r *ValidationResult) Err() error {
	if r.Passed() {
		return nil
	}
	return fmt.Errorf("%w: %d validation error(s)", ErrValidationFailed, r.Report.Len())
}

type target struct {
	id       string
	declPath string
}

// Validate checks the registry against unit declarations and the filesystem.
// Per-unit problems become report messages; only a missing or unreadable
// single-path target is returned as an error.
func Validate(ctx context.Context, loader *Loader, reg *unit.Registry, scope Scope) (*ValidationResult, error) {
	targets, err := resolveTargets(ctx, loader, reg, scope)
	if err != nil {
		return nil, err
	}

	res := &ValidationResult{
		RegistryUnits: reg.Len(),
		Units:         make(map[string]*unit.Declaration, len(targets)),
	}

	for _, t := range targets {
		decl, err := loader.LoadDeclaration(ctx, t.declPath)
		switch {
		case errors.Is(err, ErrDeclarationMissing):
			res.DeclarationErrors = append(res.DeclarationErrors, fmt.Sprintf("%s: UNIT declaration missing", t.id))
			continue
		case err != nil:
			res.DeclarationErrors = append(res.DeclarationErrors, fmt.Sprintf("%s: Failed to parse declaration: %v", t.id, causeOf(err)))
			continue
		}

		res.DeclarationErrors = append(res.DeclarationErrors, checkDeclaration(reg, t.id, decl)...)
		res.Units[decl.UnitID] = decl
		res.Validated = append(res.Validated, t.id)
	}

	for _, id := range reg.IDs() {
		entry, _ := reg.Entry(id)
		if !exists(loader.FS(), entry.Path) {
			res.PathErrors = append(res.PathErrors, fmt.Sprintf("%s: Path does not exist: %s", id, entry.Path))
		}
	}

	res.Report.Extend(res.DeclarationErrors...)
	res.Report.Extend(res.PathErrors...)

	log.Debug(log.CatRegistry, "validation finished",
		"targets", len(targets), "accepted", len(res.Units), "errors", res.Report.Len())
	return res, nil
}

func resolveTargets(ctx context.Context, loader *Loader, reg *unit.Registry, scope Scope) ([]target, error) {
	if scope.UnitPath == "" {
		ids := reg.IDs()
		targets := make([]target, 0, len(ids))
		for _, id := range ids {
			entry, _ := reg.Entry(id)
			targets = append(targets, target{id: id, declPath: DeclarationPath(entry.Path)})
		}
		return targets, nil
	}

	declPath := DeclarationPath(scope.UnitPath)
	decl, err := loader.LoadDeclaration(ctx, declPath)
	if err != nil {
		if errors.Is(err, ErrDeclarationMissing) {
			return nil, fmt.Errorf("%w: declaration not found at %s", ErrUnitPathNotFound, declPath)
		}
		return nil, err
	}
	return []target{{id: decl.UnitID, declPath: declPath}}, nil
}

// checkDeclaration returns the consistency messages for one parsed declaration.
func checkDeclaration(reg *unit.Registry, id string, decl *unit.Declaration) []string {
	var msgs []string
	if decl.UnitID != id {
		msgs = append(msgs, fmt.Sprintf("%s: unit_id mismatch (registry: %s, file: %s)", id, id, decl.UnitID))
	}
	if !reg.Has(decl.UnitID) {
		msgs = append(msgs, fmt.Sprintf("%s: unit_id not in registry", decl.UnitID))
	}
	if !decl.UnitType.Valid() {
		msgs = append(msgs, fmt.Sprintf("%s: Invalid unit_type: %s", id, decl.UnitType))
	}
	if !decl.Status.Valid() {
		msgs = append(msgs, fmt.Sprintf("%s: Invalid status: %s", id, decl.Status))
	}
	return msgs
}

func exists(fsys fs.FS, p string) bool {
	_, err := fs.Stat(fsys, CleanPath(p))
	return err == nil
}
