// Package doctor verifies that a repository is ready for governance work.
package doctor

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/zjrosen/govkit/internal/application/units"
	"github.com/zjrosen/govkit/internal/domain/check"
	"github.com/zjrosen/govkit/internal/domain/unit"
	"github.com/zjrosen/govkit/internal/log"
	"github.com/zjrosen/govkit/internal/manifest"
)

// ErrDoctorFailed is returned when at least one check failed or was skipped.
var ErrDoctorFailed = errors.New("doctor checks failed")

// RequiredDirs are the directories every specs tree must contain.
var RequiredDirs = []string{"standards", "meta"}

// hashProbe is hashed to confirm SHA-256 works in this environment.
var hashProbe = []byte("govkit doctor test")

// Options configures a doctor run.
type Options struct {
	SpecsDir      string
	RegistryPath  string
	RequiredFiles []string // repository-relative
}

// Run executes the five environment checks against fsys.
func Run(fsys fs.FS, opts Options) *check.Report {
	if opts.SpecsDir == "" {
		opts.SpecsDir = "specs"
	}
	if opts.RegistryPath == "" {
		opts.RegistryPath = units.DefaultRegistryPath
	}

	report := &check.Report{Title: "ENVIRONMENT DOCTOR"}
	report.Add(checkRequiredFiles(fsys, opts.RequiredFiles))

	reg, res := checkRegistry(fsys, opts.RegistryPath)
	report.Add(res)
	report.Add(checkRequiredDirs(fsys, opts.SpecsDir))
	report.Add(checkUnitPaths(fsys, reg))
	report.Add(checkHash())

	log.Debug(log.CatDoctor, "doctor finished", "failed", report.FailedCount())
	return report
}

// Err returns nil when report passed, otherwise an error wrapping ErrDoctorFailed.
func Err(report *check.Report) error {
	if report.Passed() {
		return nil
	}
	return fmt.Errorf("%w: %d check(s) failed", ErrDoctorFailed, report.FailedCount())
}

func exists(fsys fs.FS, p string) bool {
	_, err := fs.Stat(fsys, p)
	return err == nil
}

func checkRequiredFiles(fsys fs.FS, files []string) check.Result {
	const title = "Required governance files"
	var missing []string
	for _, f := range files {
		if !exists(fsys, f) {
			missing = append(missing, "Missing: "+f)
		}
	}
	if len(missing) > 0 {
		return check.Fail(title, "Required governance files missing", missing)
	}
	return check.Pass(title, "All required governance files exist")
}

func checkRegistry(fsys fs.FS, registryPath string) (*unit.Registry, check.Result) {
	const title = "Unit registry"
	reg, err := units.LoadRegistry(fsys, registryPath)
	switch {
	case errors.Is(err, units.ErrRegistryNotFound):
		return nil, check.Fail(title, path.Base(registryPath)+" does not exist", nil)
	case err != nil:
		return nil, check.Fail(title, fmt.Sprintf("%s parse error: %v", path.Base(registryPath), err), nil)
	}
	return reg, check.Pass(title, path.Base(registryPath)+" is valid")
}

func checkRequiredDirs(fsys fs.FS, specsDir string) check.Result {
	const title = "Required directories"
	var missing []string
	for _, d := range RequiredDirs {
		p := path.Join(specsDir, d)
		if info, err := fs.Stat(fsys, p); err != nil || !info.IsDir() {
			missing = append(missing, "Missing: "+p)
		}
	}
	if len(missing) > 0 {
		return check.Fail(title, "Required directories missing", missing)
	}
	return check.Pass(title, "All required directories exist (standards, meta)")
}

func checkUnitPaths(fsys fs.FS, reg *unit.Registry) check.Result {
	const title = "Unit paths"
	if reg == nil {
		return check.Skip(title, "Cannot check unit paths (registry invalid)")
	}
	var findings []string
	for _, id := range reg.IDs() {
		entry, _ := reg.Entry(id)
		if !exists(fsys, units.CleanPath(entry.Path)) {
			findings = append(findings, fmt.Sprintf("%s: Path does not exist: %s", id, entry.Path))
		}
	}
	if len(findings) > 0 {
		return check.Fail(title, "Unit paths missing", findings)
	}
	return check.Pass(title, fmt.Sprintf("All %d unit paths exist", reg.Len()))
}

func checkHash() check.Result {
	const title = "Hash computation"
	if len(manifest.SHA256Hex(hashProbe)) != 64 {
		return check.Fail(title, "Hash computation returned unexpected result", nil)
	}
	return check.Pass(title, "Hash computation functional (SHA-256)")
}
