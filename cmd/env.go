package cmd

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/govkit/internal/application/units"
	"github.com/zjrosen/govkit/internal/cachemanager"
	"github.com/zjrosen/govkit/internal/config"
	"github.com/zjrosen/govkit/internal/domain/audit"
	"github.com/zjrosen/govkit/internal/domain/unit"
	"github.com/zjrosen/govkit/internal/infrastructure/sqlite"
	"github.com/zjrosen/govkit/internal/log"
	"github.com/zjrosen/govkit/internal/paths"
	"github.com/zjrosen/govkit/internal/presentation"
	"github.com/zjrosen/govkit/internal/tracing"
)

const shutdownTimeout = 5 * time.Second

// env is the resolved repository plus the services one command run needs.
type env struct {
	cfg     config.Config
	root    string
	fsys    fs.FS
	printer *presentation.Printer
	tracing *tracing.Provider
	loader  *units.Loader
	units   *units.Service
	db      *sqlite.DB // nil unless auditing is enabled
	runs    audit.Repository
	now     func() time.Time
}

// openEnv resolves the repository root and opens tracing and, when enabled,
// the audit database.
func (c *cli) openEnv(cmd *cobra.Command) (*env, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := paths.ResolveRepoRoot(cwd, c.cfg.RepoRoot, c.cfg.MarkerDir)
	if err != nil {
		return nil, err
	}
	log.Debug(log.CatConfig, "resolved repository root", "root", root)

	noColor := c.opts.noColor || os.Getenv("NO_COLOR") != ""
	e := &env{
		cfg:     c.cfg,
		root:    root,
		fsys:    os.DirFS(root),
		printer: presentation.NewPrinter(cmd.OutOrStdout(), noColor),
		now:     time.Now,
	}

	ttl := c.cfg.Cache.TTL
	cache := cachemanager.NewInMemoryCacheManager[*unit.Declaration]("unit-declarations", ttl, cachemanager.DefaultCleanupInterval)
	e.loader = units.NewLoader(e.fsys, units.WithDeclarationCache(cache, ttl))
	e.units = units.NewService(e.loader, c.cfg.RegistryPath)

	e.tracing, err = tracing.NewProvider(tracing.Config{
		Enabled:      c.cfg.Tracing.Enabled,
		Exporter:     c.cfg.Tracing.Exporter,
		FilePath:     c.cfg.Tracing.FilePath,
		OTLPEndpoint: c.cfg.Tracing.OTLPEndpoint,
		SampleRate:   c.cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, err
	}

	if c.cfg.Audit.Enabled {
		db, err := sqlite.NewDB(e.auditPath())
		if err != nil {
			e.close()
			return nil, err
		}
		e.db = db
		e.runs = db.RunRepository()
	}
	return e, nil
}

// auditPath is the audit database location, relative to the repository root
// unless absolute.
func (e *env) auditPath() string {
	p := e.cfg.Audit.Path
	if p == "" {
		p = config.Defaults().Audit.Path
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.root, p)
}

func (e *env) close() {
	if e.tracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := e.tracing.Shutdown(ctx); err != nil {
			log.Warn(log.CatTrace, "tracer shutdown failed", "error", err)
		}
		cancel()
	}
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			log.Warn(log.CatAudit, "closing audit database failed", "error", err)
		}
	}
}

// run executes fn as one traced command and records it in the audit
// history. The command's error, if any, is returned unchanged.
func (e *env) run(ctx context.Context, name string, fn tracing.CommandFunc) error {
	started := e.now()
	var traceID string
	out, err := tracing.RunCommand(ctx, e.tracing.Tracer(), name, func(ctx context.Context) (tracing.Outcome, error) {
		traceID = tracing.TraceID(ctx)
		return fn(ctx)
	}, attribute.String(tracing.AttrRepoRoot, e.root))

	e.record(ctx, name, started, traceID, out, err)
	return err
}

func (e *env) record(ctx context.Context, name string, started time.Time, traceID string, out tracing.Outcome, err error) {
	if e.runs == nil {
		return
	}
	msgs := out.Messages
	if err != nil && len(msgs) == 0 {
		msgs = []string{err.Error()}
	}
	r := audit.NewRun(name, e.root, started)
	r.TraceID = traceID
	r.Finish(out.Passed && err == nil, msgs, e.now())
	if saveErr := e.runs.Save(ctx, r); saveErr != nil {
		log.ErrorErr(log.CatAudit, "failed to record run", saveErr, "command", name)
		return
	}
	log.Debug(log.CatAudit, "run recorded", "id", r.ID, "command", name, "passed", r.Passed)
}

// rel renders an absolute path relative to the repository root.
func (e *env) rel(p string) string {
	return paths.Rel(e.root, p)
}
