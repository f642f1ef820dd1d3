package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/govkit/internal/application/units"
	"github.com/zjrosen/govkit/internal/domain/check"
	"github.com/zjrosen/govkit/internal/log"
	"github.com/zjrosen/govkit/internal/pubsub"
	"github.com/zjrosen/govkit/internal/tracing"
	"github.com/zjrosen/govkit/internal/watcher"
)

func newWatchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-run unit validation and graph verification on every change",
		Long: `Watch specs/ recursively and, after each burst of changes to .md or .json
files, re-run unit validation and dependency graph verification. Stops on
Ctrl+C.

The debounce window is configured with watch.debounce.`,
		Args: cobra.NoArgs,
		RunE: c.action(func(cmd *cobra.Command, _ []string, e *env) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := watcher.DefaultConfig(filepath.Join(e.root, e.cfg.SpecsDir))
			if e.cfg.Watch.Debounce > 0 {
				cfg.DebounceDur = e.cfg.Watch.Debounce
			}
			w, err := watcher.New(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = w.Stop() }()

			changes := w.Subscribe(ctx)
			if err := w.Start(); err != nil {
				return err
			}
			e.printer.Banner("WATCH MODE")
			e.printer.Printf("Watching %s (Ctrl+C to stop)", cfg.Root)
			return watchLoop(ctx, e, changes)
		}),
	}
}

// watchLoop runs one check cycle immediately and then one per change event,
// surfacing logged warnings as they happen. It returns when ctx is done or
// changes is closed.
func watchLoop(ctx context.Context, e *env, changes <-chan pubsub.Event[watcher.Change]) error {
	warnings := log.Subscribe(ctx, log.LevelWarn)

	watchCycle(ctx, e, nil)
	for {
		select {
		case <-ctx.Done():
			e.printer.Blank()
			e.printer.Printf("Stopped.")
			return nil
		case ev, ok := <-changes:
			if !ok {
				return nil
			}
			watchCycle(ctx, e, ev.Payload.Paths)
		case entry, ok := <-warnings:
			if !ok {
				warnings = nil
				continue
			}
			e.printer.Status(check.StatusWarn, fmt.Sprintf("[%s] %s", entry.Category, entry.Message))
		}
	}
}

func watchCycle(ctx context.Context, e *env, changed []string) {
	p := e.printer
	p.Blank()
	stamp := e.now().Format("15:04:05")
	switch len(changed) {
	case 0:
		p.Printf("[%s] Initial run", stamp)
	case 1:
		p.Printf("[%s] Changed: %s", stamp, e.rel(changed[0]))
	default:
		p.Printf("[%s] Changed: %s (+%d more)", stamp, e.rel(changed[0]), len(changed)-1)
	}

	err := e.run(ctx, "watch", func(ctx context.Context) (tracing.Outcome, error) {
		var out tracing.Outcome

		vres, verr := e.units.Validate(ctx, units.Scope{})
		switch {
		case verr != nil:
			p.Status(check.StatusFail, "unit-validate: "+verr.Error())
			out.Messages = append(out.Messages, verr.Error())
		case vres.Passed():
			p.Status(check.StatusPass, fmt.Sprintf("unit-validate (%d units)", len(vres.Units)))
		default:
			p.Status(check.StatusFail, fmt.Sprintf("unit-validate (%d error(s))", vres.Report.Len()))
			p.Messages(vres.Report.Messages())
			out.Messages = append(out.Messages, vres.Report.Messages()...)
			verr = vres.Err()
		}

		gres, gerr := e.units.VerifyGraph(ctx)
		switch {
		case gres == nil:
			p.Status(check.StatusFail, "graph-verify: "+gerr.Error())
			out.Messages = append(out.Messages, gerr.Error())
		case gres.Passed():
			p.Status(check.StatusPass, fmt.Sprintf("graph-verify (%d nodes, %d edges)", gres.Nodes, gres.Edges))
		default:
			p.Status(check.StatusFail, "graph-verify")
			p.Messages(gres.Messages)
			out.Messages = append(out.Messages, gres.Messages...)
		}

		err := errors.Join(verr, gerr)
		out.Passed = err == nil
		return out, err
	})
	if err != nil {
		log.Debug(log.CatWatcher, "watch cycle failed", "error", err)
	}
}
