// Package watcher watches the specification tree and publishes a debounced
// change event whenever governance documents or unit declarations change.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/govkit/internal/log"
	"github.com/zjrosen/govkit/internal/pubsub"
)

// Change lists the files touched during one debounce window.
type Change struct {
	Paths []string
}

// Watcher monitors a directory tree for changes to .md and .json files.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	debounce  time.Duration
	skipDirs  map[string]bool
	broker    *pubsub.Broker[Change]
	done      chan struct{}
	stopOnce  sync.Once
}

// Config holds watcher configuration options.
type Config struct {
	Root        string
	DebounceDur time.Duration
	// SkipDirs are directory base names that are never watched, e.g. ".git".
	SkipDirs []string
}

// DefaultConfig returns the defaults for watching root.
func DefaultConfig(root string) Config {
	return Config{
		Root:        root,
		DebounceDur: 300 * time.Millisecond,
		SkipDirs:    []string{".git", "target", "manifests"},
	}
}

// New creates a watcher. Call Start to begin watching.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	skip := make(map[string]bool, len(cfg.SkipDirs))
	for _, d := range cfg.SkipDirs {
		skip[d] = true
	}

	return &Watcher{
		fsWatcher: fsw,
		root:      cfg.Root,
		debounce:  cfg.DebounceDur,
		skipDirs:  skip,
		broker:    pubsub.NewBrokerWithBuffer[Change](4),
		done:      make(chan struct{}),
	}, nil
}

// Subscribe returns a channel of change events. It is closed when ctx is
// cancelled or the watcher stops.
func (w *Watcher) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return w.broker.Subscribe(ctx)
}

// Start adds every directory under the root and begins processing events.
func (w *Watcher) Start() error {
	if err := w.addTree(w.root); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop terminates the watcher and releases resources. Stop is idempotent.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
		w.broker.Close()
	})
	return err
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && w.skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(p); err != nil {
			return fmt.Errorf("watching directory %s: %w", p, err)
		}
		return nil
	})
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending = map[string]struct{}{}
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) && w.isNewDir(event.Name) {
				if err := w.addTree(event.Name); err != nil {
					log.Warn(log.CatWatcher, "failed to watch new directory", "path", event.Name, "error", err)
				}
				continue
			}

			if !isRelevantEvent(event) || w.skipDirs[filepath.Base(event.Name)] {
				continue
			}
			pending[event.Name] = struct{}{}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if len(pending) > 0 {
				w.publish(pending)
				pending = map[string]struct{}{}
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn(log.CatWatcher, "watch error", "error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) publish(pending map[string]struct{}) {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	log.Debug(log.CatWatcher, "change detected", "files", len(paths))
	w.broker.Publish(pubsub.ChangeEvent, Change{Paths: paths})
}

func (w *Watcher) isNewDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir() && !w.skipDirs[filepath.Base(p)]
}

// isRelevantEvent reports whether the event touches a document or declaration.
// A removed or renamed path without an extension is treated as a unit
// directory, since it can no longer be stat'ed.
func isRelevantEvent(event fsnotify.Event) bool {
	removed := event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
	if !removed && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	switch strings.ToLower(filepath.Ext(event.Name)) {
	case ".md", ".json":
		return true
	case "":
		return removed
	}
	return false
}
