// Package log provides structured logging for govkit.
// Logging is disabled unless enabled via --debug, GOVKIT_DEBUG, or --log-file.
// Every written entry is also published on a broker so long-running commands
// (watch) can surface warnings while they run.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/govkit/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups related log messages.
type Category string

const (
	CatRegistry Category = "registry" // Registry and declaration loading
	CatGraph    Category = "graph"    // Graph construction and cycle detection
	CatEnforce  Category = "enforce"  // No-debt enforcement checks
	CatHeader   Category = "header"   // Header validation
	CatManifest Category = "manifest" // Manifest generation and drift checks
	CatReport   Category = "report"   // Governance report
	CatDoctor   Category = "doctor"   // Environment checks
	CatConfig   Category = "config"   // Configuration loading/saving
	CatWatcher  Category = "watcher"  // File watcher events
	CatCache    Category = "cache"    // Cache operations
	CatAudit    Category = "audit"    // Audit history database
	CatPublish  Category = "publish"  // Object storage uploads
	CatTrace    Category = "trace"    // Tracing provider lifecycle
)

// Entry is a single formatted log record as published to listeners.
type Entry struct {
	Level    Level
	Category Category
	Message  string
	Line     string
}

// Logger provides structured logging.
type Logger struct {
	mu       sync.Mutex
	closer   io.Closer
	writer   io.Writer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[Entry]
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// Init opens (or creates) the log file at path and installs it as the
// global logger. The returned cleanup uninstalls the logger and closes the file.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: path is the user-chosen log file
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	l := &Logger{closer: f, writer: f, enabled: true, minLevel: LevelDebug, broker: pubsub.NewBroker[Entry]()}
	install(l)
	return func() { uninstall(l) }, nil
}

// InitWriter installs a global logger writing to w (typically stderr).
// The returned cleanup uninstalls it.
func InitWriter(w io.Writer) func() {
	l := &Logger{writer: w, enabled: true, minLevel: LevelDebug, broker: pubsub.NewBroker[Entry]()}
	install(l)
	return func() { uninstall(l) }
}

func install(l *Logger) {
	defaultMu.Lock()
	prev := defaultLogger
	defaultLogger = l
	defaultMu.Unlock()

	if prev != nil {
		prev.close()
	}
}

// uninstall removes l if it is still the global logger, then closes it.
func uninstall(l *Logger) {
	defaultMu.Lock()
	if defaultLogger == l {
		defaultLogger = nil
	}
	defaultMu.Unlock()

	l.close()
}

// close disables l and releases its broker and file. Safe to call twice.
func (l *Logger) close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.enabled = false
	if l.broker != nil {
		l.broker.Close()
	}
	if l.closer != nil {
		_ = l.closer.Close()
		l.closer = nil
	}
}

func current() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(LevelError, cat, msg, fields...)
}

func write(level Level, cat Category, msg string, fields ...any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || level < l.minLevel {
		return
	}

	line := format(time.Now(), level, cat, msg, fields...)
	if l.writer != nil {
		_, _ = io.WriteString(l.writer, line)
	}
	if l.broker != nil {
		l.broker.Publish(pubsub.LogEvent, Entry{
			Level:    level,
			Category: cat,
			Message:  msg,
			Line:     strings.TrimSuffix(line, "\n"),
		})
	}
}

// format renders: 2025-12-06T10:45:00 [WARN] [header] message key=value
func format(ts time.Time, level Level, cat Category, msg string, fields ...any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", ts.Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	b.WriteByte('\n')
	return b.String()
}

// Subscribe returns a channel of log entries at or above minLevel. The channel
// is closed when ctx is cancelled. Returns nil when logging is not initialised.
func Subscribe(ctx context.Context, minLevel Level) <-chan Entry {
	l := current()
	if l == nil || l.broker == nil {
		return nil
	}
	events := l.broker.Subscribe(ctx)
	out := make(chan Entry, 16)
	go func() {
		defer close(out)
		for ev := range events {
			if ev.Payload.Level < minLevel {
				continue
			}
			select {
			case out <- ev.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
