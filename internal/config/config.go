// Package config provides configuration types and defaults for govkit.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/govkit/internal/log"
)

// DefaultConfigPath is where the default config is written on first run.
const DefaultConfigPath = ".govkit/config.yaml"

// Config holds all configuration options for govkit.
type Config struct {
	RepoRoot     string         `mapstructure:"repo_root"`     // explicit repository root; skips the upward search
	MarkerDir    string         `mapstructure:"marker_dir"`    // directory that marks the repository root
	SpecsDir     string         `mapstructure:"specs_dir"`     // governed tree, relative to the repository root
	RegistryPath string         `mapstructure:"registry_path"` // relative to the repository root
	Enforce      EnforceConfig  `mapstructure:"enforce"`
	Header       HeaderConfig   `mapstructure:"header"`
	Manifest     ManifestConfig `mapstructure:"manifest"`
	Report       ReportConfig   `mapstructure:"report"`
	Watch        WatchConfig    `mapstructure:"watch"`
	Cache        CacheConfig    `mapstructure:"cache"`
	Audit        AuditConfig    `mapstructure:"audit"`
	Tracing      TracingConfig  `mapstructure:"tracing"`
	Publish      PublishConfig  `mapstructure:"publish"`
}

// EnforceConfig holds the no-debt rule set.
type EnforceConfig struct {
	Excludes        []string `mapstructure:"excludes"` // doublestar patterns
	ForbiddenTokens []string `mapstructure:"forbidden_tokens"`
	SoftPatterns    []string `mapstructure:"soft_patterns"`
	ForbiddenPaths  []string `mapstructure:"forbidden_paths"` // relative to specs/
	RequiredFiles   []string `mapstructure:"required_files"`  // relative to the repository root
}

// HeaderConfig holds header validation settings.
type HeaderConfig struct {
	Excludes []string `mapstructure:"excludes"`
}

// ManifestConfig holds manifest generation settings.
type ManifestConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	Generator string `mapstructure:"generator"`
}

// ReportConfig holds governance report settings.
type ReportConfig struct {
	Format string `mapstructure:"format"` // json, json-pretty, table, summary, markdown
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// CacheConfig holds the declaration cache settings.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// AuditConfig holds run history settings.
type AuditConfig struct {
	// Enabled records every command run into the audit database.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Path is the SQLite database file, relative to the repository root
	// unless absolute.
	// Default: .govkit/audit.db
	Path string `mapstructure:"path"`
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/govkit/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// PublishConfig locates the S3-compatible bucket manifests are published to.
type PublishConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Prefix    string `mapstructure:"prefix"`
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/govkit/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "govkit", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		MarkerDir:    "specs",
		SpecsDir:     "specs",
		RegistryPath: "specs/_governance/UNIT_REGISTRY.json",
		Enforce: EnforceConfig{
			Excludes: []string{
				"**/_deprecated/**",
				"**/_reference/**",
				"**/.git/**",
				"**/target/**",
				"**/manifests/**",
			},
			ForbiddenTokens: []string{"TODO", "TBD", "FIXME", "CHANGEME", "PLACEHOLDER", "INTENTIONALLY LEFT BLANK"},
			SoftPatterns:    []string{"should consider", "might want to", "perhaps", "ideally", "hopefully"},
			ForbiddenPaths:  []string{"drafts/", "quarantine/", "tools/legacy/"},
			RequiredFiles: []string{
				"specs/_governance/AUDIT_CONTRACT.md",
				"specs/_governance/NO_DEBT_RULES.md",
				"specs/_governance/DISTRIBUTION_EXCLUSIONS.md",
				"specs/_governance/LIBRARY_SEALING_CONTRACT.md",
				"specs/_governance/LIBRARY_STANDARD_HEADER_CONTRACT.md",
				"specs/_governance/XONAIX_SELF_GOVERNANCE_CONTRACT.md",
				"specs/_governance/UNIT_REGISTRY.json",
			},
		},
		Header: HeaderConfig{
			Excludes: []string{
				"**/_deprecated/**",
				"**/_reference/**",
				"**/.git/**",
				"**/target/**",
				"**/manifests/**",
				"**/_roadmap/**",
			},
		},
		Manifest: ManifestConfig{
			OutputDir: "specs/_governance/manifests",
			Generator: "govkit",
		},
		Report: ReportConfig{
			Format: "table",
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled: false,
			Path:    ".govkit/audit.db",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from home dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Publish: PublishConfig{
			Region: "us-east-1",
			UseSSL: true,
		},
	}
}

// Validate checks the whole configuration.
func Validate(c Config) error {
	if c.MarkerDir == "" {
		return fmt.Errorf("marker_dir must not be empty")
	}
	if c.SpecsDir == "" {
		return fmt.Errorf("specs_dir must not be empty")
	}
	if err := ValidateReport(c.Report); err != nil {
		return err
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Audit.Enabled && c.Audit.Path == "" {
		return fmt.Errorf("audit.path is required when audit is enabled")
	}
	return ValidateTracing(c.Tracing)
}

// ValidateReport checks the report format.
func ValidateReport(r ReportConfig) error {
	switch r.Format {
	case "", "json", "json-pretty", "table", "summary", "markdown":
		return nil
	}
	return fmt.Errorf("report.format must be \"json\", \"json-pretty\", \"table\", \"summary\", or \"markdown\", got %q", r.Format)
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// ValidatePublish checks that publishing can be attempted.
func ValidatePublish(p PublishConfig) error {
	switch {
	case p.Endpoint == "":
		return fmt.Errorf("publish.endpoint is required")
	case p.Bucket == "":
		return fmt.Errorf("publish.bucket is required")
	case p.AccessKey == "" || p.SecretKey == "":
		return fmt.Errorf("publish.access_key and publish.secret_key are required (or GOVKIT_PUBLISH_ACCESS_KEY / GOVKIT_PUBLISH_SECRET_KEY)")
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# govkit configuration

# Repository root (default: nearest parent directory containing marker_dir)
# repo_root: /path/to/library

# Directory whose presence marks the repository root
marker_dir: specs

# Governed tree scanned by enforce, header-validate, doctor, report and watch
specs_dir: specs

# Unit registry, relative to the repository root
registry_path: specs/_governance/UNIT_REGISTRY.json

# No-debt enforcement rules
enforce:
  excludes:
    - "**/_deprecated/**"
    - "**/_reference/**"
    - "**/.git/**"
    - "**/target/**"
    - "**/manifests/**"
  # forbidden_tokens: [TODO, TBD, FIXME, CHANGEME, PLACEHOLDER, INTENTIONALLY LEFT BLANK]
  # soft_patterns: [should consider, might want to, perhaps, ideally, hopefully]
  # forbidden_paths: [drafts/, quarantine/, tools/legacy/]

# Header validation
header:
  excludes:
    - "**/_deprecated/**"
    - "**/_reference/**"
    - "**/.git/**"
    - "**/target/**"
    - "**/manifests/**"
    - "**/_roadmap/**"

# Manifest generation
manifest:
  output_dir: specs/_governance/manifests

# Governance report
report:
  format: table   # json, json-pretty, table, summary, markdown

# Watch mode
watch:
  debounce: 300ms

# Declaration cache used by watch mode
cache:
  ttl: 5m

# Run history
audit:
  enabled: false
  path: .govkit/audit.db

# Distributed tracing
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/govkit/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# Manifest publishing (generate-manifest --publish)
# Credentials are best supplied as GOVKIT_PUBLISH_ACCESS_KEY / GOVKIT_PUBLISH_SECRET_KEY
# publish:
#   endpoint: s3.amazonaws.com
#   region: us-east-1
#   bucket: governance-manifests
#   use_ssl: true
#   prefix: manifests
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
