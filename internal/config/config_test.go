package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaults_AreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, Validate(cfg))
	require.Equal(t, "specs", cfg.MarkerDir)
	require.Equal(t, "specs", cfg.SpecsDir)
	require.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
	require.Len(t, cfg.Enforce.RequiredFiles, 7)
	require.Contains(t, cfg.Header.Excludes, "**/_roadmap/**")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"empty marker", func(c *Config) { c.MarkerDir = "" }, "marker_dir must not be empty"},
		{"empty specs dir", func(c *Config) { c.SpecsDir = "" }, "specs_dir must not be empty"},
		{"bad format", func(c *Config) { c.Report.Format = "xml" }, `report.format must be`},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -time.Second }, "watch.debounce must not be negative"},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }, "cache.ttl must not be negative"},
		{"audit without path", func(c *Config) { c.Audit = AuditConfig{Enabled: true} }, "audit.path is required"},
		{"sample rate", func(c *Config) { c.Tracing.SampleRate = 1.5 }, "sample_rate must be between 0.0 and 1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		tracing TracingConfig
		errMsg  string
	}{
		{name: "disabled defaults", tracing: TracingConfig{SampleRate: 1}},
		{name: "invalid exporter", tracing: TracingConfig{Exporter: "kafka", SampleRate: 1}, errMsg: "tracing.exporter must be"},
		{name: "file without path", tracing: TracingConfig{Enabled: true, Exporter: "file", SampleRate: 1}, errMsg: "file_path is required"},
		{name: "otlp without endpoint", tracing: TracingConfig{Enabled: true, Exporter: "otlp", SampleRate: 1}, errMsg: "otlp_endpoint is required"},
		{name: "file with path", tracing: TracingConfig{Enabled: true, Exporter: "file", FilePath: "/tmp/t.jsonl", SampleRate: 0.5}},
		{name: "disabled file without path", tracing: TracingConfig{Exporter: "file"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.tracing)
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidatePublish(t *testing.T) {
	require.ErrorContains(t, ValidatePublish(PublishConfig{}), "publish.endpoint is required")
	require.ErrorContains(t, ValidatePublish(PublishConfig{Endpoint: "e"}), "publish.bucket is required")
	require.ErrorContains(t, ValidatePublish(PublishConfig{Endpoint: "e", Bucket: "b"}), "access_key")
	require.NoError(t, ValidatePublish(PublishConfig{Endpoint: "e", Bucket: "b", AccessKey: "a", SecretKey: "s"}))
}

func TestDefaultConfigTemplate_ParsesAndMatchesDefaults(t *testing.T) {
	var parsed struct {
		MarkerDir    string `yaml:"marker_dir"`
		SpecsDir     string `yaml:"specs_dir"`
		RegistryPath string `yaml:"registry_path"`
		Enforce      struct {
			Excludes []string `yaml:"excludes"`
		} `yaml:"enforce"`
		Report struct {
			Format string `yaml:"format"`
		} `yaml:"report"`
		Audit struct {
			Enabled bool   `yaml:"enabled"`
			Path    string `yaml:"path"`
		} `yaml:"audit"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(DefaultConfigTemplate()), &parsed))

	d := Defaults()
	require.Equal(t, d.MarkerDir, parsed.MarkerDir)
	require.Equal(t, d.SpecsDir, parsed.SpecsDir)
	require.Equal(t, d.RegistryPath, parsed.RegistryPath)
	require.Equal(t, d.Enforce.Excludes, parsed.Enforce.Excludes)
	require.Equal(t, d.Report.Format, parsed.Report.Format)
	require.Equal(t, d.Audit.Path, parsed.Audit.Path)
	require.False(t, parsed.Audit.Enabled)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
