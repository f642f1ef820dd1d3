package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/govkit/internal/config"
	"github.com/zjrosen/govkit/internal/log"
)

var version = "dev"

// rootOptions holds the persistent flags.
type rootOptions struct {
	cfgFile  string
	repoRoot string
	logFile  string
	debug    bool
	noColor  bool
}

// cli carries the state shared by every command of one invocation.
type cli struct {
	v    *viper.Viper
	opts rootOptions
	cfg  config.Config
	env  *env

	logCleanup func()
}

// NewRootCmd builds the govkit command tree.
func NewRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "govkit",
		Short: "Governance linting for specification repositories",
		Long: `govkit validates a documentation/specification repository: unit registry
and declarations, the unit dependency graph, document headers, no-debt rules
and content manifests. It also produces governance reports.

Every command exits with status 1 when any check fails.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&c.opts.cfgFile, "config", "c", "",
		"config file (default: .govkit/config.yaml, then ~/.config/govkit/config.yaml)")
	pf.StringVar(&c.opts.repoRoot, "repo-root", "", "repository root (default: nearest parent containing specs/)")
	pf.StringVar(&c.opts.logFile, "log-file", "", "write logs to this file")
	pf.BoolVarP(&c.opts.debug, "debug", "d", false, "enable debug logging (also GOVKIT_DEBUG)")
	pf.BoolVar(&c.opts.noColor, "no-color", false, "disable styled output (also NO_COLOR)")
	_ = c.v.BindPFlag("repo_root", pf.Lookup("repo-root"))

	rootCmd.AddCommand(
		newUnitValidateCmd(c),
		newGraphVerifyCmd(c),
		newEnforceCmd(c),
		newHeaderValidateCmd(c),
		newGenerateManifestCmd(c),
		newDoctorCmd(c),
		newGovernanceReportCmd(c),
		newWatchCmd(c),
		newHistoryCmd(c),
		newConfigCmd(c),
	)
	return rootCmd
}

// Execute runs the root command. Errors are printed to stderr.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		_, _ = fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return err
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}

// setup loads configuration, starts logging and, for repository commands,
// resolves the repository and opens the run environment.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := c.initLogging(cmd.ErrOrStderr()); err != nil {
		return err
	}
	if err := c.initConfig(); err != nil {
		c.teardown()
		return err
	}
	env, err := c.openEnv(cmd)
	if err != nil {
		c.teardown()
		return err
	}
	c.env = env
	return nil
}

// action wraps a command body so the environment is released even when the
// body fails (cobra skips post-run hooks on error).
func (c *cli) action(fn func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer c.teardown()
		return fn(cmd, args, c.env)
	}
}

func (c *cli) teardown() {
	if c.env != nil {
		c.env.close()
		c.env = nil
	}
	if c.logCleanup != nil {
		c.logCleanup()
		c.logCleanup = nil
	}
}

func (c *cli) initLogging(stderr io.Writer) error {
	debug := c.opts.debug || os.Getenv("GOVKIT_DEBUG") != ""
	switch {
	case c.opts.logFile != "":
		cleanup, err := log.Init(c.opts.logFile)
		if err != nil {
			return err
		}
		c.logCleanup = cleanup
		if !debug {
			log.SetMinLevel(log.LevelInfo)
		}
	case debug:
		c.logCleanup = log.InitWriter(stderr)
	}
	return nil
}

// initConfig follows the lookup order .govkit/config.yaml, then
// ~/.config/govkit/config.yaml. GOVKIT_* variables (also read from .env)
// override file values. A default config is written when none exists.
func (c *cli) initConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn(log.CatConfig, "ignoring unreadable .env", "error", err)
	}

	setDefaults(c.v, config.Defaults())
	c.v.SetEnvPrefix("GOVKIT")
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.v.AutomaticEnv()

	if c.opts.cfgFile != "" {
		c.v.SetConfigFile(c.opts.cfgFile)
	} else if _, err := os.Stat(config.DefaultConfigPath); err == nil {
		c.v.SetConfigFile(config.DefaultConfigPath)
	} else {
		home, _ := os.UserHomeDir()
		c.v.AddConfigPath(filepath.Join(home, ".config", "govkit"))
		c.v.SetConfigName("config")
		c.v.SetConfigType("yaml")
	}

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
		if writeErr := config.WriteDefaultConfig(config.DefaultConfigPath); writeErr == nil {
			c.v.SetConfigFile(config.DefaultConfigPath)
			_ = c.v.ReadInConfig()
		}
	}
	log.Debug(log.CatConfig, "config loaded", "file", c.v.ConfigFileUsed())

	if err := c.v.Unmarshal(&c.cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	if c.cfg.Tracing.FilePath == "" {
		c.cfg.Tracing.FilePath = config.DefaultTracesFilePath()
	}
	if err := config.Validate(c.cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// configPath is the file config subcommands operate on: --config, then the
// first existing file in the lookup order, then DefaultConfigPath.
func (c *cli) configPath() string {
	if c.opts.cfgFile != "" {
		return c.opts.cfgFile
	}
	if used := c.v.ConfigFileUsed(); used != "" {
		return used
	}
	if _, err := os.Stat(config.DefaultConfigPath); err == nil {
		return config.DefaultConfigPath
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "govkit", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return config.DefaultConfigPath
}

func setDefaults(v *viper.Viper, d config.Config) {
	v.SetDefault("repo_root", d.RepoRoot)
	v.SetDefault("marker_dir", d.MarkerDir)
	v.SetDefault("specs_dir", d.SpecsDir)
	v.SetDefault("registry_path", d.RegistryPath)
	v.SetDefault("enforce.excludes", d.Enforce.Excludes)
	v.SetDefault("enforce.forbidden_tokens", d.Enforce.ForbiddenTokens)
	v.SetDefault("enforce.soft_patterns", d.Enforce.SoftPatterns)
	v.SetDefault("enforce.forbidden_paths", d.Enforce.ForbiddenPaths)
	v.SetDefault("enforce.required_files", d.Enforce.RequiredFiles)
	v.SetDefault("header.excludes", d.Header.Excludes)
	v.SetDefault("manifest.output_dir", d.Manifest.OutputDir)
	v.SetDefault("manifest.generator", d.Manifest.Generator)
	v.SetDefault("report.format", d.Report.Format)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("audit.enabled", d.Audit.Enabled)
	v.SetDefault("audit.path", d.Audit.Path)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("publish.endpoint", d.Publish.Endpoint)
	v.SetDefault("publish.region", d.Publish.Region)
	v.SetDefault("publish.bucket", d.Publish.Bucket)
	v.SetDefault("publish.access_key", d.Publish.AccessKey)
	v.SetDefault("publish.secret_key", d.Publish.SecretKey)
	v.SetDefault("publish.use_ssl", d.Publish.UseSSL)
	v.SetDefault("publish.prefix", d.Publish.Prefix)
}
