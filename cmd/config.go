package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/govkit/internal/config"
)

func newConfigCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create, inspect and edit the govkit config file",
		// Config commands work outside a repository.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.initLogging(cmd.ErrOrStderr())
		},
	}
	cmd.AddCommand(newConfigInitCmd(c), newConfigSetCmd(c), newConfigShowCmd(c))
	return cmd
}

func newConfigInitCmd(c *cli) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: c.action(func(cmd *cobra.Command, _ []string, _ *env) error {
			path := c.configPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
			}
			if err := config.WriteDefaultConfig(path); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func newConfigSetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a config value, keeping comments intact",
		Long: `Set a dotted config key to a scalar value in the config file. Sections are
created as needed.

Examples:
  govkit config set audit.enabled true
  govkit config set tracing.exporter otlp`,
		Args: cobra.ExactArgs(2),
		RunE: c.action(func(cmd *cobra.Command, args []string, _ *env) error {
			path := c.configPath()
			if err := config.SetValue(path, args[0], args[1]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", args[0], args[1], path)
			return nil
		}),
	}
}

func newConfigShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: c.action(func(cmd *cobra.Command, _ []string, _ *env) error {
			if err := c.initConfig(); err != nil {
				return err
			}
			settings := c.v.AllSettings()
			for _, secret := range []string{"access_key", "secret_key"} {
				if pub, ok := settings["publish"].(map[string]any); ok && pub[secret] != "" {
					pub[secret] = "********"
				}
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(settings); err != nil {
				return err
			}
			return enc.Close()
		}),
	}
}
