package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/opengovern/frontend/internal/config"
	"github.com/opengovern/frontend/internal/tui"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration (global file, project file, and
environment overrides) for syntax and semantic correctness.

This includes:
- API base URL and timeout
- Workspace name syntax
- Output format and precision
- Cache limits
- Dashboard refresh schedule
- Minimum server version constraint`,
		Example: `  # Validate current configuration
  ogdash config validate

  # Validate and show detailed information
  ogdash config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.GetGlobalConfig()

	// The effective config silently falls back to defaults, so parse each file again.
	files := []string{cfg.ConfigPath()}
	if dir := config.GetResolvedProjectDir(); dir != "" {
		files = append(files, filepath.Join(dir, "config.yaml"))
	}
	for _, path := range files {
		if err := checkConfigSyntax(path); err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := tui.ValidateRefresh(cfg.Dashboard.Refresh); err != nil {
		return fmt.Errorf("configuration validation failed: dashboard.refresh: %w", err)
	}
	if minimum := cfg.API.MinServerVersion; minimum != "" {
		if _, err := semver.NewVersion(minimum); err != nil {
			return fmt.Errorf("configuration validation failed: api.min_server_version %q: %w", minimum, err)
		}
	}

	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// checkConfigSyntax parses the file at path. A missing file is not an error.
func checkConfigSyntax(path string) error {
	if path == "" {
		return nil
	}
	probe := config.Defaults()
	probe.SetConfigPath(path)
	if err := probe.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Config file: %s\n", orDash(cfg.ConfigPath()))
	if dir := config.GetResolvedProjectDir(); dir != "" {
		cmd.Printf("  Project directory: %s\n", dir)
	}
	cmd.Printf("  API URL: %s\n", cfg.API.BaseURL)
	cmd.Printf("  Request timeout: %ds\n", cfg.API.TimeoutSeconds)
	cmd.Printf("  Default workspace: %s\n", orDash(cfg.Workspace.Default))
	cmd.Printf("  Output format: %s\n", cfg.Output.DefaultFormat)
	cmd.Printf("  Output precision: %d\n", cfg.Output.Precision)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Log file: %s\n", orDash(cfg.Logging.File))
	cmd.Printf("  Cache: enabled=%t ttl=%ds max=%dMB\n", cfg.Cache.Enabled, cfg.Cache.TTLSeconds, cfg.Cache.MaxSizeMB)
	cmd.Printf("  Dashboard refresh: %s\n", orDash(cfg.Dashboard.Refresh))
}
