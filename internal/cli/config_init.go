package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opengovern/frontend/internal/config"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
// With --project, or when a project directory was resolved, it creates a
// project-local .ogdash/ directory with config.yaml and .gitignore. Otherwise,
// it creates the global ~/.ogdash/config.yaml.
func NewConfigInitCmd() *cobra.Command {
	var (
		force   bool
		global  bool
		project bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

With --project, creates project-local configuration at ./.ogdash/config.yaml
with a .gitignore that keeps tokens, cache, and logs out of version control.
Inside an existing project (or with --project-dir) the project configuration
is initialized; use --global to force the global ~/.ogdash/config.yaml.`,
		Example: `  # Create global configuration
  ogdash config init

  # Create project-local configuration in the current directory
  ogdash config init --project

  # Create configuration, overwriting existing
  ogdash config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if global && project {
				return errors.New("--global and --project are mutually exclusive")
			}

			projectDir := config.GetResolvedProjectDir()
			if project && projectDir == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("getting working directory: %w", err)
				}
				projectDir = filepath.Join(cwd, config.ProjectDirName)
			}

			if projectDir != "" && !global {
				return initProjectConfig(cmd, projectDir, force)
			}

			return initGlobalConfig(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	cmd.Flags().BoolVar(&global, "global", false, "force global configuration init even inside a project")
	cmd.Flags().BoolVar(&project, "project", false, "create project-local configuration in the current directory")

	return cmd
}

// initProjectConfig creates project-local config at projectDir/config.yaml with .gitignore.
func initProjectConfig(cmd *cobra.Command, projectDir string, force bool) error {
	configPath := filepath.Join(projectDir, "config.yaml")

	if err := checkConfigAbsent(configPath, force); err != nil {
		return err
	}

	if err := os.MkdirAll(projectDir, 0o750); err != nil {
		return fmt.Errorf("failed to create project config directory: %w", err)
	}

	cfg := config.Defaults()
	cfg.SetConfigPath(configPath)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	// Create .gitignore (never overwrites existing)
	created, err := config.EnsureGitignore(projectDir)
	if err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	cmd.Printf("Configuration initialized at %s\n", configPath)
	if created {
		cmd.Printf("Created .gitignore to protect user-specific data\n")
	}

	return nil
}

// initGlobalConfig creates global config at ~/.ogdash/config.yaml.
func initGlobalConfig(cmd *cobra.Command, force bool) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	dir, err := config.GetConfigDir()
	if err != nil {
		return err
	}
	configPath := filepath.Join(dir, "config.yaml")

	if err = checkConfigAbsent(configPath, force); err != nil {
		return err
	}

	cfg := config.Defaults()
	cfg.SetConfigPath(configPath)
	if err = cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Configuration initialized successfully\n")
	cmd.Printf("Configuration file: %s\n", configPath)

	return nil
}

// checkConfigAbsent fails when path exists and force is not set.
func checkConfigAbsent(path string, force bool) error {
	if force {
		return nil
	}
	_, err := os.Stat(path)
	if err == nil {
		return errors.New("configuration file already exists, use --force to overwrite")
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("cannot access config path %s: %w", path, err)
	}
	return nil
}
