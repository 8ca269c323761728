package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/opengovern/frontend/internal/config"
	"github.com/opengovern/frontend/internal/tui"
)

// configEntry is one key of "config list".
type configEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewConfigSetCmd creates the "config set" command.
func NewConfigSetCmd() *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a dotted configuration key and save the file. Inside a project the
project configuration is changed unless --global is given. The result is
validated before it is written.`,
		Example: `  # Address another workspace by default
  ogdash config set workspace.default acme

  # Refresh dashboards every five minutes
  ogdash config set dashboard.refresh "@every 5m"

  # Disable the response cache globally
  ogdash config set cache.enabled false --global`,
		Args: cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, args[0], args[1], global)
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "change the global configuration even inside a project")

	return cmd
}

func runConfigSet(cmd *cobra.Command, key, value string, global bool) error {
	path, err := configTarget(global)
	if err != nil {
		return err
	}

	cfg := config.Defaults()
	cfg.SetConfigPath(path)
	if err = cfg.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err = cfg.Set(key, value); err != nil {
		return err
	}
	if err = cfg.Validate(); err != nil {
		return err
	}
	if key == "dashboard.refresh" {
		if err = tui.ValidateRefresh(cfg.Dashboard.Refresh); err != nil {
			return err
		}
	}
	if err = cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	logger.Debug().Ctx(cmd.Context()).Str("key", key).Str("path", path).Msg("configuration updated")
	cmd.Printf("Set %s in %s\n", key, path)
	return nil
}

// configTarget returns the file "config set" writes: the project config when
// a project directory is resolved and global is false, else the global one.
func configTarget(global bool) (string, error) {
	if dir := config.GetResolvedProjectDir(); dir != "" && !global {
		return filepath.Join(dir, "config.yaml"), nil
	}
	dir, err := config.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// NewConfigGetCmd creates the "config get" command.
func NewConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of a configuration key",
		Long: `Print the value of a dotted key after the global file, the project file,
and environment overrides are merged.`,
		Example: `  ogdash config get api.base_url`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := config.GetGlobalConfig().Get(args[0])
			if err != nil {
				return err
			}
			cmd.Println(value)
			return nil
		},
	}
}

// NewConfigListCmd creates the "config list" command.
func NewConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every configuration key with its effective value",
		RunE:  runConfigList,
	}
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	cfg := config.GetGlobalConfig()
	keys := config.Keys()
	entries := make([]configEntry, 0, len(keys))
	for _, key := range keys {
		value, err := cfg.Get(key)
		if err != nil {
			return err
		}
		entries = append(entries, configEntry{Key: key, Value: value})
	}

	return render(cmd, entries, entries, func(w *tabwriter.Writer, _ *message.Printer) error {
		writeHeader(w, "Key", "Value")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\n", e.Key, orDash(e.Value))
		}
		return nil
	})
}
