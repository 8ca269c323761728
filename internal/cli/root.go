package cli

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/opengovern/frontend/internal/config"
	"github.com/opengovern/frontend/internal/logging"
)

// Output formats accepted by --output.
const (
	outputTable  = "table"
	outputJSON   = "json"
	outputNDJSON = "ndjson"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the ogdash CLI. It loads the
// configuration, wires up logging and tracing, and registers every subcommand.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:           "ogdash",
		Short:         "Governance and spend dashboards for your cloud workspaces",
		Long:          "ogdash: query spend, compliance, and inventory data of a workspace from the terminal",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateRootFlags(cmd); err != nil {
				return err
			}
			loadConfig(cmd)

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	flags := cmd.PersistentFlags()
	flags.Bool("debug", false, "enable debug logging")
	flags.StringP("workspace", "w", "", "workspace to address (overrides workspace.default)")
	flags.String("api-url", "", "dashboard API base URL (overrides api.base_url)")
	flags.String("token", "", "API bearer token (overrides OGDASH_TOKEN and the stored token)")
	flags.StringP("output", "o", "", "output format: table, json, or ndjson (default from output.default_format)")
	flags.Int("cache-ttl", 0, "response cache TTL in seconds (0 = use config default)")
	flags.Bool("no-cache", false, "bypass the response cache")
	flags.Duration("timeout", 0, "per-request timeout, e.g. 30s (0 = use api.timeout_seconds)")
	flags.String("project-dir", "", "project .ogdash directory (default: search upward from the working directory)")

	cmd.AddCommand(
		newSpendCmd(), newAssetsCmd(), newComplianceCmd(), NewConnectionsCmd(),
		newQueryCmd(), newWorkspaceCmd(), newAssistantCmd(), NewOverviewCmd(),
		newDashboardCmd(), NewLoginCmd(), NewLogoutCmd(), newConfigCmd(),
		newCacheCmd(), NewVersionCmd(),
	)

	return cmd
}

const rootCmdExample = `  # Store an API token
  ogdash login

  # Spend per connection over the last 30 days
  ogdash spend metrics --from 30d

  # Compliance benchmarks of another workspace as JSON
  ogdash compliance benchmarks --workspace acme --output json

  # Run a query
  ogdash query run "select name, region from aws_ec2_instance limit 10"

  # Interactive spend dashboard refreshed every five minutes
  ogdash dashboard spend --refresh "@every 5m"

  # Set a default workspace
  ogdash config set workspace.default acme`

// validateRootFlags rejects persistent flag values that cannot be used.
func validateRootFlags(cmd *cobra.Command) error {
	cacheTTL, _ := cmd.Flags().GetInt("cache-ttl")
	if cacheTTL < 0 {
		return fmt.Errorf("cache-ttl must be >= 0, got %d", cacheTTL)
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", timeout)
	}
	output, _ := cmd.Flags().GetString("output")
	if output != "" && !isValidOutputFormat(output) {
		return fmt.Errorf("unsupported output format: %s", output)
	}
	return nil
}

// loadConfig resolves the project directory and installs the merged
// configuration as the global one for this invocation.
func loadConfig(cmd *cobra.Command) {
	ctx := cmd.Context()
	flagDir, _ := cmd.Flags().GetString("project-dir")
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}

	projectDir := config.ResolveProjectDir(ctx, flagDir, cwd)
	config.SetResolvedProjectDir(projectDir)
	config.SetGlobalConfig(config.NewWithProjectDir(ctx, projectDir))
}

// outputFormat returns --output, falling back to the configured default.
func outputFormat(cmd *cobra.Command) string {
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		return strings.ToLower(output)
	}
	if format := config.GetDefaultOutputFormat(); isValidOutputFormat(format) {
		return strings.ToLower(format)
	}
	return outputTable
}

// isValidOutputFormat checks if the provided format is one of the supported output formats.
func isValidOutputFormat(format string) bool {
	return slices.Contains([]string{outputTable, outputJSON, outputNDJSON}, strings.ToLower(format))
}

// newSpendCmd creates the spend command group.
func newSpendCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "spend", Short: "Cloud spend analytics"}
	cmd.AddCommand(NewSpendMetricsCmd(), NewSpendTableCmd(), NewSpendTrendCmd())
	return cmd
}

// newAssetsCmd creates the assets command group.
func newAssetsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "assets", Short: "Cloud inventory"}
	cmd.AddCommand(NewAssetsServicesCmd(), NewAssetsCategoriesCmd())
	return cmd
}

// newComplianceCmd creates the compliance command group.
func newComplianceCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "compliance", Short: "Compliance benchmarks, controls, insights, and findings"}
	cmd.AddCommand(
		NewComplianceBenchmarksCmd(), NewComplianceControlsCmd(), NewComplianceInsightCmd(),
		NewComplianceFindingsCmd(), NewComplianceTriggerCmd(),
	)
	return cmd
}

// newQueryCmd creates the query command group.
func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "query", Short: "Saved and ad-hoc inventory queries"}
	cmd.AddCommand(NewQueryListCmd(), NewQueryRunCmd())
	return cmd
}

// newWorkspaceCmd creates the workspace command group.
func newWorkspaceCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "workspace", Short: "Workspace information"}
	cmd.AddCommand(NewWorkspaceListCmd(), NewWorkspaceCurrentCmd())
	return cmd
}

// newAssistantCmd creates the assistant command group.
func newAssistantCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "assistant", Short: "Ask the workspace assistant"}
	cmd.AddCommand(NewAssistantAskCmd(), NewAssistantThreadCmd())
	return cmd
}

// newDashboardCmd creates the dashboard command group.
func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "dashboard", Short: "Interactive terminal dashboards"}
	cmd.AddCommand(NewDashboardSpendCmd(), NewDashboardComplianceCmd())
	return cmd
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(
		NewConfigInitCmd(), NewConfigSetCmd(), NewConfigGetCmd(),
		NewConfigListCmd(), NewConfigValidateCmd(),
	)
	return cmd
}

// newCacheCmd creates the cache command group.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Response cache management"}
	cmd.AddCommand(NewCacheStatsCmd(), NewCacheClearCmd())
	return cmd
}
