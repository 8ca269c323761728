package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opengovern/frontend/internal/hooks"
	"github.com/opengovern/frontend/pkg/version"
)

// versionReport is the JSON form of "version".
type versionReport struct {
	Version       string `json:"version"`
	GitCommit     string `json:"gitCommit"`
	BuildDate     string `json:"buildDate"`
	ServerVersion string `json:"serverVersion,omitempty"`
}

// NewVersionCmd creates the "version" command.
func NewVersionCmd() *cobra.Command {
	var server bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Example: `  # Client build
  ogdash version

  # Also ask the API for its version
  ogdash version --server`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersion(cmd, server)
		},
	}

	cmd.Flags().BoolVar(&server, "server", false, "also report the API server version")

	return cmd
}

func runVersion(cmd *cobra.Command, server bool) error {
	report := versionReport{
		Version:   version.GetVersion(),
		GitCommit: version.GetGitCommit(),
		BuildDate: version.GetBuildDate(),
	}

	if server {
		env, err := newAPIEnv(cmd)
		if err != nil {
			return err
		}
		if _, err = await(cmd.Context(), hooks.ListWorkspaces(env.deps)); err != nil {
			return fmt.Errorf("contacting server: %w", err)
		}
		report.ServerVersion = env.client.ServerVersion()
	}

	if outputFormat(cmd) != outputTable {
		return writeJSON(cmd.OutOrStdout(), report)
	}

	cmd.Println(version.String())
	if server {
		cmd.Printf("server %s\n", orDash(report.ServerVersion))
	}
	return nil
}
