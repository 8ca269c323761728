package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/hooks"
)

// NewWorkspaceListCmd creates the "workspace list" command.
func NewWorkspaceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the workspaces the credential can access",
		Example: `  # All workspaces
  ogdash workspace list -o json`,
		RunE: runWorkspaceList,
	}
}

func runWorkspaceList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	env, err := newAPIEnv(cmd)
	if err != nil {
		return err
	}

	workspaces, err := await(ctx, hooks.ListWorkspaces(env.deps))
	if err != nil {
		return fmt.Errorf("listing workspaces: %w", err)
	}

	current := env.deps.Workspace
	if current == "" {
		current = env.ambient.Current()
	}

	return render(cmd, workspaces, workspaces, func(w *tabwriter.Writer, _ *message.Printer) error {
		writeHeader(w, "", "Name", "ID", "Status", "Tier", "Size", "Created")
		for _, ws := range workspaces {
			marker := ""
			if ws.Name == current {
				marker = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				marker,
				ws.Name,
				orDash(ws.ID),
				orDash(ws.Status),
				orDash(ws.Tier),
				orDash(ws.Size),
				orDash(ws.CreatedAt),
			)
		}
		return nil
	})
}

// NewWorkspaceCurrentCmd creates the "workspace current" command.
func NewWorkspaceCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the workspace commands are addressed to",
		Long: `Show the workspace selected by --workspace, or by workspace.default when
the flag is absent, as the server describes it.`,
		RunE: runWorkspaceCurrent,
	}
}

func runWorkspaceCurrent(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	env, err := newAPIEnv(cmd)
	if err != nil {
		return err
	}

	ws, err := await(ctx, hooks.CurrentWorkspace(env.deps))
	if err != nil {
		return fmt.Errorf("fetching current workspace: %w", err)
	}

	return render(cmd, ws, []api.Workspace{ws}, func(w *tabwriter.Writer, _ *message.Printer) error {
		fmt.Fprintf(w, "Name\t%s\n", ws.Name)
		fmt.Fprintf(w, "ID\t%s\n", orDash(ws.ID))
		fmt.Fprintf(w, "Status\t%s\n", orDash(ws.Status))
		fmt.Fprintf(w, "Tier\t%s\n", orDash(ws.Tier))
		fmt.Fprintf(w, "Size\t%s\n", orDash(ws.Size))
		fmt.Fprintf(w, "Owner\t%s\n", orDash(ws.OwnerID))
		fmt.Fprintf(w, "Created\t%s\n", orDash(ws.CreatedAt))
		if org := ws.Organization; org != nil {
			fmt.Fprintf(w, "Organization\t%s\n", orDash(org.CompanyName))
			fmt.Fprintf(w, "Contact\t%s\n", orDash(org.ContactEmail))
		}
		return nil
	})
}
