package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/cli/pagination"
	"github.com/opengovern/frontend/internal/hooks"
)

// connectionSorter orders connections for --sort.
//
//nolint:gochecknoglobals // Read-only lookup table.
var connectionSorter = pagination.NewSorter(map[string]pagination.Compare[api.Connection]{
	"name":      pagination.By(func(c api.Connection) string { return c.ProviderConnectionName }),
	"connector": pagination.By(func(c api.Connection) string { return c.Connector }),
	"cost":      pagination.By(func(c api.Connection) float64 { return c.Cost }),
	"resources": pagination.By(func(c api.Connection) int { return c.ResourceCount }),
})

// connectionsParams holds the flags of "connections".
type connectionsParams struct {
	rangeFlags

	filter    []string
	lifecycle string
	noCost    bool
	page      pagination.PaginationParams
}

// NewConnectionsCmd creates the "connections" command, which lists the cloud
// accounts onboarded to the workspace.
func NewConnectionsCmd() *cobra.Command {
	var params connectionsParams

	cmd := &cobra.Command{
		Use:   "connections",
		Short: "Onboarded cloud connections",
		Long: `List the cloud connections of the workspace with their state, resource
count, and cost over the time range. --sort accepts name, connector, cost, or resources.`,
		Example: `  # All connections
  ogdash connections

  # Onboarded AWS accounts by cost
  ogdash connections --filter connector=AWS --lifecycle ONBOARD --sort cost:desc`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConnections(cmd, params)
		},
	}

	params.bind(cmd)
	bindFilterFlag(cmd, &params.filter)
	cmd.Flags().StringVar(&params.lifecycle, "lifecycle", "", "only connections in this lifecycle state")
	cmd.Flags().BoolVar(&params.noCost, "no-cost", false, "skip cost and resource count lookups")
	params.page.Bind(cmd)

	return cmd
}

func runConnections(cmd *cobra.Command, params connectionsParams) error {
	ctx := cmd.Context()
	if err := validateSort(params.page, connectionSorter); err != nil {
		return err
	}

	timeRange, err := params.resolve()
	if err != nil {
		return err
	}
	filter, err := ParseConnectionFilters(ctx, params.filter)
	if err != nil {
		return err
	}

	env, err := newAPIEnv(cmd)
	if err != nil {
		return err
	}

	need := !params.noCost
	pageNo, pageSize := params.page.ServerPage()
	resp, err := await(ctx, hooks.ConnectionsSummary(env.deps, api.ConnectionsSummaryRequest{
		TimeRange:         timeRange,
		ConnectionFilter:  filter,
		LifecycleState:    params.lifecycle,
		PageSize:          pageSize,
		PageNumber:        pageNo,
		NeedCost:          &need,
		NeedResourceCount: &need,
	}))
	if err != nil {
		return fmt.Errorf("fetching connections: %w", err)
	}

	connections, err := sortAndPage(params.page, connectionSorter, resp.Connections, true)
	if err != nil {
		return err
	}
	resp.Connections = connections

	return render(cmd, resp, connections, func(w *tabwriter.Writer, p *message.Printer) error {
		writeHeader(w, "Name", "Account", "Connector", "Lifecycle", "Health", "Resources", "Cost")
		for _, c := range connections {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				orDash(c.ProviderConnectionName),
				orDash(c.ProviderConnectionID),
				orDash(c.Connector),
				orDash(c.LifecycleState),
				orDash(c.HealthState),
				formatCount(p, c.ResourceCount),
				formatCost(p, c.Cost),
			)
		}
		fmt.Fprintf(w, "\nTOTAL (%s connections)\t\t\t\t\t%s\t%s\n",
			formatCount(p, resp.ConnectionCount),
			formatCount(p, resp.TotalResourceCount),
			formatCost(p, resp.TotalCost),
		)
		return nil
	})
}
