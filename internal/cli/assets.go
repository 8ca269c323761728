package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/cli/pagination"
	"github.com/opengovern/frontend/internal/hooks"
)

// serviceSorter orders service summaries for --sort.
//
//nolint:gochecknoglobals // Read-only lookup table.
var serviceSorter = pagination.NewSorter(map[string]pagination.Compare[api.ServiceSummary]{
	"name":      pagination.By(func(s api.ServiceSummary) string { return s.ServiceLabel }),
	"cost":      pagination.By(func(s api.ServiceSummary) float64 { return s.Cost }),
	"resources": pagination.By(func(s api.ServiceSummary) int { return s.ResourceCount }),
})

// assetsServicesParams holds the flags of "assets services".
type assetsServicesParams struct {
	rangeFlags

	filter []string
	sortBy string
	page   pagination.PaginationParams
}

// NewAssetsServicesCmd creates the "assets services" command.
func NewAssetsServicesCmd() *cobra.Command {
	var params assetsServicesParams

	cmd := &cobra.Command{
		Use:   "services",
		Short: "Cloud services with resource counts and cost",
		Long: `List the cloud services in use with their resource count and cost.

--sort-by is passed to the server; --sort reorders the returned page locally
by name, cost, or resources.`,
		Example: `  # All services
  ogdash assets services

  # First page of 25 services of Azure connections
  ogdash assets services --filter connector=Azure --page 1 --page-size 25`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAssetsServices(cmd, params)
		},
	}

	params.bind(cmd)
	bindFilterFlag(cmd, &params.filter)
	cmd.Flags().StringVar(&params.sortBy, "sort-by", "", "server-side sort key")
	params.page.Bind(cmd)

	return cmd
}

func runAssetsServices(cmd *cobra.Command, params assetsServicesParams) error {
	ctx := cmd.Context()
	if err := validateSort(params.page, serviceSorter); err != nil {
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

	pageNo, pageSize := params.page.ServerPage()
	resp, err := await(ctx, hooks.ServicesSummary(env.deps, api.ServicesSummaryRequest{
		TimeRange:        timeRange,
		ConnectionFilter: filter,
		SortBy:           params.sortBy,
		PageSize:         pageSize,
		PageNumber:       pageNo,
	}))
	if err != nil {
		return fmt.Errorf("fetching services: %w", err)
	}

	services, err := sortAndPage(params.page, serviceSorter, resp.Services, true)
	if err != nil {
		return err
	}
	resp.Services = services
	meta := pagination.NewPaginationMeta(params.page, resp.TotalCount)

	return render(cmd, resp, services, func(w *tabwriter.Writer, p *message.Printer) error {
		writeHeader(w, "Service", "Connectors", "Resources", "Cost")
		for _, s := range services {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				orDash(s.ServiceLabel),
				orDash(strings.Join(s.Connector, ",")),
				formatCount(p, s.ResourceCount),
				formatCost(p, s.Cost),
			)
		}
		if meta.TotalPages > 1 {
			fmt.Fprintf(w, "\npage %d of %d (%s services)\t\t\t\n",
				meta.CurrentPage, meta.TotalPages, formatCount(p, meta.TotalItems))
		}
		return nil
	})
}

// categoryRow is one category of "assets categories".
type categoryRow struct {
	Category      string   `json:"category"`
	ResourceTypes []string `json:"resourceTypes"`
}

// NewAssetsCategoriesCmd creates the "assets categories" command.
func NewAssetsCategoriesCmd() *cobra.Command {
	var metricType string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Analytics categories and their resource types",
		Example: `  # Asset categories
  ogdash assets categories

  # Spend categories
  ogdash assets categories --metric-type spend`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAssetsCategories(cmd, metricType)
		},
	}

	cmd.Flags().StringVar(&metricType, "metric-type", "assets", "metric type: assets or spend")

	return cmd
}

func runAssetsCategories(cmd *cobra.Command, metricType string) error {
	ctx := cmd.Context()
	env, err := newAPIEnv(cmd)
	if err != nil {
		return err
	}

	resp, err := await(ctx, hooks.AnalyticsCategories(env.deps, api.AnalyticsCategoriesRequest{MetricType: metricType}))
	if err != nil {
		return fmt.Errorf("fetching categories: %w", err)
	}

	names := slices.Sorted(maps.Keys(resp.CategoryResourceType))
	rows := make([]categoryRow, 0, len(names))
	for _, name := range names {
		rows = append(rows, categoryRow{Category: name, ResourceTypes: resp.CategoryResourceType[name]})
	}

	return render(cmd, resp, rows, func(w *tabwriter.Writer, p *message.Printer) error {
		writeHeader(w, "Category", "Types", "Resource Types")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Category, formatCount(p, len(r.ResourceTypes)),
				orDash(strings.Join(r.ResourceTypes, ", ")))
		}
		return nil
	})
}
