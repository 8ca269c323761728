package cli

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/cli/pagination"
	"github.com/opengovern/frontend/internal/hooks"
)

// spendParams holds the flags shared by the spend subcommands.
type spendParams struct {
	rangeFlags

	filter      []string
	metrics     []string
	granularity string
	dimension   string
	page        pagination.PaginationParams
}

// spendMetricSorter orders spend metrics for --sort.
//
//nolint:gochecknoglobals // Read-only lookup table.
var spendMetricSorter = pagination.NewSorter(map[string]pagination.Compare[api.SpendMetric]{
	"name": pagination.By(func(m api.SpendMetric) string { return m.DimensionName }),
	"cost": pagination.By(func(m api.SpendMetric) float64 { return m.TotalCost }),
	"growth": pagination.By(func(m api.SpendMetric) float64 {
		return m.DailyCostAtEndTime - m.DailyCostAtStartTime
	}),
})

// spendRowSorter orders spend table rows for --sort.
//
//nolint:gochecknoglobals // Read-only lookup table.
var spendRowSorter = pagination.NewSorter(map[string]pagination.Compare[api.SpendTableRow]{
	"name":      pagination.By(func(r api.SpendTableRow) string { return r.DimensionName }),
	"connector": pagination.By(func(r api.SpendTableRow) string { return r.Connector }),
	"total":     pagination.By(func(r api.SpendTableRow) float64 { return r.Total() }),
})

// NewSpendMetricsCmd creates the "spend metrics" command, which lists the
// cost of each spend dimension over a time range.
func NewSpendMetricsCmd() *cobra.Command {
	var params spendParams

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Spend per dimension over a time range",
		Long: `List the total cost of every spend dimension in the time range, together
with the daily cost at the start and the end of the range.

--page requests one page from the server; --limit and --offset slice the
returned list locally. --sort accepts name, cost, or growth.`,
		Example: `  # Spend over the last 30 days
  ogdash spend metrics

  # Top ten AWS dimensions of the last quarter
  ogdash spend metrics --from 90d --filter connector=AWS --sort cost:desc --limit 10

  # Second page of 20 as JSON
  ogdash spend metrics --page 2 --page-size 20 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSpendMetrics(cmd, params)
		},
	}

	params.bind(cmd)
	bindFilterFlag(cmd, &params.filter)
	cmd.Flags().StringSliceVar(&params.metrics, "metric", nil, "restrict to these metric IDs (comma-separated)")
	params.page.Bind(cmd)

	return cmd
}

func runSpendMetrics(cmd *cobra.Command, params spendParams) error {
	ctx := cmd.Context()
	if err := validateSort(params.page, spendMetricSorter); err != nil {
		return err
	}

	timeRange, filter, err := params.resolveScope(cmd)
	if err != nil {
		return err
	}

	env, err := newAPIEnv(cmd)
	if err != nil {
		return err
	}

	pageNo, pageSize := params.page.ServerPage()
	resp, err := await(ctx, hooks.SpendMetrics(env.deps, api.SpendMetricsRequest{
		TimeRange:        timeRange,
		ConnectionFilter: filter,
		MetricIDs:        params.metrics,
		PageSize:         pageSize,
		PageNumber:       pageNo,
	}))
	if err != nil {
		return fmt.Errorf("fetching spend metrics: %w", err)
	}

	metrics, err := sortAndPage(params.page, spendMetricSorter, resp.Metrics, true)
	if err != nil {
		return err
	}
	resp.Metrics = metrics

	return render(cmd, resp, metrics, func(w *tabwriter.Writer, p *message.Printer) error {
		writeHeader(w, "Dimension", "Total Cost", "Daily (start)", "Daily (end)")
		for _, m := range metrics {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				orDash(m.DimensionName),
				formatCost(p, m.TotalCost),
				formatCost(p, m.DailyCostAtStartTime),
				formatCost(p, m.DailyCostAtEndTime),
			)
		}
		fmt.Fprintf(w, "\t\t\t\n")
		fmt.Fprintf(w, "TOTAL (%s dimensions)\t%s\t\t\n", formatCount(p, resp.TotalCount), formatCost(p, resp.TotalCost))
		return nil
	})
}

// NewSpendTableCmd creates the "spend table" command, which breaks spend down
// per dimension and period.
func NewSpendTableCmd() *cobra.Command {
	var params spendParams

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Spend per dimension and period",
		Long: `Show a spend table with one row per dimension and one column per period.

Granularity is daily, monthly, or yearly; dimension is connection or metric.
--sort accepts name, connector, or total.`,
		Example: `  # Monthly spend per connection for the last 90 days
  ogdash spend table --from 90d --granularity monthly

  # Daily spend per metric, most expensive first
  ogdash spend table --dimension metric --sort total:desc`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSpendTable(cmd, params)
		},
	}

	params.bind(cmd)
	bindFilterFlag(cmd, &params.filter)
	cmd.Flags().StringSliceVar(&params.metrics, "metric", nil, "restrict to these metric IDs (comma-separated)")
	cmd.Flags().StringVar(&params.granularity, "granularity", api.GranularityDaily,
		"period size: "+strings.Join(api.Granularities(), ", "))
	cmd.Flags().StringVar(&params.dimension, "dimension", api.DimensionConnection,
		"row dimension: "+api.DimensionConnection+" or "+api.DimensionMetric)
	params.page.Bind(cmd)

	return cmd
}

func runSpendTable(cmd *cobra.Command, params spendParams) error {
	ctx := cmd.Context()
	if err := validateSort(params.page, spendRowSorter); err != nil {
		return err
	}

	timeRange, filter, err := params.resolveScope(cmd)
	if err != nil {
		return err
	}

	env, err := newAPIEnv(cmd)
	if err != nil {
		return err
	}

	rows, err := await(ctx, hooks.SpendTable(env.deps, api.SpendTableRequest{
		TimeRange:        timeRange,
		ConnectionFilter: filter,
		Granularity:      params.granularity,
		Dimension:        params.dimension,
		MetricIDs:        params.metrics,
	}))
	if err != nil {
		return fmt.Errorf("fetching spend table: %w", err)
	}

	rows, err = sortAndPage(params.page, spendRowSorter, rows, false)
	if err != nil {
		return err
	}

	return render(cmd, rows, rows, func(w *tabwriter.Writer, p *message.Printer) error {
		periods := spendPeriods(rows)
		writeHeader(w, append(append([]string{"Dimension", "Connector"}, periods...), "Total")...)
		for _, r := range rows {
			cells := []string{orDash(r.DimensionName), orDash(r.Connector)}
			for _, period := range periods {
				cells = append(cells, formatCost(p, r.CostValue[period]))
			}
			cells = append(cells, formatCost(p, r.Total()))
			fmt.Fprintln(w, strings.Join(cells, "\t"))
		}
		return nil
	})
}

// spendPeriods returns the union of the period keys of rows in order.
func spendPeriods(rows []api.SpendTableRow) []string {
	var periods []string
	for _, r := range rows {
		for period := range r.CostValue {
			if !slices.Contains(periods, period) {
				periods = append(periods, period)
			}
		}
	}
	slices.Sort(periods)
	return periods
}

// NewSpendTrendCmd creates the "spend trend" command, which prints the spend
// time series.
func NewSpendTrendCmd() *cobra.Command {
	var params spendParams

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Spend over time",
		Long:  "Print the spend time series for the time range at the chosen granularity.",
		Example: `  # Daily spend for the last 30 days
  ogdash spend trend

  # Monthly spend of one connection as NDJSON
  ogdash spend trend --from 365d --granularity monthly --filter connection=1234 -o ndjson`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSpendTrend(cmd, params)
		},
	}

	params.bind(cmd)
	bindFilterFlag(cmd, &params.filter)
	cmd.Flags().StringSliceVar(&params.metrics, "metric", nil, "restrict to these metric IDs (comma-separated)")
	cmd.Flags().StringVar(&params.granularity, "granularity", api.GranularityDaily,
		"point spacing: "+strings.Join(api.Granularities(), ", "))

	return cmd
}

func runSpendTrend(cmd *cobra.Command, params spendParams) error {
	ctx := cmd.Context()
	timeRange, filter, err := params.resolveScope(cmd)
	if err != nil {
		return err
	}

	env, err := newAPIEnv(cmd)
	if err != nil {
		return err
	}

	points, err := await(ctx, hooks.SpendTrend(env.deps, api.TrendRequest{
		TimeRange:        timeRange,
		ConnectionFilter: filter,
		Granularity:      params.granularity,
		MetricIDs:        params.metrics,
	}))
	if err != nil {
		return fmt.Errorf("fetching spend trend: %w", err)
	}

	return render(cmd, points, points, func(w *tabwriter.Writer, p *message.Printer) error {
		writeHeader(w, "Date", "Cost")
		var total float64
		for _, pt := range points {
			total += pt.Cost
			fmt.Fprintf(w, "%s\t%s\n", pt.Date, formatCost(p, pt.Cost))
		}
		fmt.Fprintf(w, "TOTAL\t%s\n", formatCost(p, total))
		return nil
	})
}

// resolveScope parses the time range and connection filters of params.
func (s spendParams) resolveScope(cmd *cobra.Command) (api.TimeRange, api.ConnectionFilter, error) {
	timeRange, err := s.resolve()
	if err != nil {
		return api.TimeRange{}, api.ConnectionFilter{}, err
	}
	filter, err := ParseConnectionFilters(cmd.Context(), s.filter)
	if err != nil {
		return api.TimeRange{}, api.ConnectionFilter{}, err
	}
	return timeRange, filter, nil
}

// validateSort checks the pagination flags and the --sort field against
// sorter before any request is made.
func validateSort[T any](p pagination.PaginationParams, sorter *pagination.Sorter[T]) error {
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := sorter.Sort(nil, p.Sort)
	return err
}

// sortAndPage applies --sort and then the local slice of --limit/--offset.
// serverPaged skips the local slice when the server already returned the
// requested page.
func sortAndPage[T any](p pagination.PaginationParams, sorter *pagination.Sorter[T], items []T, serverPaged bool) ([]T, error) {
	items, err := sorter.Sort(items, p.Sort)
	if err != nil {
		return nil, err
	}
	if serverPaged && p.IsPageBased() {
		return items, nil
	}
	return pagination.Apply(p, items), nil
}
