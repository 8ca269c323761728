package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/message"

	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/hooks"
	"github.com/opengovern/frontend/internal/tui"
)

const (
	overviewTopSpend   = 5
	overviewSections   = 4
	overviewSpendTitle = "Spend"
)

// overviewParams holds the parameters for the overview command.
type overviewParams struct {
	rangeFlags

	filter []string
	plain  bool
}

// overviewReport is the combined result of the overview sections. A section
// that failed carries its error message instead of data.
type overviewReport struct {
	Spend       *api.SpendMetricsResponse       `json:"spend,omitempty"`
	Trend       []api.TrendPoint                `json:"trend,omitempty"`
	Benchmarks  *api.BenchmarksSummaryResponse  `json:"benchmarks,omitempty"`
	Connections *api.ConnectionsSummaryResponse `json:"connections,omitempty"`
	Errors      map[string]string               `json:"errors,omitempty"`
}

// overviewSection is one line of the overview in NDJSON output.
type overviewSection struct {
	Section string `json:"section"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewOverviewCmd creates the "overview" command, a one-screen summary of the
// workspace: top spend, the monthly cost trend, compliance, and connections.
func NewOverviewCmd() *cobra.Command {
	var params overviewParams

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "One-screen summary of the workspace",
		Long: `Fetch spend, cost trend, compliance, and connection summaries concurrently
and show them together. A section that fails is reported without hiding the
others; the command fails only when every section fails.`,
		Example: `  # Overview of the default workspace
  ogdash overview

  # Overview of AWS connections for the last 90 days, unstyled
  ogdash overview --from 90d --filter connector=AWS --plain`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeOverview(cmd, params)
		},
	}

	params.bind(cmd)
	bindFilterFlag(cmd, &params.filter)
	cmd.Flags().BoolVar(&params.plain, "plain", false, "disable styled output")

	return cmd
}

func executeOverview(cmd *cobra.Command, params overviewParams) error {
	ctx := cmd.Context()
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

	// A failure that no section can survive cancels the rest through gctx.
	g, gctx := errgroup.WithContext(ctx)
	deps := env.deps
	deps.Context = gctx

	spend := hooks.SpendMetrics(deps, api.SpendMetricsRequest{
		TimeRange: timeRange, ConnectionFilter: filter, PageSize: overviewTopSpend, PageNumber: 1,
	})
	trend := hooks.CostTrend(deps, api.TrendRequest{
		TimeRange: timeRange, ConnectionFilter: filter, Granularity: api.GranularityMonthly,
	})
	benchmarks := hooks.BenchmarksSummary(deps, api.BenchmarksSummaryRequest{ConnectionFilter: filter})
	connections := hooks.ConnectionsSummary(deps, api.ConnectionsSummaryRequest{
		TimeRange: timeRange, ConnectionFilter: filter,
	})

	titles := [overviewSections]string{overviewSpendTitle, "Trend", "Compliance", "Connections"}
	var (
		report overviewReport
		errs   [overviewSections]error
		spendR api.SpendMetricsResponse
		trendR []api.TrendPoint
		benchR api.BenchmarksSummaryResponse
		connR  api.ConnectionsSummaryResponse
	)
	section := func(i int, load func() error) {
		g.Go(func() error {
			errs[i] = load()
			if abortsOverview(errs[i]) {
				return errs[i]
			}
			return nil
		})
	}
	section(0, func() (err error) { spendR, err = await(gctx, spend); return err })
	section(1, func() (err error) { trendR, err = await(gctx, trend); return err })
	section(2, func() (err error) { benchR, err = await(gctx, benchmarks); return err })
	section(3, func() (err error) { connR, err = await(gctx, connections); return err })
	if err = g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("fetching overview: %w", err)
	}

	if allFailed(errs[:]) {
		return fmt.Errorf("fetching overview: %w", errors.Join(errs[:]...))
	}

	for i, e := range errs {
		if e == nil {
			continue
		}
		if report.Errors == nil {
			report.Errors = make(map[string]string)
		}
		report.Errors[titles[i]] = e.Error()
		logger.Warn().Ctx(ctx).Err(e).Str("section", titles[i]).Msg("overview section failed")
	}
	if errs[0] == nil {
		report.Spend = &spendR
	}
	if errs[1] == nil {
		report.Trend = trendR
	}
	if errs[2] == nil {
		report.Benchmarks = &benchR
	}
	if errs[3] == nil {
		report.Connections = &connR
	}

	return render(cmd, report, report.sections(), func(w *tabwriter.Writer, p *message.Printer) error {
		mode := tui.DetectOutputMode(false, true, params.plain)
		if mode == tui.OutputModeStyled {
			return renderOverviewStyled(w, report)
		}
		return renderOverviewTable(w, p, report)
	})
}

// abortsOverview reports whether err fails every section alike, so there is
// nothing partial to show.
func abortsOverview(err error) bool {
	return errors.Is(err, api.ErrNoCredential) || api.IsUnauthorized(err) || errors.Is(err, context.Canceled)
}

func allFailed(errs []error) bool {
	for _, e := range errs {
		if e == nil {
			return false
		}
	}
	return true
}

// sections flattens the report for NDJSON output.
func (r overviewReport) sections() []overviewSection {
	return []overviewSection{
		{Section: "spend", Data: r.Spend, Error: r.Errors[overviewSpendTitle]},
		{Section: "trend", Data: r.Trend, Error: r.Errors["Trend"]},
		{Section: "compliance", Data: r.Benchmarks, Error: r.Errors["Compliance"]},
		{Section: "connections", Data: r.Connections, Error: r.Errors["Connections"]},
	}
}

func renderOverviewStyled(w io.Writer, r overviewReport) error {
	width := tui.TerminalWidth()
	if r.Spend != nil {
		fmt.Fprintln(w, tui.RenderSpendSummary(*r.Spend, width))
	}
	if r.Benchmarks != nil {
		fmt.Fprintln(w, tui.RenderBenchmarksSummary(*r.Benchmarks, width))
	}
	for _, section := range slices.Sorted(maps.Keys(r.Errors)) {
		fmt.Fprintf(w, "%s unavailable: %s\n", section, r.Errors[section])
	}
	return nil
}

func renderOverviewTable(w *tabwriter.Writer, p *message.Printer, r overviewReport) error {
	section := func(title string) {
		fmt.Fprintf(w, "\n== %s ==\n", title)
		if msg, failed := r.Errors[title]; failed {
			fmt.Fprintf(w, "unavailable: %s\n", msg)
		}
	}

	section(overviewSpendTitle)
	if r.Spend != nil {
		fmt.Fprintf(w, "Total\t%s\n", formatCost(p, r.Spend.TotalCost))
		for _, m := range r.Spend.Metrics {
			fmt.Fprintf(w, "%s\t%s\n", orDash(m.DimensionName), formatCost(p, m.TotalCost))
		}
	}

	section("Trend")
	for _, pt := range r.Trend {
		fmt.Fprintf(w, "%s\t%s\n", pt.Date, formatCost(p, pt.Cost))
	}

	section("Compliance")
	if r.Benchmarks != nil {
		for _, b := range r.Benchmarks.BenchmarkSummary {
			fmt.Fprintf(w, "%s\t%s\n", orDash(b.Title), formatPercent(p, b.PassRate()))
		}
	}

	section("Connections")
	if c := r.Connections; c != nil {
		fmt.Fprintf(w, "Connections\t%s\n", formatCount(p, c.ConnectionCount))
		fmt.Fprintf(w, "Resources\t%s\n", formatCount(p, c.TotalResourceCount))
		fmt.Fprintf(w, "Cost\t%s\n", formatCost(p, c.TotalCost))
	}
	return nil
}
