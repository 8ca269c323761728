package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/cli/pagination"
	"github.com/opengovern/frontend/internal/hooks"
)

// defaultTrendPoints is the number of points requested by "insight --trend".
const defaultTrendPoints = 30

// benchmarkSorter orders benchmark summaries for --sort.
//
//nolint:gochecknoglobals // Read-only lookup table.
var benchmarkSorter = pagination.NewSorter(map[string]pagination.Compare[api.BenchmarkSummary]{
	"title":     pagination.By(func(b api.BenchmarkSummary) string { return b.Title }),
	"pass-rate": pagination.By(api.BenchmarkSummary.PassRate),
	"evaluated": pagination.By(func(b api.BenchmarkSummary) int64 { return b.EvaluatedAt }),
})

// NewComplianceBenchmarksCmd creates the "compliance benchmarks" command.
func NewComplianceBenchmarksCmd() *cobra.Command {
	var (
		filter []string
		tags   []string
		at     string
		page   pagination.PaginationParams
	)

	cmd := &cobra.Command{
		Use:   "benchmarks",
		Short: "Benchmark evaluation summary",
		Long: `List every benchmark with its pass rate and the status of its last evaluation.

--at evaluates the summary as of an earlier date. --sort accepts title,
pass-rate, or evaluated.`,
		Example: `  # All benchmarks
  ogdash compliance benchmarks

  # Worst AWS benchmarks first
  ogdash compliance benchmarks --filter connector=AWS --sort pass-rate

  # Summary as of a week ago
  ogdash compliance benchmarks --at 7d`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runComplianceBenchmarks(cmd, filter, tags, at, page)
		},
	}

	bindFilterFlag(cmd, &filter)
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "only benchmarks with these tags, as key=value (comma-separated)")
	cmd.Flags().StringVar(&at, "at", "", "evaluate as of this date: YYYY-MM-DD, RFC3339, or a lookback like 7d")
	page.Bind(cmd)

	return cmd
}

func runComplianceBenchmarks(
	cmd *cobra.Command, filters, tags []string, at string, page pagination.PaginationParams,
) error {
	ctx := cmd.Context()
	if err := validateSort(page, benchmarkSorter); err != nil {
		return err
	}

	filter, err := ParseConnectionFilters(ctx, filters)
	if err != nil {
		return err
	}
	var timeAt int64
	if at != "" {
		t, parseErr := ParseTime(at)
		if parseErr != nil {
			return fmt.Errorf("parsing --at: %w", parseErr)
		}
		timeAt = t.Unix()
	}

	env, err := newAPIEnv(cmd)
	if err != nil {
		return err
	}

	resp, err := await(ctx, hooks.BenchmarksSummary(env.deps, api.BenchmarksSummaryRequest{
		ConnectionFilter: filter,
		TimeAt:           timeAt,
		Tags:             tags,
	}))
	if err != nil {
		return fmt.Errorf("fetching benchmarks: %w", err)
	}

	benchmarks, err := sortAndPage(page, benchmarkSorter, resp.BenchmarkSummary, false)
	if err != nil {
		return err
	}
	resp.BenchmarkSummary = benchmarks

	return render(cmd, resp, benchmarks, func(w *tabwriter.Writer, p *message.Printer) error {
		writeHeader(w, "ID", "Title", "Connectors", "Pass Rate", "Controls", "Last Job", "Evaluated")
		for _, b := range benchmarks {
			total := b.ControlsSeverityStatus.Total
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s/%s\t%s\t%s\n",
				b.ID,
				orDash(b.Title),
				orDash(strings.Join(b.Connectors, ",")),
				formatPercent(p, b.PassRate()),
				formatCount(p, total.PassedCount),
				formatCount(p, total.TotalCount),
				orDash(b.LastJobStatus),
				formatUnix(b.EvaluatedAt),
			)
		}
		return nil
	})
}

// NewComplianceControlsCmd creates the "compliance controls" command.
func NewComplianceControlsCmd() *cobra.Command {
	var (
		filter     []string
		failedOnly bool
	)

	cmd := &cobra.Command{
		Use:   "controls <benchmark-id>",
		Short: "Controls of a benchmark with their results",
		Args:  cobra.ExactArgs(1),
		Example: `  # Controls of the CIS benchmark
  ogdash compliance controls aws_cis_v200

  # Only failing controls of one connection
  ogdash compliance controls aws_cis_v200 --failed --filter connection=1234`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComplianceControls(cmd, args[0], filter, failedOnly)
		},
	}

	bindFilterFlag(cmd, &filter)
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "only show failing controls")

	return cmd
}

func runComplianceControls(cmd *cobra.Command, benchmarkID string, filters []string, failedOnly bool) error {
	ctx := cmd.Context()
	filter, err := ParseConnectionFilters(ctx, filters)
	if err != nil {
		return err
	}

	env, err := newAPIEnv(cmd)
	if err != nil {
		return err
	}

	resp, err := await(ctx, hooks.ControlsSummary(env.deps, api.ControlsSummaryRequest{
		BenchmarkID:      benchmarkID,
		ConnectionFilter: filter,
	}))
	if err != nil {
		return fmt.Errorf("fetching controls of %s: %w", benchmarkID, err)
	}

	controls := resp.Controls
	if failedOnly {
		controls = make([]api.ControlSummary, 0, len(resp.Controls))
		for _, c := range resp.Controls {
			if !c.Passed {
				controls = append(controls, c)
			}
		}
		resp.Controls = controls
	}

	return render(cmd, resp, controls, func(w *tabwriter.Writer, p *message.Printer) error {
		writeHeader(w, "Control", "Severity", "Result", "Failed Resources", "Failed Connections")
		for _, c := range controls {
			result := "passed"
			if !c.Passed {
				result = "failed"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s/%s\t%s/%s\n",
				orDash(c.Control.Title),
				orDash(c.Control.Severity),
				result,
				formatCount(p, c.FailedResourcesCount),
				formatCount(p, c.TotalResourcesCount),
				formatCount(p, c.FailedConnectionCount),
				formatCount(p, c.TotalConnectionCount),
			)
		}
		return nil
	})
}

// NewComplianceInsightCmd creates the "compliance insight" command.
func NewComplianceInsightCmd() *cobra.Command {
	var (
		ranges      rangeFlags
		connections []string
		trend       bool
		points      int
	)

	cmd := &cobra.Command{
		Use:   "insight <insight-id>",
		Short: "Result of an insight, or its trend",
		Args:  cobra.ExactArgs(1),
		Example: `  # Latest result of insight 42
  ogdash compliance insight 42

  # Its value over the last 90 days in 15 points
  ogdash compliance insight 42 --trend --from 90d --points 15`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if trend {
				return runComplianceInsightTrend(cmd, args[0], ranges, points)
			}
			return runComplianceInsight(cmd, args[0], ranges, connections)
		},
	}

	ranges.bind(cmd)
	cmd.Flags().StringSliceVar(&connections, "connection", nil, "restrict to these connection IDs (comma-separated)")
	cmd.Flags().BoolVar(&trend, "trend", false, "show the insight value over time")
	cmd.Flags().IntVar(&points, "points", defaultTrendPoints, "number of trend data points")

	return cmd
}

func runComplianceInsight(cmd *cobra.Command, id string, ranges rangeFlags, connections []string) error {
	ctx := cmd.Context()
	timeRange, err := ranges.resolve()
	if err != nil {
		return err
	}

	env, err := newAPIEnv(cmd)
	if err != nil {
		return err
	}

	insight, err := await(ctx, hooks.InsightDetail(env.deps, api.InsightRequest{
		InsightID:    id,
		TimeRange:    timeRange,
		ConnectionID: connections,
	}))
	if err != nil {
		return fmt.Errorf("fetching insight %s: %w", id, err)
	}

	return render(cmd, insight, insight.Result, func(w *tabwriter.Writer, p *message.Printer) error {
		total := noValue
		if insight.TotalResultValue != nil {
			total = p.Sprint(*insight.TotalResultValue)
		}
		fmt.Fprintf(w, "%s\t%s\n", orDash(insight.Title), orDash(insight.Connector))
		fmt.Fprintf(w, "Total\t%s\n\n", total)

		writeHeader(w, "Connection", "Result", "Executed")
		for _, r := range insight.Result {
			fmt.Fprintf(w, "%s\t%s\t%s\n", orDash(r.ConnectionID), p.Sprint(r.Result), formatUnix(r.ExecutedAt))
		}
		return nil
	})
}

func runComplianceInsightTrend(cmd *cobra.Command, id string, ranges rangeFlags, points int) error {
	ctx := cmd.Context()
	if points <= 0 {
		return fmt.Errorf("points must be > 0, got %d", points)
	}
	timeRange, err := ranges.resolve()
	if err != nil {
		return err
	}

	env, err := newAPIEnv(cmd)
	if err != nil {
		return err
	}

	trend, err := await(ctx, hooks.InsightTrend(env.deps, api.InsightTrendRequest{
		InsightID:      id,
		TimeRange:      timeRange,
		DatapointCount: points,
	}))
	if err != nil {
		return fmt.Errorf("fetching insight trend %s: %w", id, err)
	}

	return render(cmd, trend, trend, func(w *tabwriter.Writer, p *message.Printer) error {
		writeHeader(w, "Time", "Value")
		for _, pt := range trend {
			fmt.Fprintf(w, "%s\t%s\n", formatUnix(pt.Timestamp), p.Sprint(pt.Value))
		}
		return nil
	})
}

// findingsParams holds the flags of "compliance findings".
type findingsParams struct {
	filters api.FindingFilters
	page    pagination.PaginationParams
}

// NewComplianceFindingsCmd creates the "compliance findings" command.
func NewComplianceFindingsCmd() *cobra.Command {
	var params findingsParams

	cmd := &cobra.Command{
		Use:   "findings",
		Short: "Compliance findings",
		Long: `List findings, optionally narrowed by benchmark, control, connection,
severity, or conformance status. --page requests one page from the server.`,
		Example: `  # Active critical findings of a benchmark
  ogdash compliance findings --benchmark aws_cis_v200 --severity critical --active-only

  # Second page of 100 failed findings as NDJSON
  ogdash compliance findings --status failed --page 2 --page-size 100 -o ndjson`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runComplianceFindings(cmd, params)
		},
	}

	f := &params.filters
	cmd.Flags().StringSliceVar(&f.BenchmarkID, "benchmark", nil, "benchmark IDs")
	cmd.Flags().StringSliceVar(&f.ControlID, "control", nil, "control IDs")
	cmd.Flags().StringSliceVar(&f.Connector, "connector", nil, "connectors, e.g. AWS")
	cmd.Flags().StringSliceVar(&f.ConnectionID, "connection", nil, "connection IDs")
	cmd.Flags().StringSliceVar(&f.Severity, "severity", nil, "severities: critical, high, medium, low, none")
	cmd.Flags().StringSliceVar(&f.ConformanceStatus, "status", nil, "conformance statuses, e.g. failed")
	cmd.Flags().BoolVar(&f.ActiveOnly, "active-only", false, "only findings of active resources")
	params.page.Bind(cmd)

	return cmd
}

func runComplianceFindings(cmd *cobra.Command, params findingsParams) error {
	ctx := cmd.Context()
	if err := params.page.Validate(); err != nil {
		return err
	}

	env, err := newAPIEnv(cmd)
	if err != nil {
		return err
	}

	pageNo, pageSize := params.page.ServerPage()
	resp, err := await(ctx, hooks.Findings(env.deps, api.FindingsRequest{
		Filters: params.filters,
		Page:    api.Page{No: pageNo, Size: pageSize},
	}))
	if err != nil {
		return fmt.Errorf("fetching findings: %w", err)
	}

	findings := resp.Findings
	if !params.page.IsPageBased() {
		findings = pagination.Apply(params.page, findings)
		resp.Findings = findings
	}

	return render(cmd, resp, findings, func(w *tabwriter.Writer, p *message.Printer) error {
		writeHeader(w, "Resource", "Type", "Control", "Severity", "Status", "Evaluated")
		for _, f := range findings {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				orDash(f.ResourceName),
				orDash(f.ResourceType),
				orDash(f.ControlID),
				orDash(f.Severity),
				orDash(f.ConformanceStatus),
				formatUnix(f.EvaluatedAt),
			)
		}
		fmt.Fprintf(w, "\n%s of %s findings\t\t\t\t\t\n", formatCount(p, len(findings)), formatCount(p, resp.TotalCount))
		return nil
	})
}

// errTriggerDeclined is returned when the confirmation for triggering every
// benchmark was declined.
var errTriggerDeclined = errors.New("trigger cancelled")

// NewComplianceTriggerCmd creates the "compliance trigger" command.
func NewComplianceTriggerCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "trigger [benchmark-id...]",
		Short: "Start a compliance evaluation",
		Long: `Schedule an evaluation of the given benchmarks. Without arguments every
benchmark is evaluated; this asks for confirmation unless --yes is given.`,
		Example: `  # Re-evaluate one benchmark
  ogdash compliance trigger aws_cis_v200

  # Re-evaluate everything without prompting
  ogdash compliance trigger --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComplianceTrigger(cmd, args, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func runComplianceTrigger(cmd *cobra.Command, benchmarkIDs []string, yes bool) error {
	ctx := cmd.Context()
	if len(benchmarkIDs) == 0 && !yes {
		result := ConfirmWithStdin(cmd.OutOrStdout(), "Evaluate every benchmark of the workspace?")
		if !result.Accepted {
			return errTriggerDeclined
		}
	}

	env, err := newAPIEnv(cmd)
	if err != nil {
		return err
	}

	started := time.Now()
	if _, err = trigger(ctx, hooks.TriggerCompliance(env.deps, api.TriggerComplianceRequest{
		BenchmarkIDs: benchmarkIDs,
	})); err != nil {
		return fmt.Errorf("triggering compliance evaluation: %w", err)
	}

	logger.Info().Ctx(ctx).
		Strs("benchmarks", benchmarkIDs).
		Dur("duration_ms", time.Since(started)).
		Msg("compliance evaluation triggered")

	if len(benchmarkIDs) == 0 {
		cmd.Println("Evaluation of all benchmarks scheduled.")
		return nil
	}
	cmd.Printf("Evaluation scheduled for %s.\n", strings.Join(benchmarkIDs, ", "))
	return nil
}
