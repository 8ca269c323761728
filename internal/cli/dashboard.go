package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/auth"
	"github.com/opengovern/frontend/internal/config"
	"github.com/opengovern/frontend/internal/hooks"
	"github.com/opengovern/frontend/internal/tui"
)

// dashboardParams holds the flags shared by the dashboard subcommands.
type dashboardParams struct {
	refresh       string
	plain         bool
	noInteractive bool
	forceColor    bool
}

func (p *dashboardParams) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.refresh, "refresh", "",
		`refresh schedule, e.g. "@every 5m" or a cron expression (default from dashboard.refresh)`)
	cmd.Flags().BoolVar(&p.plain, "plain", false, "print a plain table instead of the dashboard")
	cmd.Flags().BoolVar(&p.noInteractive, "no-interactive", false, "print a styled summary instead of the dashboard")
	cmd.Flags().BoolVar(&p.forceColor, "force-color", false, "keep styling when stdout is not a terminal")
}

// schedule returns the refresh schedule from --refresh or the configuration.
func (p dashboardParams) schedule(cfg *config.Config) (string, error) {
	sched := p.refresh
	if sched == "" {
		sched = cfg.Dashboard.Refresh
	}
	if err := tui.ValidateRefresh(sched); err != nil {
		return "", err
	}
	return sched, nil
}

// NewDashboardSpendCmd creates the "dashboard spend" command.
func NewDashboardSpendCmd() *cobra.Command {
	var params dashboardParams

	cmd := &cobra.Command{
		Use:   "spend",
		Short: "Interactive spend-by-connection dashboard",
		Long: `Show spend per connection for a moving window. Use the arrow keys to move
the window, g to change granularity, r to refresh, and q to quit.

When stdout is not an interactive terminal a summary is printed instead.`,
		Example: `  # Dashboard refreshed every five minutes
  ogdash dashboard spend --refresh "@every 5m"

  # Styled summary for a report
  ogdash dashboard spend --no-interactive --force-color > spend.txt`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboardSpend(cmd, params)
		},
	}

	params.bind(cmd)

	return cmd
}

func runDashboardSpend(cmd *cobra.Command, params dashboardParams) error {
	ctx := cmd.Context()
	env, err := newAPIEnv(cmd)
	if err != nil {
		return err
	}

	window := tui.DefaultSpendWindow(time.Now())
	mode := tui.DetectOutputMode(params.forceColor, params.noInteractive, params.plain)
	logger.Debug().Ctx(ctx).Str("output_mode", mode.String()).Msg("spend dashboard")

	if mode != tui.OutputModeInteractive {
		req := window.Request()
		resp, fetchErr := await(ctx, hooks.SpendMetrics(env.deps, api.SpendMetricsRequest{TimeRange: req.TimeRange}))
		if fetchErr != nil {
			return fmt.Errorf("fetching spend: %w", fetchErr)
		}
		if mode == tui.OutputModeStyled {
			cmd.Println(tui.RenderSpendSummary(resp, tui.TerminalWidth()))
			return nil
		}
		return renderSpendPlain(cmd, resp)
	}

	sched, err := params.schedule(env.cfg)
	if err != nil {
		return err
	}

	hook := hooks.SpendTable(env.deps, window.Request())
	defer hook.Close()
	model := tui.NewSpendModel(ctx, hook, window)

	return runDashboard(ctx, cmd, env, model, sched, model.Refresh)
}

// renderSpendPlain prints the spend summary as a table.
func renderSpendPlain(cmd *cobra.Command, resp api.SpendMetricsResponse) error {
	w := newTabWriter(cmd.OutOrStdout())
	p := newPrinter()
	writeHeader(w, "Dimension", "Total Cost")
	for _, m := range resp.Metrics {
		fmt.Fprintf(w, "%s\t%s\n", orDash(m.DimensionName), formatCost(p, m.TotalCost))
	}
	fmt.Fprintf(w, "TOTAL\t%s\n", formatCost(p, resp.TotalCost))
	return w.Flush()
}

// NewDashboardComplianceCmd creates the "dashboard compliance" command.
func NewDashboardComplianceCmd() *cobra.Command {
	var params dashboardParams

	cmd := &cobra.Command{
		Use:   "compliance",
		Short: "Interactive compliance dashboard",
		Long: `Browse benchmarks and their controls. Press enter to open a benchmark, t
to trigger its evaluation, r to refresh, esc to go back, and q to quit.

When stdout is not an interactive terminal a summary is printed instead.`,
		Example: `  # Compliance dashboard
  ogdash dashboard compliance

  # Plain summary
  ogdash dashboard compliance --plain`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboardCompliance(cmd, params)
		},
	}

	params.bind(cmd)

	return cmd
}

func runDashboardCompliance(cmd *cobra.Command, params dashboardParams) error {
	ctx := cmd.Context()
	env, err := newAPIEnv(cmd)
	if err != nil {
		return err
	}

	mode := tui.DetectOutputMode(params.forceColor, params.noInteractive, params.plain)
	logger.Debug().Ctx(ctx).Str("output_mode", mode.String()).Msg("compliance dashboard")

	if mode != tui.OutputModeInteractive {
		resp, fetchErr := await(ctx, hooks.BenchmarksSummary(env.deps, api.BenchmarksSummaryRequest{}))
		if fetchErr != nil {
			return fmt.Errorf("fetching benchmarks: %w", fetchErr)
		}
		if mode == tui.OutputModeStyled {
			cmd.Println(tui.RenderBenchmarksSummary(resp, tui.TerminalWidth()))
			return nil
		}
		return renderBenchmarksPlain(cmd, resp)
	}

	sched, err := params.schedule(env.cfg)
	if err != nil {
		return err
	}

	summary := hooks.BenchmarksSummary(env.deps, api.BenchmarksSummaryRequest{})
	triggerHook := hooks.TriggerCompliance(env.deps, api.TriggerComplianceRequest{})
	model := tui.NewBenchmarksModel(ctx, tui.BenchmarksHooks{
		Summary: summary,
		Trigger: triggerHook,
		Controls: func(req api.ControlsSummaryRequest) *hooks.ControlsSummaryHook {
			return hooks.ControlsSummary(env.deps, req)
		},
	})
	defer model.Close()

	return runDashboard(ctx, cmd, env, model, sched, model.Refresh)
}

// renderBenchmarksPlain prints the benchmark pass rates as a table.
func renderBenchmarksPlain(cmd *cobra.Command, resp api.BenchmarksSummaryResponse) error {
	w := newTabWriter(cmd.OutOrStdout())
	p := newPrinter()
	writeHeader(w, "Benchmark", "Pass Rate", "Last Job")
	for _, b := range resp.BenchmarkSummary {
		fmt.Fprintf(w, "%s\t%s\t%s\n", orDash(b.Title), formatPercent(p, b.PassRate()), orDash(b.LastJobStatus))
	}
	return w.Flush()
}

// runDashboard runs model as a full-screen program. refresh is scheduled on
// sched, and configuration changes are applied while the program runs when
// dashboard.watch_config is on.
func runDashboard(
	ctx context.Context, cmd *cobra.Command, env *apiEnv, model tea.Model, sched string, refresh func(),
) error {
	refresher, err := tui.NewRefresher(sched, logger, refresh)
	if err != nil {
		return err
	}
	refresher.Start()
	defer refresher.Stop()

	if env.cfg.Dashboard.WatchConfig {
		stop := watchConfig(ctx, cmd, env, refresh)
		defer stop()
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err = p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run interactive TUI: %w", err)
	}
	return nil
}

// watchConfig reloads the credential and the ambient workspace when the
// configuration file changes, then refreshes. It returns the function that
// stops watching. Failing to watch is logged, not fatal.
func watchConfig(ctx context.Context, cmd *cobra.Command, env *apiEnv, refresh func()) func() {
	path := env.cfg.ConfigPath()
	if path == "" {
		return func() {}
	}
	if _, err := os.Stat(path); err != nil {
		logger.Debug().Ctx(ctx).Str("path", path).Msg("no configuration file to watch")
		return func() {}
	}

	tokenFromFlag, _ := cmd.Flags().GetString("token")
	w, err := config.NewWatcher(path, func(c *config.Config) {
		if tokenFromFlag == "" && os.Getenv(auth.EnvToken) == "" {
			if token, loadErr := auth.LoadToken(c.Auth.TokenFile); loadErr == nil {
				env.client.Session().SetToken(token)
			}
		}
		if c.Workspace.Default != env.ambient.Current() {
			logger.Info().Ctx(ctx).
				Str("from", env.ambient.Current()).
				Str("to", c.Workspace.Default).
				Msg("ambient workspace changed")
			env.ambient.Set(c.Workspace.Default)
		}
		refresh()
	})
	if err != nil {
		logger.Warn().Ctx(ctx).Err(err).Msg("config watch unavailable")
		return func() {}
	}
	if err = w.Start(ctx); err != nil {
		logger.Warn().Ctx(ctx).Err(err).Msg("config watch unavailable")
		w.Stop()
		return func() {}
	}
	return w.Stop
}
