package cli

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/opengovern/frontend/internal/config"
	"github.com/opengovern/frontend/internal/engine/cache"
)

// cacheStatsReport is the JSON form of "cache stats".
type cacheStatsReport struct {
	Enabled     bool           `json:"enabled"`
	Directory   string         `json:"directory"`
	TTL         string         `json:"ttl"`
	Entries     int            `json:"entries"`
	Expired     int            `json:"expired"`
	Bytes       int64          `json:"bytes"`
	Oldest      *time.Time     `json:"oldest,omitempty"`
	Newest      *time.Time     `json:"newest,omitempty"`
	ByWorkspace map[string]int `json:"byWorkspace,omitempty"`
}

// openManagedCache opens the cache directory for inspection even when
// response caching is disabled.
func openManagedCache() (*cache.FileStore, bool, error) {
	cfg := config.GetGlobalConfig()
	settings := cache.Settings{
		Enabled:    cfg.Cache.Enabled,
		Directory:  cfg.Cache.Directory,
		TTLSeconds: cfg.Cache.TTLSeconds,
		MaxSizeMB:  cfg.Cache.MaxSizeMB,
	}.ApplyEnv()
	enabled := settings.Enabled
	settings.Enabled = true

	store, err := settings.Open()
	if err != nil {
		return nil, false, fmt.Errorf("opening response cache: %w", err)
	}
	return store, enabled, nil
}

// NewCacheStatsCmd creates the "cache stats" command.
func NewCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show response cache usage",
		RunE:  runCacheStats,
	}
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	store, enabled, err := openManagedCache()
	if err != nil {
		return err
	}

	stats, err := store.Stats()
	if err != nil {
		return fmt.Errorf("reading cache stats: %w", err)
	}

	report := cacheStatsReport{
		Enabled:     enabled,
		Directory:   store.GetDirectory(),
		TTL:         cache.FormatDuration(store.GetTTL()),
		Entries:     stats.Entries,
		Expired:     stats.Expired,
		Bytes:       stats.Bytes,
		ByWorkspace: stats.ByWorkspace,
	}
	if !stats.Oldest.IsZero() {
		report.Oldest, report.Newest = &stats.Oldest, &stats.Newest
	}

	return render(cmd, report, []cacheStatsReport{report}, func(w *tabwriter.Writer, p *message.Printer) error {
		fmt.Fprintf(w, "Enabled\t%t\n", report.Enabled)
		fmt.Fprintf(w, "Directory\t%s\n", report.Directory)
		fmt.Fprintf(w, "TTL\t%s\n", report.TTL)
		fmt.Fprintf(w, "Entries\t%s (%s expired)\n", formatCount(p, report.Entries), formatCount(p, report.Expired))
		fmt.Fprintf(w, "Size\t%s KB\n", p.Sprint(report.Bytes/1024)) //nolint:mnd // bytes per KB
		if report.Oldest != nil {
			fmt.Fprintf(w, "Oldest\t%s ago\n", cache.FormatDuration(time.Since(*report.Oldest)))
			fmt.Fprintf(w, "Newest\t%s ago\n", cache.FormatDuration(time.Since(*report.Newest)))
		}
		for _, ws := range slices.Sorted(maps.Keys(report.ByWorkspace)) {
			fmt.Fprintf(w, "  %s\t%s entries\n", orDash(ws), formatCount(p, report.ByWorkspace[ws]))
		}
		return nil
	})
}

// NewCacheClearCmd creates the "cache clear" command.
func NewCacheClearCmd() *cobra.Command {
	var (
		expiredOnly bool
		yes         bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached responses",
		Long: `Remove cached responses. With --workspace only that workspace's entries are
removed; --expired removes only entries past their TTL. Clearing everything
asks for confirmation on a terminal unless --yes is given.`,
		Example: `  # Drop everything
  ogdash cache clear --yes

  # Drop one workspace
  ogdash cache clear --workspace acme

  # Housekeeping
  ogdash cache clear --expired`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheClear(cmd, expiredOnly, yes)
		},
	}

	cmd.Flags().BoolVar(&expiredOnly, "expired", false, "only remove expired entries")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func runCacheClear(cmd *cobra.Command, expiredOnly, yes bool) error {
	store, _, err := openManagedCache()
	if err != nil {
		return err
	}
	ws, _ := cmd.Flags().GetString("workspace")

	var removed int
	switch {
	case expiredOnly:
		removed, err = store.CleanupExpired()
	case ws != "":
		removed, err = store.ClearWorkspace(ws)
	default:
		if !yes && stdinIsTerminal() {
			if result := Confirm(cmd.OutOrStdout(), cmd.InOrStdin(), "Remove every cached response?"); !result.Accepted {
				cmd.Println("Nothing removed.")
				return nil
			}
		}
		removed, err = store.Clear()
	}
	if err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	logger.Info().Ctx(cmd.Context()).
		Int("removed", removed).
		Str("workspace", ws).
		Bool("expired_only", expiredOnly).
		Msg("cache cleared")
	cmd.Printf("Removed %d cached response(s).\n", removed)
	return nil
}
