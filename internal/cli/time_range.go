package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/opengovern/frontend/internal/api"
)

const (
	// defaultLookback is the window used when --from is not given.
	defaultLookback = 30 * 24 * time.Hour

	// maxPastYears bounds how far back --from may reach.
	maxPastYears = 5

	hoursPerDay = 24
)

// now is the clock used for relative dates.
var now = time.Now //nolint:gochecknoglobals // Replaced in tests.

// rangeFlags holds --from and --to.
type rangeFlags struct {
	from string
	to   string
}

func (r *rangeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.from, "from", "", "start: YYYY-MM-DD, RFC3339, or a lookback like 30d or 12h (default 30d)")
	cmd.Flags().StringVar(&r.to, "to", "", "end: YYYY-MM-DD, RFC3339, or a lookback (default now)")
}

// resolve returns the flags as an API time range.
func (r rangeFlags) resolve() (api.TimeRange, error) {
	from, to, err := ParseTimeRange(r.from, r.to)
	if err != nil {
		return api.TimeRange{}, err
	}
	return api.TimeRange{StartTime: from.Unix(), EndTime: to.Unix()}, nil
}

// ParseTimeRange parses --from and --to. Empty values default to the last 30
// days ending now.
func ParseTimeRange(fromStr, toStr string) (time.Time, time.Time, error) {
	current := now()

	to := current
	if toStr != "" {
		parsed, err := ParseTime(toStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing 'to' date: %w", err)
		}
		to = parsed
	}

	from := to.Add(-defaultLookback)
	if fromStr != "" {
		parsed, err := ParseTime(fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing 'from' date: %w", err)
		}
		from = parsed
	}

	if !to.After(from) {
		return time.Time{}, time.Time{}, errors.New("'to' date must be after 'from' date")
	}
	return from, to, nil
}

// ParseTime parses a date as YYYY-MM-DD, RFC3339, or a lookback from now such
// as "7d" or "36h". Dates in the future or more than five years back are rejected.
func ParseTime(str string) (time.Time, error) {
	current := now()
	str = strings.TrimSpace(str)

	parsed, err := parseLookback(str, current)
	if err != nil {
		layouts := []string{time.DateOnly, time.RFC3339}
		for _, layout := range layouts {
			if parsed, err = time.Parse(layout, str); err == nil {
				break
			}
		}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date: %s (use YYYY-MM-DD, RFC3339, or a lookback like 30d)", str)
	}

	if parsed.After(current) {
		return time.Time{}, fmt.Errorf("date cannot be in the future: %s", str)
	}
	if parsed.Before(current.AddDate(-maxPastYears, 0, 0)) {
		return time.Time{}, fmt.Errorf("date too far in past: %s (max %d years ago)", str, maxPastYears)
	}
	return parsed, nil
}

// parseLookback parses "Nd" or a Go duration and subtracts it from current.
func parseLookback(str string, current time.Time) (time.Time, error) {
	if days, ok := strings.CutSuffix(str, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("invalid day count %q", str)
		}
		return current.Add(-time.Duration(n) * hoursPerDay * time.Hour), nil
	}
	d, err := time.ParseDuration(str)
	if err != nil || d < 0 {
		return time.Time{}, fmt.Errorf("invalid lookback %q", str)
	}
	return current.Add(-d), nil
}
