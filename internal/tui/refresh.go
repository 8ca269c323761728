package tui

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// refreshParser accepts standard five-field expressions and descriptors such
// as "@every 1m" or "@hourly".
//
//nolint:gochecknoglobals // Parser is stateless.
var refreshParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateRefresh checks a refresh schedule. An empty schedule disables refresh.
func ValidateRefresh(sched string) error {
	if strings.TrimSpace(sched) == "" {
		return nil
	}
	if _, err := refreshParser.Parse(sched); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", sched, err)
	}
	return nil
}

// Refresher runs refresh callbacks on a cron schedule. A dashboard registers
// its hooks' ExecuteNow so data is refetched periodically; a failed refresh
// stays visible until the next run or a manual retry.
type Refresher struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

// NewRefresher schedules fns on sched. It returns nil, nil for an empty sched.
func NewRefresher(sched string, logger zerolog.Logger, fns ...func()) (*Refresher, error) {
	if strings.TrimSpace(sched) == "" {
		return nil, nil //nolint:nilnil // Refresh disabled.
	}
	c := cron.New(cron.WithParser(refreshParser))
	r := &Refresher{cron: c, logger: logger}
	for _, fn := range fns {
		if _, err := c.AddFunc(sched, r.wrap(sched, fn)); err != nil {
			return nil, fmt.Errorf("invalid refresh schedule %q: %w", sched, err)
		}
	}
	return r, nil
}

func (r *Refresher) wrap(sched string, fn func()) func() {
	return func() {
		r.logger.Debug().Str("schedule", sched).Msg("periodic refresh")
		fn()
	}
}

// Start begins running the schedule. It is a no-op on a nil Refresher.
func (r *Refresher) Start() {
	if r == nil {
		return
	}
	r.cron.Start()
}

// Stop halts the schedule and waits for running callbacks. It is a no-op on a nil Refresher.
func (r *Refresher) Stop() {
	if r == nil {
		return
	}
	<-r.cron.Stop().Done()
}
