package cache

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// TTL bounds and defaults.
const (
	// DefaultTTLSeconds matches the dashboard's typical refresh cadence.
	DefaultTTLSeconds = 300

	// MinTTLSeconds is the smallest TTL accepted from users.
	MinTTLSeconds = 5

	// MaxTTLSeconds is one day.
	MaxTTLSeconds = 86400

	// DefaultCacheMaxSizeMB is the default size limit.
	DefaultCacheMaxSizeMB = 50

	minutesPerHour = 60
	hoursPerDay    = 24

	EnvTTLSeconds   = "OGDASH_CACHE_TTL_SECONDS"
	EnvCacheEnabled = "OGDASH_CACHE_ENABLED"
	EnvCacheDir     = "OGDASH_CACHE_DIR"
	EnvCacheMaxSize = "OGDASH_CACHE_MAX_SIZE_MB"
)

// ErrInvalidTTL is returned for a TTL outside the accepted range.
var ErrInvalidTTL = fmt.Errorf("TTL must be between %d and %d seconds", MinTTLSeconds, MaxTTLSeconds)

// Settings are the effective cache parameters after environment overrides.
type Settings struct {
	Enabled    bool
	Directory  string
	TTLSeconds int
	MaxSizeMB  int
}

// ApplyEnv overlays OGDASH_CACHE_* variables onto s. Invalid values are ignored.
func (s Settings) ApplyEnv() Settings {
	if v := os.Getenv(EnvCacheEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			s.Enabled = enabled
		}
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		s.Directory = v
	}
	if v := os.Getenv(EnvTTLSeconds); v != "" {
		if ttl, err := ParseTTL(v); err == nil {
			s.TTLSeconds = ttl
		}
	}
	if v := os.Getenv(EnvCacheMaxSize); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size >= 0 {
			s.MaxSizeMB = size
		}
	}
	if s.TTLSeconds <= 0 {
		s.TTLSeconds = DefaultTTLSeconds
	}
	return s
}

// Open creates the store described by s.
func (s Settings) Open() (*FileStore, error) {
	return NewFileStore(s.Directory, s.Enabled, s.TTLSeconds, s.MaxSizeMB)
}

// FormatDuration formats a duration compactly, e.g. "45s", "5m", "1h30m", "2d".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	if d < hoursPerDay*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % minutesPerHour
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if hours == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd%dh", days, hours)
}

// ParseTTL parses integer seconds ("300") or a Go duration ("5m", "1h30m").
func ParseTTL(s string) (int, error) {
	seconds, err := strconv.Atoi(s)
	if err != nil {
		d, durErr := time.ParseDuration(s)
		if durErr != nil {
			return 0, fmt.Errorf("invalid TTL format: %w", durErr)
		}
		seconds = int(d.Seconds())
	}

	if seconds < MinTTLSeconds || seconds > MaxTTLSeconds {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidTTL, seconds)
	}
	return seconds, nil
}
