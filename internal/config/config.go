package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opengovern/frontend/internal/workspace"
)

// Defaults.
const (
	DefaultAPIURL         = "https://app.kaytu.io"
	DefaultTimeoutSeconds = 30
	DefaultFormat         = "table"
	DefaultPrecision      = 2
	DefaultCacheTTL       = 300
	DefaultCacheMaxSizeMB = 50
	DefaultRefresh        = "@every 1m"

	configFileName = "config.yaml"
	tokenFileName  = "token"
)

// Sentinel errors.
var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrUnknownKey    = errors.New("unknown configuration key")
)

// validFormats lists the accepted output formats.
//
//nolint:gochecknoglobals // Read-only lookup table.
var validFormats = []string{"table", "json", "ndjson"}

// Config is the ogdash configuration file.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Auth      AuthConfig      `yaml:"auth"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
	Cache     CacheConfig     `yaml:"cache"`
	Dashboard DashboardConfig `yaml:"dashboard"`

	configPath string
}

// APIConfig addresses the dashboard API.
type APIConfig struct {
	BaseURL          string `yaml:"base_url"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
	MinServerVersion string `yaml:"min_server_version,omitempty"`
}

// WorkspaceConfig holds the ambient workspace used when no --workspace is given.
type WorkspaceConfig struct {
	Default string `yaml:"default,omitempty"`
}

// AuthConfig locates the stored credential.
type AuthConfig struct {
	TokenFile string `yaml:"token_file,omitempty"`
}

// OutputConfig controls CLI rendering.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Precision     int    `yaml:"precision"`
}

// LoggingConfig controls the zerolog logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	Directory  string `yaml:"directory,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
}

// DashboardConfig controls the interactive dashboards.
type DashboardConfig struct {
	Refresh     string `yaml:"refresh,omitempty"`
	WatchConfig bool   `yaml:"watch_config"`
}

// Defaults returns a configuration populated with default values and no file path.
func Defaults() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        DefaultAPIURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Output: OutputConfig{
			DefaultFormat: DefaultFormat,
			Precision:     DefaultPrecision,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: DefaultCacheTTL,
			MaxSizeMB:  DefaultCacheMaxSizeMB,
		},
		Dashboard: DashboardConfig{
			WatchConfig: true,
		},
	}
}

// New returns the configuration from ~/.ogdash/config.yaml with environment
// overrides applied. A missing or unreadable file yields defaults.
func New() *Config {
	cfg := Defaults()

	dir, err := GetConfigDir()
	if err == nil {
		cfg.configPath = filepath.Join(dir, configFileName)
		cfg.Logging.File = filepath.Join(dir, "logs", "ogdash.log")
		cfg.Auth.TokenFile = filepath.Join(dir, tokenFileName)
		cfg.Cache.Directory = filepath.Join(dir, "cache")
		_ = cfg.Load()
	}

	cfg.ApplyEnvOverrides()
	return cfg
}

// ConfigPath returns the file the configuration loads from and saves to.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath points the configuration at another file.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Load reads the configuration file over the current values.
func (c *Config) Load() error {
	if c.configPath == "" {
		return errors.New("config path not set")
	}
	data, err := os.ReadFile(c.configPath)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", c.configPath, err)
	}
	return nil
}

// Save writes the configuration to its file, creating the directory if needed.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config path not set")
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for semantic errors.
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url must be set"))
	} else if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("api.base_url %q must be an http(s) URL", c.API.BaseURL))
	}
	if c.API.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("api.timeout_seconds must not be negative"))
	}
	if c.Workspace.Default != "" {
		if err := workspace.Validate(c.Workspace.Default); err != nil {
			errs = append(errs, fmt.Errorf("workspace.default: %w", err))
		}
	}
	if !slices.Contains(validFormats, c.Output.DefaultFormat) {
		errs = append(errs, fmt.Errorf("output.default_format %q must be one of %s",
			c.Output.DefaultFormat, strings.Join(validFormats, ", ")))
	}
	if c.Output.Precision < 0 || c.Output.Precision > 10 {
		errs = append(errs, errors.New("output.precision must be between 0 and 10"))
	}
	if c.Cache.TTLSeconds < 0 {
		errs = append(errs, errors.New("cache.ttl_seconds must not be negative"))
	}
	if c.Cache.MaxSizeMB < 0 {
		errs = append(errs, errors.New("cache.max_size_mb must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
