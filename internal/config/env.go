package config

import (
	"os"
	"strconv"
)

// Environment variables recognised by ApplyEnvOverrides.
const (
	EnvHome       = "OGDASH_HOME"
	EnvAPIURL     = "OGDASH_API_URL"
	EnvWorkspace  = "OGDASH_WORKSPACE"
	EnvTimeout    = "OGDASH_TIMEOUT"
	EnvOutput     = "OGDASH_OUTPUT"
	EnvLogLevel   = "OGDASH_LOG_LEVEL"
	EnvLogFormat  = "OGDASH_LOG_FORMAT"
	EnvProjectDir = "OGDASH_PROJECT_DIR"
)

// ApplyEnvOverrides overlays OGDASH_* environment variables. Unparseable
// numeric values are ignored.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvWorkspace); v != "" {
		c.Workspace.Default = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSeconds = secs
		}
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Output.DefaultFormat = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
}
