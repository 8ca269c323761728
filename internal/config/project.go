package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/opengovern/frontend/internal/logging"
)

// ProjectDirName is the per-project configuration directory.
const ProjectDirName = ".ogdash"

// resolvedProjectDir is the project directory chosen at startup for this invocation.
var (
	resolvedProjectDir   string       //nolint:gochecknoglobals // Set once at startup, read by commands
	resolvedProjectDirMu sync.RWMutex //nolint:gochecknoglobals // Protects resolvedProjectDir
)

// SetResolvedProjectDir stores the project directory resolved at startup.
func SetResolvedProjectDir(dir string) {
	resolvedProjectDirMu.Lock()
	defer resolvedProjectDirMu.Unlock()
	resolvedProjectDir = dir
}

// GetResolvedProjectDir returns the project directory resolved at startup, or "".
func GetResolvedProjectDir() string {
	resolvedProjectDirMu.RLock()
	defer resolvedProjectDirMu.RUnlock()
	return resolvedProjectDir
}

// ResolveProjectDir determines the project-local .ogdash directory. It checks,
// in order, flagValue (--project-dir), OGDASH_PROJECT_DIR, and a walk up from
// startDir looking for a .ogdash/config.yaml that is not the global one.
// Returns an absolute path, or "" when no project is found.
func ResolveProjectDir(ctx context.Context, flagValue, startDir string) string {
	if flagValue != "" {
		return toAbsProjectDir(ctx, flagValue)
	}

	if envDir := os.Getenv(EnvProjectDir); envDir != "" {
		return toAbsProjectDir(ctx, envDir)
	}

	if startDir == "" {
		return ""
	}
	global, _ := GetConfigDir()
	dir := toAbsProjectDir(ctx, startDir)
	for {
		if dir != global {
			if _, err := os.Stat(filepath.Join(dir, configFileName)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(filepath.Dir(dir))
		if parent == filepath.Dir(dir) {
			return ""
		}
		dir = filepath.Join(parent, ProjectDirName)
	}
}

// NewWithProjectDir creates a Config by loading global config then
// shallow-merging project-local config on top. If projectDir is empty,
// behaves identically to New().
func NewWithProjectDir(ctx context.Context, projectDir string) *Config {
	cfg := New()

	if projectDir == "" {
		return cfg
	}

	overlayPath := filepath.Join(projectDir, configFileName)
	if _, err := os.Stat(overlayPath); err != nil {
		return cfg
	}

	merged := New()
	if err := ShallowMergeYAML(merged, overlayPath); err != nil {
		logging.FromContext(ctx).Warn().
			Str("component", "config").
			Str("operation", "merge_project_config").
			Err(err).
			Str("overlay_path", overlayPath).
			Msg("failed to merge project config, using global defaults")
		return cfg
	}
	inheritPaths(merged, cfg)
	// Environment still wins over project files.
	merged.ApplyEnvOverrides()
	return merged
}

// inheritPaths fills file locations a project section left empty from global.
func inheritPaths(merged, global *Config) {
	if merged.Auth.TokenFile == "" {
		merged.Auth.TokenFile = global.Auth.TokenFile
	}
	if merged.Cache.Directory == "" {
		merged.Cache.Directory = global.Cache.Directory
	}
	if merged.Logging.File == "" {
		merged.Logging.File = global.Logging.File
	}
}

// toAbsProjectDir converts dir to an absolute path ending in .ogdash.
func toAbsProjectDir(ctx context.Context, dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		logging.FromContext(ctx).Warn().
			Str("component", "config").
			Err(err).
			Str("dir", dir).
			Msg("failed to resolve absolute path for project directory")
		abs = dir
	}

	if filepath.Base(abs) == ProjectDirName {
		return abs
	}

	return filepath.Join(abs, ProjectDirName)
}
