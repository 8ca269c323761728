// Package version reports the build version of ogdash.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time with -ldflags "-X github.com/opengovern/frontend/pkg/version.version=...".
//
//nolint:gochecknoglobals // Populated by the linker.
var (
	version   = ""
	gitCommit = ""
	buildDate = ""
)

const devVersion = "v0.0.0-dev"

// GetVersion returns the release version, the module version recorded by
// go install, or a development placeholder.
func GetVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return devVersion
}

// GetGitCommit returns the commit the binary was built from, if known.
func GetGitCommit() string {
	if gitCommit != "" {
		return gitCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}

// GetBuildDate returns the build timestamp, if known.
func GetBuildDate() string {
	if buildDate != "" {
		return buildDate
	}
	return "unknown"
}

// String renders the full version line.
func String() string {
	return fmt.Sprintf("ogdash %s (commit %s, built %s, %s/%s)",
		GetVersion(), GetGitCommit(), GetBuildDate(), runtime.GOOS, runtime.GOARCH)
}
