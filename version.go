package hyzhttp

import (
	"fmt"
	"runtime"
)

// Build metadata. Version tracks tagged releases; GitCommit and BuildDate are
// meant to be stamped with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/zenghongyao/hyzhttp.GitCommit=$(git rev-parse --short HEAD)"
var (
	Version   = "v0.3.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = runtime.Version()
)

// GetVersion returns a single-line description of the build.
func GetVersion() string {
	return fmt.Sprintf("hyzhttp %s (commit: %s, built: %s, go: %s)",
		Version, GitCommit, BuildDate, GoVersion)
}

// GetVersionInfo returns the same metadata as key/value pairs, handy for
// structured startup logs.
func GetVersionInfo() map[string]string {
	return map[string]string{
		"version":    Version,
		"commit":     GitCommit,
		"build_date": BuildDate,
		"go_version": GoVersion,
	}
}
