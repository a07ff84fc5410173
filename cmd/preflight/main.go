// Preflight runs a project's quality-check hooks as fast or comprehensive
// strategies, scheduling them in dependency waves with result caching.
//
// Usage:
//
//	# Run both strategies
//	preflight run
//
//	# Re-run the fast strategy on file changes
//	preflight run --watch
//
// Configuration is read from ~/.config/preflight/config.yaml and the
// project's .preflight.yaml, with PREFLIGHT_* environment overrides.
package main

import (
	"os"

	"github.com/quillworks/preflight/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
