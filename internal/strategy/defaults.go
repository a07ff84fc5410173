package strategy

import (
	"time"

	"github.com/quillworks/preflight/internal/hook"
)

// Defaults returns the built-in hooks for a stage. They apply when the
// project file declares no hooks for that stage; declaring any hook for a
// stage replaces its defaults entirely.
func Defaults(stage hook.Stage) []hook.Definition {
	switch stage {
	case hook.StageFast:
		return fastDefaults()
	case hook.StageComprehensive:
		return comprehensiveDefaults()
	default:
		return nil
	}
}

// fastDefaults are quick formatting-level checks, cheap enough to run on
// every save.
func fastDefaults() []hook.Definition {
	return []hook.Definition{
		{
			ID:      "gofmt-check",
			Name:    "gofmt",
			Command: `sh -c 'test -z "$(gofmt -l .)"'`,
			Stage:   hook.StageFast,
			Files:   "*.go",
		},
		{
			ID:      "go-mod-tidy-check",
			Command: "go mod tidy -diff",
			Stage:   hook.StageFast,
			Files:   "go.*",
		},
		{
			ID:      "line-endings",
			Command: `sh -c "! grep -rqIP '\r' --exclude-dir=.git ."`,
			Stage:   hook.StageFast,
		},
	}
}

// comprehensiveDefaults are deep analysis checks: the analyzers run in the
// first wave, tests after vet.
func comprehensiveDefaults() []hook.Definition {
	return []hook.Definition{
		{
			ID:      "go-vet",
			Command: "go vet ./...",
			Stage:   hook.StageComprehensive,
			Files:   "*.go",
		},
		{
			ID:         "staticcheck",
			Command:    "staticcheck ./...",
			Stage:      hook.StageComprehensive,
			ConfigPath: "staticcheck.conf",
			Files:      "*.go",
		},
		{
			ID:        "go-test",
			Command:   "go test ./...",
			Timeout:   5 * time.Minute,
			DependsOn: []string{"go-vet"},
			Stage:     hook.StageComprehensive,
			Files:     "*.go",
		},
		{
			ID:      "govulncheck",
			Command: "govulncheck ./...",
			Timeout: 2 * time.Minute,
			Stage:   hook.StageComprehensive,
			Files:   "go.*",
		},
	}
}
