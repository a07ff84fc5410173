// Package executor runs the hooks of a strategy as subprocesses.
//
// This package provides the abstraction layer between scheduling and the
// actual invocation of quality tools. The orchestrator and manager depend
// on the Executor interface only; the concrete kind is chosen once through
// the factory and can be swapped at runtime.
package executor

import (
	"context"

	"github.com/quillworks/preflight/internal/hook"
	"github.com/quillworks/preflight/internal/logging"
)

// Executor defines the interface for executing a whole strategy.
type Executor interface {
	// ExecuteStrategy runs the strategy's hooks and returns one Result per
	// hook in definition order. Tool failures, timeouts, and unlaunchable
	// commands are Result values; the error is reserved for the run itself
	// being cut short (context cancellation).
	ExecuteStrategy(ctx context.Context, s *hook.Strategy) ([]hook.Result, error)

	// Kind identifies the executor variant.
	Kind() Kind
}

// Kind is a tagged executor variant.
type Kind string

const (
	// KindStandard runs every hook as a subprocess.
	KindStandard Kind = "standard"

	// KindLSPOptimized short-circuits hooks whose diagnostics an attached
	// language server already provides, and runs the rest as subprocesses.
	KindLSPOptimized Kind = "lsp_optimized"
)

// Config carries the settings shared by every executor kind.
type Config struct {
	// Dir is the project directory hooks run in. Empty means the process
	// working directory.
	Dir string

	// Quiet drops per-hook progress from the run log.
	Quiet bool

	// Verbose additionally logs each line of hook output.
	Verbose bool

	// ToolProxy prefixes each hook's argv with the wrapper command named
	// by the PREFLIGHT_TOOL_PROXY environment variable, so tool traffic
	// can be routed through a caching proxy. A no-op when unset.
	ToolProxy bool

	// Logger receives run logs. Nil means logging is discarded.
	Logger *logging.Logger
}

// NewFromKind builds an executor of the given kind. Unrecognized kinds
// build the standard executor.
func NewFromKind(kind Kind, cfg Config) Executor {
	if cfg.Logger == nil {
		cfg.Logger = logging.NopLogger()
	}
	switch kind {
	case KindLSPOptimized:
		return newLSPOptimized(cfg)
	default:
		return newSubprocess(cfg)
	}
}
