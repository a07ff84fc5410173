package executor

import (
	"context"

	"github.com/quillworks/preflight/internal/hook"
)

// lspCovered lists hook IDs whose diagnostics an attached language server
// already provides. Those hooks pass without running when LSP optimization
// is enabled.
func lspCovered() map[string]bool {
	return map[string]bool{
		"go-vet":    true,
		"typecheck": true,
	}
}

// LSPOptimized short-circuits language-server-covered hooks and delegates
// everything else to the standard subprocess core.
type LSPOptimized struct {
	core    *Subprocess
	covered map[string]bool
}

var _ Executor = (*LSPOptimized)(nil)

func newLSPOptimized(cfg Config) *LSPOptimized {
	return &LSPOptimized{
		core:    newSubprocess(cfg),
		covered: lspCovered(),
	}
}

// Kind returns KindLSPOptimized.
func (e *LSPOptimized) Kind() Kind { return KindLSPOptimized }

// ExecuteStrategy runs the strategy like the standard executor, except
// that covered hooks are served as instantly passed results.
func (e *LSPOptimized) ExecuteStrategy(ctx context.Context, s *hook.Strategy) ([]hook.Result, error) {
	results := make([]hook.Result, 0, len(s.Hooks))
	for _, def := range s.Hooks {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if e.covered[def.ID] {
			if !e.core.quiet {
				e.core.logger.WithHook(def.ID).Info("hook served by language server")
			}
			results = append(results, hook.Result{
				ID:             def.ID,
				Name:           def.DisplayName(),
				Status:         hook.StatusPassed,
				Stage:          def.Stage,
				FilesProcessed: e.core.countFiles(def),
			})
			continue
		}

		results = append(results, e.core.runHook(ctx, def))
	}
	return results, ctx.Err()
}
