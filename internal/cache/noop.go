package cache

import (
	"context"

	"github.com/quillworks/preflight/internal/hook"
)

// Noop is the backend used when caching is disabled: every lookup misses,
// stores are dropped, but request counters still advance so stats stay
// meaningful.
type Noop struct {
	counters
}

// compile-time interface check
var _ Cache = (*Noop)(nil)

// NewNoop creates a disabled cache.
func NewNoop() *Noop {
	return &Noop{}
}

// Get always misses.
func (n *Noop) Get(context.Context, string) (hook.Result, bool) {
	n.misses.Add(1)
	return hook.Result{}, false
}

// Set drops the result.
func (n *Noop) Set(context.Context, string, hook.Result) {}

// Stats returns a snapshot with CachingEnabled=false.
func (n *Noop) Stats() Stats {
	return n.snapshot("none", false, 0)
}

// Close is a no-op.
func (n *Noop) Close() error {
	return nil
}
