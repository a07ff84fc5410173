// Package cache stores hook results keyed by input fingerprint so unchanged
// work is not re-executed. Backends share one interface: an in-process LRU
// for the common case, a Redis-backed proxy for shared stores, and a no-op
// used when caching is disabled.
package cache

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/quillworks/preflight/internal/config"
	"github.com/quillworks/preflight/internal/errors"
	"github.com/quillworks/preflight/internal/hook"
	"github.com/quillworks/preflight/internal/logging"
)

// Cache is the result store consulted before each hook execution.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached result for key. A miss, an expired entry, and
	// an unreachable backend all return ok=false.
	Get(ctx context.Context, key string) (hook.Result, bool)

	// Set stores a result under key. Entries expire after the backend's TTL.
	Set(ctx context.Context, key string, res hook.Result)

	// Stats returns a snapshot of the cache counters.
	Stats() Stats

	// Close releases backend resources.
	Close() error
}

// Stats is a point-in-time snapshot of cache activity.
// TotalRequests always equals Hits + Misses.
type Stats struct {
	Hits           uint64 `json:"cache_hits"`
	Misses         uint64 `json:"cache_misses"`
	TotalRequests  uint64 `json:"total_requests"`
	Evictions      uint64 `json:"evictions"`
	Entries        int    `json:"entries"` // local entry count; 0 when the backend does not track it
	CachingEnabled bool   `json:"caching_enabled"`
	Backend        string `json:"backend"`
}

// HitRate returns the fraction of requests served from cache, 0 when no
// requests have been made.
func (s Stats) HitRate() float64 {
	if s.TotalRequests == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.TotalRequests)
}

// counters tracks cache activity atomically. Embedded by every backend.
type counters struct {
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// snapshot builds a Stats value whose TotalRequests is derived from the
// loaded counters, so the hits+misses invariant holds for every snapshot.
func (c *counters) snapshot(backend string, enabled bool, entries int) Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	return Stats{
		Hits:           hits,
		Misses:         misses,
		TotalRequests:  hits + misses,
		Evictions:      c.evictions.Load(),
		Entries:        entries,
		CachingEnabled: enabled,
		Backend:        backend,
	}
}

// DefaultMemoryEntries bounds the in-process LRU.
const DefaultMemoryEntries = 512

// New builds the cache backend selected by cfg. Disabled caching yields the
// no-op backend regardless of the configured backend name.
func New(cfg config.Orchestration, logger *logging.Logger) (Cache, error) {
	if !cfg.EnableCaching {
		return NewNoop(), nil
	}

	switch cfg.CacheBackend {
	case config.BackendMemory:
		return NewMemory(DefaultMemoryEntries, cfg.CacheTTL()), nil
	case config.BackendProxy:
		return NewProxy(ProxyOptions{TTL: cfg.CacheTTL(), Logger: logger}), nil
	default:
		return nil, errors.NewConfigError(
			fmt.Sprintf("must be one of: %v", config.ValidBackends()), errors.ErrInvalidConfig).
			WithField("orchestration.cache_backend").WithValue(cfg.CacheBackend)
	}
}
