package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/quillworks/preflight/internal/config"
	"github.com/quillworks/preflight/internal/errors"
	"github.com/quillworks/preflight/internal/hook"
)

func makeResult(id string, status hook.Status) hook.Result {
	return hook.Result{
		ID:       id,
		Name:     id,
		Status:   status,
		Duration: 250 * time.Millisecond,
		Stage:    hook.StageFast,
	}
}

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory(DefaultMemoryEntries, time.Hour)
	defer m.Close()
	ctx := context.Background()

	want := makeResult("gofmt-check", hook.StatusPassed)
	m.Set(ctx, "key-1", want)

	got, ok := m.Get(ctx, "key-1")
	if !ok {
		t.Fatal("expected a cache hit after Set")
	}
	if got.ID != want.ID || got.Status != want.Status || got.Duration != want.Duration {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestMemory_Miss(t *testing.T) {
	m := NewMemory(DefaultMemoryEntries, time.Hour)
	defer m.Close()

	if _, ok := m.Get(context.Background(), "absent"); ok {
		t.Error("expected a miss for an absent key")
	}

	stats := m.Stats()
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Hits != 0 {
		t.Errorf("Hits = %d, want 0", stats.Hits)
	}
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory(DefaultMemoryEntries, 50*time.Millisecond)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "key-1", makeResult("go-vet", hook.StatusPassed))

	if _, ok := m.Get(ctx, "key-1"); !ok {
		t.Fatal("entry should be readable before the TTL elapses")
	}

	time.Sleep(120 * time.Millisecond)

	if _, ok := m.Get(ctx, "key-1"); ok {
		t.Error("entry should have expired")
	}
}

func TestMemory_SizeEviction(t *testing.T) {
	m := NewMemory(2, time.Hour)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "a", makeResult("a", hook.StatusPassed))
	m.Set(ctx, "b", makeResult("b", hook.StatusPassed))
	m.Set(ctx, "c", makeResult("c", hook.StatusPassed))

	stats := m.Stats()
	if stats.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", stats.Evictions)
	}
	if stats.Entries != 2 {
		t.Errorf("Entries = %d, want 2", stats.Entries)
	}

	// The oldest key was evicted.
	if _, ok := m.Get(ctx, "a"); ok {
		t.Error("oldest entry should have been evicted")
	}
}

func TestMemory_StatsInvariant(t *testing.T) {
	m := NewMemory(DefaultMemoryEntries, time.Hour)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "present", makeResult("present", hook.StatusPassed))

	for i := 0; i < 7; i++ {
		m.Get(ctx, "present")
	}
	for i := 0; i < 3; i++ {
		m.Get(ctx, "absent")
	}

	stats := m.Stats()
	if stats.Hits != 7 {
		t.Errorf("Hits = %d, want 7", stats.Hits)
	}
	if stats.Misses != 3 {
		t.Errorf("Misses = %d, want 3", stats.Misses)
	}
	if stats.TotalRequests != stats.Hits+stats.Misses {
		t.Errorf("TotalRequests = %d, want Hits+Misses = %d", stats.TotalRequests, stats.Hits+stats.Misses)
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := NewMemory(DefaultMemoryEntries, time.Hour)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "shared", makeResult("shared", hook.StatusPassed))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Go(func() {
			for j := 0; j < 100; j++ {
				m.Get(ctx, "shared")
				m.Get(ctx, "absent")
			}
		})
	}
	wg.Wait()

	stats := m.Stats()
	if stats.TotalRequests != 2000 {
		t.Errorf("TotalRequests = %d, want 2000", stats.TotalRequests)
	}
	if stats.TotalRequests != stats.Hits+stats.Misses {
		t.Errorf("TotalRequests = %d, want Hits+Misses = %d", stats.TotalRequests, stats.Hits+stats.Misses)
	}
}

func TestNoop(t *testing.T) {
	n := NewNoop()
	defer n.Close()
	ctx := context.Background()

	// Stores are dropped: a Get after Set still misses.
	n.Set(ctx, "key-1", makeResult("gofmt-check", hook.StatusPassed))
	if _, ok := n.Get(ctx, "key-1"); ok {
		t.Error("noop cache should never hit")
	}

	stats := n.Stats()
	if stats.CachingEnabled {
		t.Error("noop cache should report caching disabled")
	}
	if stats.Misses != 1 || stats.TotalRequests != 1 {
		t.Errorf("stats = %+v, want 1 miss / 1 request", stats)
	}
	if stats.Backend != "none" {
		t.Errorf("Backend = %q, want %q", stats.Backend, "none")
	}
}

func TestStats_HitRate(t *testing.T) {
	tests := []struct {
		name string
		s    Stats
		want float64
	}{
		{"no requests", Stats{}, 0},
		{"all hits", Stats{Hits: 4, TotalRequests: 4}, 1},
		{"half", Stats{Hits: 2, Misses: 2, TotalRequests: 4}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.HitRate(); got != tt.want {
				t.Errorf("HitRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("disabled yields noop", func(t *testing.T) {
		cfg := config.DefaultOrchestration()
		cfg.EnableCaching = false

		c, err := New(cfg, nil)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		defer c.Close()

		if _, ok := c.(*Noop); !ok {
			t.Errorf("New() = %T, want *Noop", c)
		}
	})

	t.Run("memory backend", func(t *testing.T) {
		cfg := config.DefaultOrchestration()

		c, err := New(cfg, nil)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		defer c.Close()

		if _, ok := c.(*Memory); !ok {
			t.Errorf("New() = %T, want *Memory", c)
		}
		if got := c.Stats().Backend; got != "memory" {
			t.Errorf("Backend = %q, want %q", got, "memory")
		}
	})

	t.Run("proxy backend", func(t *testing.T) {
		cfg := config.DefaultOrchestration()
		cfg.CacheBackend = config.BackendProxy

		c, err := New(cfg, nil)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		defer c.Close()

		if _, ok := c.(*Proxy); !ok {
			t.Errorf("New() = %T, want *Proxy", c)
		}
	})

	t.Run("unknown backend is a config error", func(t *testing.T) {
		cfg := config.DefaultOrchestration()
		cfg.CacheBackend = "disk"

		_, err := New(cfg, nil)
		if err == nil {
			t.Fatal("New() should fail for an unknown backend")
		}
		if !errors.Is(err, errors.ErrInvalidConfig) {
			t.Errorf("error should wrap ErrInvalidConfig, got %v", err)
		}
	})
}
