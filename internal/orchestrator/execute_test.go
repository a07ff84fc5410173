package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/quillworks/preflight/internal/config"
	"github.com/quillworks/preflight/internal/errors"
	"github.com/quillworks/preflight/internal/event"
	"github.com/quillworks/preflight/internal/history"
	"github.com/quillworks/preflight/internal/hook"
)

func assertOrder(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestExecuteStrategy_EmptyStrategy(t *testing.T) {
	fake := newFakeExecutor()
	o := New(testConfig(), WithExecutor(fake))
	defer o.Close()

	for _, s := range []*hook.Strategy{nil, fastStrategy()} {
		results, err := o.ExecuteStrategy(context.Background(), s)
		if err != nil {
			t.Fatalf("ExecuteStrategy(%v) error = %v", s, err)
		}
		if len(results) != 0 {
			t.Errorf("ExecuteStrategy(%v) = %d results, want 0", s, len(results))
		}
	}
	if got := fake.callCount(); got != 0 {
		t.Errorf("executor calls = %d, want 0", got)
	}
}

func TestExecuteStrategy_LegacyDelegatesWholeStrategy(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = config.ModeLegacy
	cfg.EnableCaching = true

	fake := newFakeExecutor()
	o := New(cfg, WithExecutor(fake), WithDir(t.TempDir()))
	defer o.Close()

	results, err := o.ExecuteStrategy(context.Background(), fastStrategy(
		fastDef("a"), fastDef("b"), fastDef("c"),
	))
	if err != nil {
		t.Fatalf("ExecuteStrategy() error = %v", err)
	}

	if got := fake.callCount(); got != 1 {
		t.Fatalf("executor calls = %d, want 1 call with the whole strategy", got)
	}
	assertOrder(t, fake.calls[0], []string{"a", "b", "c"})
	assertOrder(t, resultIDs(results), []string{"a", "b", "c"})

	// Legacy mode never consults the cache.
	if stats := o.CacheStats(); stats.TotalRequests != 0 {
		t.Errorf("TotalRequests = %d, want 0", stats.TotalRequests)
	}
}

func TestExecuteStrategy_ResultsInDeclarationOrder(t *testing.T) {
	fake := newFakeExecutor()
	fake.delay = 10 * time.Millisecond

	o := New(testConfig(), WithExecutor(fake))
	defer o.Close()

	results, err := o.ExecuteStrategy(context.Background(), fastStrategy(
		fastDef("charlie"), fastDef("alpha"), fastDef("bravo"),
	))
	if err != nil {
		t.Fatalf("ExecuteStrategy() error = %v", err)
	}
	assertOrder(t, resultIDs(results), []string{"charlie", "alpha", "bravo"})
}

func TestExecuteStrategy_DependenciesRunInWaves(t *testing.T) {
	fake := newFakeExecutor()
	fake.delay = 10 * time.Millisecond

	o := New(testConfig(), WithExecutor(fake))
	defer o.Close()

	// Declared out of dependency order on purpose.
	results, err := o.ExecuteStrategy(context.Background(), fastStrategy(
		fastDef("c", "b"), fastDef("b", "a"), fastDef("a"),
	))
	if err != nil {
		t.Fatalf("ExecuteStrategy() error = %v", err)
	}

	assertOrder(t, fake.callOrder(), []string{"a", "b", "c"})
	assertOrder(t, resultIDs(results), []string{"c", "b", "a"})
}

func TestExecuteStrategy_WaveIsBarrier(t *testing.T) {
	fake := newFakeExecutor()
	fake.delay = 20 * time.Millisecond

	o := New(testConfig(), WithExecutor(fake))
	defer o.Close()

	_, err := o.ExecuteStrategy(context.Background(), fastStrategy(
		fastDef("a"), fastDef("b"), fastDef("c", "a"),
	))
	if err != nil {
		t.Fatalf("ExecuteStrategy() error = %v", err)
	}

	order := fake.callOrder()
	if len(order) != 3 {
		t.Fatalf("executor ran %d hooks, want 3", len(order))
	}
	// c waits for the whole first wave, not just for a.
	if order[2] != "c" {
		t.Errorf("last hook = %q, want %q (order %v)", order[2], "c", order)
	}
}

func TestExecuteStrategy_ParallelWithinWave(t *testing.T) {
	fake := newFakeExecutor()
	fake.delay = 100 * time.Millisecond

	cfg := testConfig()
	cfg.MaxParallelHooks = 4

	o := New(cfg, WithExecutor(fake))
	defer o.Close()

	start := time.Now()
	_, err := o.ExecuteStrategy(context.Background(), fastStrategy(
		fastDef("a"), fastDef("b"), fastDef("c"), fastDef("d"),
	))
	if err != nil {
		t.Fatalf("ExecuteStrategy() error = %v", err)
	}

	if elapsed := time.Since(start); elapsed > 250*time.Millisecond {
		t.Errorf("elapsed = %v, want well under 4x the per-hook time", elapsed)
	}
	if got := fake.maxConcurrent(); got != 4 {
		t.Errorf("max concurrent hooks = %d, want 4", got)
	}
}

func TestExecuteStrategy_BoundedByMaxParallelHooks(t *testing.T) {
	fake := newFakeExecutor()
	fake.delay = 50 * time.Millisecond

	cfg := testConfig()
	cfg.MaxParallelHooks = 2

	o := New(cfg, WithExecutor(fake))
	defer o.Close()

	start := time.Now()
	_, err := o.ExecuteStrategy(context.Background(), fastStrategy(
		fastDef("a"), fastDef("b"), fastDef("c"), fastDef("d"),
	))
	if err != nil {
		t.Fatalf("ExecuteStrategy() error = %v", err)
	}

	if got := fake.maxConcurrent(); got != 2 {
		t.Errorf("max concurrent hooks = %d, want 2", got)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("elapsed = %v, want at least two batches of work", elapsed)
	}
}

func TestExecuteStrategy_SequentialWhenLimitOne(t *testing.T) {
	fake := newFakeExecutor()
	fake.delay = 75 * time.Millisecond

	cfg := testConfig()
	cfg.MaxParallelHooks = 1

	o := New(cfg, WithExecutor(fake))
	defer o.Close()

	start := time.Now()
	_, err := o.ExecuteStrategy(context.Background(), fastStrategy(
		fastDef("a"), fastDef("b"), fastDef("c"), fastDef("d"),
	))
	if err != nil {
		t.Fatalf("ExecuteStrategy() error = %v", err)
	}

	if got := fake.maxConcurrent(); got != 1 {
		t.Errorf("max concurrent hooks = %d, want 1", got)
	}
	if elapsed := time.Since(start); elapsed < 280*time.Millisecond {
		t.Errorf("elapsed = %v, want the sum of per-hook times", elapsed)
	}
}

func TestExecuteStrategy_FailuresAreData(t *testing.T) {
	fake := newFakeExecutor()
	fake.status["lint"] = hook.StatusFailed

	o := New(testConfig(), WithExecutor(fake))
	defer o.Close()

	results, err := o.ExecuteStrategy(context.Background(), fastStrategy(
		fastDef("lint"), fastDef("fmt"),
	))
	if err != nil {
		t.Fatalf("ExecuteStrategy() error = %v, hook failures are results not errors", err)
	}
	if results[0].Status != hook.StatusFailed {
		t.Errorf("lint status = %v, want %v", results[0].Status, hook.StatusFailed)
	}
	if results[1].Status != hook.StatusPassed {
		t.Errorf("fmt status = %v, want %v", results[1].Status, hook.StatusPassed)
	}
}

func TestExecuteStrategy_ExecutorErrorBecomesErrorResult(t *testing.T) {
	fake := newFakeExecutor()
	fake.err = errors.New("executor exploded")

	o := New(testConfig(), WithExecutor(fake))
	defer o.Close()

	results, err := o.ExecuteStrategy(context.Background(), fastStrategy(fastDef("a")))
	if err != nil {
		t.Fatalf("ExecuteStrategy() error = %v, want per-hook error result", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Status != hook.StatusError {
		t.Errorf("status = %v, want %v", results[0].Status, hook.StatusError)
	}
	if len(results[0].IssuesFound) == 0 || results[0].IssuesFound[0] != "executor exploded" {
		t.Errorf("IssuesFound = %v, want the executor error", results[0].IssuesFound)
	}
}

func TestExecuteStrategy_GraphErrors(t *testing.T) {
	tests := []struct {
		name string
		defs []hook.Definition
		want error
	}{
		{
			name: "unknown dependency",
			defs: []hook.Definition{fastDef("a", "ghost")},
			want: errors.ErrUnknownDependency,
		},
		{
			name: "dependency cycle",
			defs: []hook.Definition{fastDef("a", "b"), fastDef("b", "a")},
			want: errors.ErrDependencyCycle,
		},
		{
			name: "duplicate hook id",
			defs: []hook.Definition{fastDef("a"), fastDef("a")},
			want: errors.ErrDuplicateHook,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeExecutor()
			o := New(testConfig(), WithExecutor(fake))
			defer o.Close()

			_, err := o.ExecuteStrategy(context.Background(), fastStrategy(tt.defs...))
			if !errors.Is(err, tt.want) {
				t.Errorf("ExecuteStrategy() error = %v, want %v", err, tt.want)
			}
			if got := fake.callCount(); got != 0 {
				t.Errorf("executor calls = %d, want 0 for an invalid graph", got)
			}
		})
	}
}

func TestExecuteStrategy_ContextCanceled(t *testing.T) {
	fake := newFakeExecutor()
	o := New(testConfig(), WithExecutor(fake))
	defer o.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := o.ExecuteStrategy(ctx, fastStrategy(fastDef("a"), fastDef("b")))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ExecuteStrategy() error = %v, want context.Canceled", err)
	}
	for _, res := range results {
		if res.Status != hook.StatusError {
			t.Errorf("hook %s status = %v, want %v", res.ID, res.Status, hook.StatusError)
		}
	}
}

func cachingConfig() config.Orchestration {
	cfg := testConfig()
	cfg.EnableCaching = true
	cfg.CacheBackend = config.BackendMemory
	return cfg
}

func TestExecuteStrategy_CacheHitSkipsExecution(t *testing.T) {
	fake := newFakeExecutor()
	fake.dur["lint"] = 42 * time.Millisecond

	o := New(cachingConfig(), WithExecutor(fake), WithDir(t.TempDir()))
	defer o.Close()

	first, err := o.ExecuteStrategy(context.Background(), fastStrategy(fastDef("lint")))
	if err != nil {
		t.Fatalf("first run error = %v", err)
	}
	if first[0].CacheHit {
		t.Fatal("first run should not be a cache hit")
	}

	second, err := o.ExecuteStrategy(context.Background(), fastStrategy(fastDef("lint")))
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}

	if got := fake.callCount(); got != 1 {
		t.Errorf("executor calls = %d, want 1 (second run served from cache)", got)
	}
	if !second[0].CacheHit {
		t.Error("second run should be a cache hit")
	}
	if second[0].Duration != 42*time.Millisecond {
		t.Errorf("cached Duration = %v, want the original run's 42ms", second[0].Duration)
	}

	stats := o.CacheStats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.TotalRequests != 2 {
		t.Errorf("stats = hits %d misses %d requests %d, want 1/1/2",
			stats.Hits, stats.Misses, stats.TotalRequests)
	}
}

func TestExecuteStrategy_ErrorResultsNotCached(t *testing.T) {
	fake := newFakeExecutor()
	fake.status["broken"] = hook.StatusError

	o := New(cachingConfig(), WithExecutor(fake), WithDir(t.TempDir()))
	defer o.Close()

	for i := range 2 {
		results, err := o.ExecuteStrategy(context.Background(), fastStrategy(fastDef("broken")))
		if err != nil {
			t.Fatalf("run %d error = %v", i, err)
		}
		if results[0].CacheHit {
			t.Errorf("run %d served an error result from cache", i)
		}
	}
	if got := fake.callCount(); got != 2 {
		t.Errorf("executor calls = %d, want 2 (error results are never cached)", got)
	}
}

func TestExecuteStrategy_TimeoutResultsAreCached(t *testing.T) {
	fake := newFakeExecutor()
	fake.status["slow"] = hook.StatusTimeout

	o := New(cachingConfig(), WithExecutor(fake), WithDir(t.TempDir()))
	defer o.Close()

	if _, err := o.ExecuteStrategy(context.Background(), fastStrategy(fastDef("slow"))); err != nil {
		t.Fatalf("first run error = %v", err)
	}
	second, err := o.ExecuteStrategy(context.Background(), fastStrategy(fastDef("slow")))
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}

	if got := fake.callCount(); got != 1 {
		t.Errorf("executor calls = %d, want 1 (timeouts are a reusable verdict)", got)
	}
	if !second[0].CacheHit || second[0].Status != hook.StatusTimeout {
		t.Errorf("second run = %+v, want cached timeout", second[0])
	}
}

func TestExecuteStrategy_FileChangeInvalidatesCache(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.txt")
	if err := os.WriteFile(src, []byte("one\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	def := fastDef("lint")
	def.Files = "*.txt"

	fake := newFakeExecutor()
	o := New(cachingConfig(), WithExecutor(fake), WithDir(dir))
	defer o.Close()

	if _, err := o.ExecuteStrategy(context.Background(), fastStrategy(def)); err != nil {
		t.Fatalf("first run error = %v", err)
	}
	if err := os.WriteFile(src, []byte("one\ntwo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	results, err := o.ExecuteStrategy(context.Background(), fastStrategy(def))
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}

	if results[0].CacheHit {
		t.Error("changed input should miss the cache")
	}
	if got := fake.callCount(); got != 2 {
		t.Errorf("executor calls = %d, want 2", got)
	}
}

func TestExecuteStrategy_AdaptiveSlowestFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), history.DefaultFileName)
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	store.Observe("slow-suite", 400*time.Millisecond, hook.StatusPassed)
	store.Observe("quick-lint", 10*time.Millisecond, hook.StatusPassed)
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	cfg := testConfig()
	cfg.EnableAdaptiveExecution = true
	cfg.MaxParallelHooks = 1 // serialize so submission order is observable

	fake := newFakeExecutor()
	o := New(cfg, WithExecutor(fake), WithHistoryPath(path))
	defer o.Close()

	results, err := o.ExecuteStrategy(context.Background(), fastStrategy(
		fastDef("quick-lint"), fastDef("slow-suite"),
	))
	if err != nil {
		t.Fatalf("ExecuteStrategy() error = %v", err)
	}

	assertOrder(t, fake.callOrder(), []string{"slow-suite", "quick-lint"})
	// Declaration order still governs the results.
	assertOrder(t, resultIDs(results), []string{"quick-lint", "slow-suite"})
}

func TestExecuteStrategy_RecordsDurationHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), history.DefaultFileName)

	cfg := testConfig()
	cfg.EnableAdaptiveExecution = true

	fake := newFakeExecutor()
	fake.dur["unit-tests"] = 30 * time.Millisecond

	o := New(cfg, WithExecutor(fake), WithHistoryPath(path))
	defer o.Close()

	if _, err := o.ExecuteStrategy(context.Background(), fastStrategy(fastDef("unit-tests"))); err != nil {
		t.Fatalf("ExecuteStrategy() error = %v", err)
	}

	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	mean, ok := store.Mean("unit-tests")
	if !ok {
		t.Fatal("Mean() found no samples after a run")
	}
	if mean != 30*time.Millisecond {
		t.Errorf("Mean() = %v, want 30ms", mean)
	}
}

// eventRecorder collects event types in publish order.
type eventRecorder struct {
	mu    sync.Mutex
	types []string
}

func (r *eventRecorder) record(e event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, e.EventType())
}

func (r *eventRecorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.types...)
}

func TestExecuteStrategy_EventSequence(t *testing.T) {
	cfg := testConfig()
	cfg.MaxParallelHooks = 1

	bus := event.NewBus()
	rec := &eventRecorder{}
	bus.SubscribeAll(rec.record)

	o := New(cfg, WithExecutor(newFakeExecutor()), WithBus(bus))
	defer o.Close()

	_, err := o.ExecuteStrategy(context.Background(), fastStrategy(
		fastDef("a"), fastDef("b", "a"),
	))
	if err != nil {
		t.Fatalf("ExecuteStrategy() error = %v", err)
	}

	assertOrder(t, rec.seen(), []string{
		"run.started",
		"wave.started",
		"hook.started",
		"hook.completed",
		"wave.completed",
		"wave.started",
		"hook.started",
		"hook.completed",
		"wave.completed",
		"run.completed",
	})
}

func TestExecuteStrategy_CacheHitEvents(t *testing.T) {
	bus := event.NewBus()
	o := New(cachingConfig(), WithExecutor(newFakeExecutor()), WithDir(t.TempDir()), WithBus(bus))
	defer o.Close()

	if _, err := o.ExecuteStrategy(context.Background(), fastStrategy(fastDef("lint"))); err != nil {
		t.Fatalf("first run error = %v", err)
	}

	rec := &eventRecorder{}
	bus.SubscribeAll(rec.record)

	if _, err := o.ExecuteStrategy(context.Background(), fastStrategy(fastDef("lint"))); err != nil {
		t.Fatalf("second run error = %v", err)
	}

	assertOrder(t, rec.seen(), []string{
		"run.started",
		"wave.started",
		"cache.hit",
		"hook.completed",
		"wave.completed",
		"run.completed",
	})
}
