// Package orchestrator schedules hook execution: it computes dependency
// waves, runs each wave on a bounded worker pool, consults the result
// cache before invoking the executor, and publishes lifecycle events.
//
// The orchestrator owns no policy about WHICH hooks run; it receives a
// fully resolved strategy and decides when and whether each hook
// actually executes.
package orchestrator

import (
	"path/filepath"
	"sync"

	"github.com/quillworks/preflight/internal/adaptive"
	"github.com/quillworks/preflight/internal/cache"
	"github.com/quillworks/preflight/internal/config"
	"github.com/quillworks/preflight/internal/errors"
	"github.com/quillworks/preflight/internal/event"
	"github.com/quillworks/preflight/internal/executor"
	"github.com/quillworks/preflight/internal/history"
	"github.com/quillworks/preflight/internal/logging"
)

// Orchestrator coordinates cached, dependency-aware hook execution.
// Construct with New, then call Init (or let ExecuteStrategy do it
// lazily) before running strategies.
type Orchestrator struct {
	cfg         config.Orchestration
	dir         string // project directory hooks run against
	historyPath string
	logger      *logging.Logger
	bus         *event.Bus

	initOnce sync.Once
	initErr  error

	exec    executor.Executor
	cache   cache.Cache
	hist    *history.Store
	planner *adaptive.Planner

	mu sync.RWMutex
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDir sets the project directory hooks execute in and fingerprints
// are computed against. Defaults to the current directory.
func WithDir(dir string) Option {
	return func(o *Orchestrator) {
		o.dir = dir
	}
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *logging.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithBus sets the event bus lifecycle events are published to.
// Defaults to a private bus with no subscribers.
func WithBus(bus *event.Bus) Option {
	return func(o *Orchestrator) {
		if bus != nil {
			o.bus = bus
		}
	}
}

// WithExecutor injects the executor used to run hooks. When absent,
// Init builds a standard subprocess executor for the project directory.
func WithExecutor(exec executor.Executor) Option {
	return func(o *Orchestrator) {
		o.exec = exec
	}
}

// WithHistoryPath sets where hook duration history is persisted.
// Defaults to history.DefaultFileName under the project artifacts
// directory.
func WithHistoryPath(path string) Option {
	return func(o *Orchestrator) {
		o.historyPath = path
	}
}

// New creates an Orchestrator for the given orchestration settings.
// No resources are acquired until Init.
func New(cfg config.Orchestration, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:    cfg,
		dir:    ".",
		logger: logging.NopLogger(),
		bus:    event.NewBus(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Init prepares the orchestrator: it builds the cache backend, the
// executor if none was injected, and opens the duration history store.
// Init is idempotent; every call after the first returns the outcome
// of the first without re-running initialization.
func (o *Orchestrator) Init() error {
	o.initOnce.Do(o.doInit)
	return o.initErr
}

func (o *Orchestrator) doInit() {
	c, err := cache.New(o.cfg, o.logger)
	if err != nil {
		o.initErr = errors.NewInitError("building cache backend", err).WithComponent("cache")
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.cache = c
	if o.exec == nil {
		o.exec = executor.NewFromKind(executor.KindStandard, executor.Config{
			Dir:    o.dir,
			Logger: o.logger,
		})
	}

	if !o.cfg.EnableAdaptiveExecution {
		return
	}
	path := o.historyPath
	if path == "" {
		artifacts := config.Default().Paths.ResolveArtifactsDir(o.dir)
		path = filepath.Join(artifacts, history.DefaultFileName)
	}
	hist, err := history.Open(path)
	if err != nil {
		// Adaptive ordering is an optimization; a broken history file
		// must not keep hooks from running.
		o.logger.Warn("duration history unavailable, running hooks in declared order", "error", err)
		return
	}
	o.hist = hist
	o.planner = adaptive.NewPlanner(hist)
}

// CacheStats reports cache hit/miss counters for this orchestrator.
// Before Init it returns zero-valued stats.
func (o *Orchestrator) CacheStats() cache.Stats {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.cache == nil {
		return cache.Stats{}
	}
	return o.cache.Stats()
}

// SetExecutor replaces the executor used by subsequent runs. Runs
// already in flight keep the executor they started with.
func (o *Orchestrator) SetExecutor(exec executor.Executor) {
	if exec == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.exec = exec
}

func (o *Orchestrator) currentExecutor() executor.Executor {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.exec
}

// Close releases orchestrator resources. Safe to call before Init and
// more than once.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var firstErr error
	if o.hist != nil {
		if err := o.hist.Close(); err != nil {
			firstErr = err
		}
		o.hist = nil
		o.planner = nil
	}
	if o.cache != nil {
		if err := o.cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		o.cache = nil
	}
	return firstErr
}

func (o *Orchestrator) maxParallel() int {
	if o.cfg.MaxParallelHooks < 1 {
		return 1
	}
	return o.cfg.MaxParallelHooks
}
