// Package manager is the embedding surface for hook execution: it
// resolves configuration once, loads stage strategies, and routes runs
// through the orchestrator or the plain executor depending on whether
// orchestration is enabled.
package manager

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/quillworks/preflight/internal/cache"
	"github.com/quillworks/preflight/internal/config"
	"github.com/quillworks/preflight/internal/errors"
	"github.com/quillworks/preflight/internal/event"
	"github.com/quillworks/preflight/internal/executor"
	"github.com/quillworks/preflight/internal/hook"
	"github.com/quillworks/preflight/internal/logging"
	"github.com/quillworks/preflight/internal/orchestrator"
	"github.com/quillworks/preflight/internal/strategy"
)

// Manager ties configuration, strategy loading, and execution together
// behind a small synchronous API. All methods are safe to call from any
// goroutine.
type Manager struct {
	cfg        config.Orchestration
	projectDir string
	logger     *logging.Logger
	bus        *event.Bus
	loader     strategy.Loader
	orch       *orchestrator.Orchestrator // nil when orchestration is disabled

	// construction inputs, consumed by New
	explicit    *config.Orchestration
	legacy      config.LegacyParams
	settings    config.Settings
	historyPath string

	mu           sync.Mutex
	exec         executor.Executor
	execKind     executor.Kind
	toolProxy    bool
	quiet        bool
	verbose      bool
	execInjected bool // injected executors are never rebuilt
	configPath   string
}

// Info describes how hooks will execute, for display and diagnostics.
// Mode and CacheBackend are only set when orchestration is enabled.
type Info struct {
	ExecutorKind    executor.Kind `json:"executor_kind"`
	LSPOptimization bool          `json:"lsp_optimization"`
	ToolProxy       bool          `json:"tool_proxy"`
	Orchestration   bool          `json:"orchestration"`
	CachingEnabled  bool          `json:"caching_enabled"`
	Mode            string        `json:"mode,omitempty"`
	CacheBackend    string        `json:"cache_backend,omitempty"`
}

// Option configures a Manager.
type Option func(*Manager)

// WithProjectDir sets the directory hooks run against and the project
// file is read from. Defaults to the current directory.
func WithProjectDir(dir string) Option {
	return func(m *Manager) {
		if dir != "" {
			m.projectDir = dir
		}
	}
}

// WithExplicitConfig supplies a complete orchestration config that wins
// over the project file and all defaults.
func WithExplicitConfig(cfg *config.Orchestration) Option {
	return func(m *Manager) {
		m.explicit = cfg
	}
}

// WithLegacyParams supplies the optional constructor parameters that
// predate resolved configs. Nil fields are "not specified".
func WithLegacyParams(params config.LegacyParams) Option {
	return func(m *Manager) {
		m.legacy = params
	}
}

// WithSettings supplies process-wide defaults, typically from the user
// config via config.SettingsFromConfig.
func WithSettings(settings config.Settings) Option {
	return func(m *Manager) {
		m.settings = settings
	}
}

// WithLoader replaces the project-file strategy loader.
func WithLoader(loader strategy.Loader) Option {
	return func(m *Manager) {
		if loader != nil {
			m.loader = loader
		}
	}
}

// WithExecutor injects the executor hooks run on. Injected executors
// are kept as-is: ConfigureLSPOptimization and ConfigureToolProxy
// record the toggle but do not rebuild them.
func WithExecutor(exec executor.Executor) Option {
	return func(m *Manager) {
		if exec != nil {
			m.exec = exec
			m.execInjected = true
		}
	}
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *logging.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithBus sets the event bus lifecycle events are published to.
func WithBus(bus *event.Bus) Option {
	return func(m *Manager) {
		if bus != nil {
			m.bus = bus
		}
	}
}

// WithHistoryPath overrides where hook duration history is persisted.
func WithHistoryPath(path string) Option {
	return func(m *Manager) {
		m.historyPath = path
	}
}

// WithQuiet suppresses per-hook start/finish log lines.
func WithQuiet(quiet bool) Option {
	return func(m *Manager) {
		m.quiet = quiet
	}
}

// WithVerbose logs captured hook output line by line.
func WithVerbose(verbose bool) Option {
	return func(m *Manager) {
		m.verbose = verbose
	}
}

// WithConfigPath sets a tool configuration file stamped onto every hook
// of each loaded strategy, overriding per-hook config_path declarations.
func WithConfigPath(path string) Option {
	return func(m *Manager) {
		m.configPath = path
	}
}

// New builds a Manager. Configuration is resolved once, strongest
// source first (explicit config, project file plus legacy overrides,
// then defaults), and an invalid result fails construction with a
// ConfigError.
func New(opts ...Option) (*Manager, error) {
	m := &Manager{
		projectDir: ".",
		logger:     logging.NopLogger(),
		bus:        event.NewBus(),
		settings:   config.DefaultSettings(),
		execKind:   executor.KindStandard,
	}
	for _, opt := range opts {
		opt(m)
	}

	// The project file only matters when no explicit config is given;
	// Resolve ignores it otherwise.
	var fileCfg *config.ProjectOrchestration
	if m.explicit == nil {
		fc, err := config.LoadProjectOrchestration(m.projectDir)
		if err != nil {
			return nil, err
		}
		fileCfg = fc
	}
	cfg, err := config.Resolve(m.explicit, fileCfg, m.legacy, m.settings)
	if err != nil {
		return nil, err
	}
	m.cfg = cfg

	if m.loader == nil {
		m.loader = strategy.NewFileLoader(m.projectDir)
	}
	if m.exec == nil {
		m.exec = m.buildExecutor(m.execKind)
	}

	if cfg.Enable {
		m.orch = orchestrator.New(cfg,
			orchestrator.WithDir(m.projectDir),
			orchestrator.WithLogger(m.logger),
			orchestrator.WithBus(m.bus),
			orchestrator.WithExecutor(m.exec),
			orchestrator.WithHistoryPath(m.historyPath),
		)
	}
	return m, nil
}

// RunFastHooks loads and executes the fast stage.
func (m *Manager) RunFastHooks(ctx context.Context) ([]hook.Result, error) {
	return m.runStage(ctx, hook.StageFast)
}

// RunComprehensiveHooks loads and executes the comprehensive stage.
func (m *Manager) RunComprehensiveHooks(ctx context.Context) ([]hook.Result, error) {
	return m.runStage(ctx, hook.StageComprehensive)
}

// RunHooks executes both stages and returns the fast results followed
// by the comprehensive results. With orchestration and strategy
// parallelism enabled the stages run concurrently, bounded by
// MaxConcurrentStrategies and failing fast on the first strategy-level
// error.
func (m *Manager) RunHooks(ctx context.Context) ([]hook.Result, error) {
	if m.cfg.Enable && m.cfg.EnableStrategyParallelism {
		return m.runStagesParallel(ctx)
	}

	fast, err := m.runStage(ctx, hook.StageFast)
	if err != nil {
		return nil, err
	}
	comprehensive, err := m.runStage(ctx, hook.StageComprehensive)
	if err != nil {
		return nil, err
	}
	return append(fast, comprehensive...), nil
}

func (m *Manager) runStagesParallel(ctx context.Context) ([]hook.Result, error) {
	var fast, comprehensive []hook.Result

	p := pool.New().
		WithContext(ctx).
		WithMaxGoroutines(m.maxStrategies()).
		WithCancelOnError().
		WithFirstError()

	p.Go(func(ctx context.Context) error {
		results, err := m.runStage(ctx, hook.StageFast)
		if err != nil {
			return errors.NewStrategyError("fast strategy failed", err).
				WithStage(hook.StageFast.String())
		}
		fast = results
		return nil
	})
	p.Go(func(ctx context.Context) error {
		results, err := m.runStage(ctx, hook.StageComprehensive)
		if err != nil {
			return errors.NewStrategyError("comprehensive strategy failed", err).
				WithStage(hook.StageComprehensive.String())
		}
		comprehensive = results
		return nil
	})

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return append(fast, comprehensive...), nil
}

func (m *Manager) runStage(ctx context.Context, stage hook.Stage) ([]hook.Result, error) {
	strat, err := m.loader.Load(stage)
	if err != nil {
		return nil, err
	}
	if strat == nil || len(strat.Hooks) == 0 {
		return []hook.Result{}, nil
	}

	// The loader hands out a fresh strategy per call, so stamping the
	// override here cannot leak into other runs.
	if override := m.currentConfigPath(); override != "" {
		for i := range strat.Hooks {
			strat.Hooks[i].ConfigPath = override
		}
	}

	if m.orch != nil {
		return m.orch.ExecuteStrategy(ctx, strat)
	}
	return m.currentExecutor().ExecuteStrategy(ctx, strat)
}

// ExecutionInfo reports the current execution setup.
func (m *Manager) ExecutionInfo() Info {
	m.mu.Lock()
	defer m.mu.Unlock()

	info := Info{
		ExecutorKind:    m.execKind,
		LSPOptimization: m.execKind == executor.KindLSPOptimized,
		ToolProxy:       m.toolProxy,
		Orchestration:   m.cfg.Enable,
		CachingEnabled:  m.cfg.EnableCaching,
	}
	if m.cfg.Enable {
		info.Mode = m.cfg.Mode
		info.CacheBackend = m.cfg.CacheBackend
	}
	return info
}

// OrchestrationStats returns a cache statistics snapshot, or nil when
// orchestration is disabled. The first call may initialize the
// orchestrator; initialization failures surface here.
func (m *Manager) OrchestrationStats() (*cache.Stats, error) {
	if m.orch == nil {
		return nil, nil
	}
	if err := m.orch.Init(); err != nil {
		return nil, err
	}
	stats := m.orch.CacheStats()
	return &stats, nil
}

// ConfigureLSPOptimization switches between the standard and
// LSP-optimized executor kinds. The executor is rebuilt with unrelated
// settings preserved; runs already in flight are unaffected.
func (m *Manager) ConfigureLSPOptimization(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kind := executor.KindStandard
	if enabled {
		kind = executor.KindLSPOptimized
	}
	if kind == m.execKind {
		return
	}
	m.execKind = kind
	m.rebuildExecutorLocked()
}

// ConfigureToolProxy toggles the tool proxy wrapper on executed
// commands.
func (m *Manager) ConfigureToolProxy(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if enabled == m.toolProxy {
		return
	}
	m.toolProxy = enabled
	m.rebuildExecutorLocked()
}

// SetConfigPath overrides the tool configuration file for every hook of
// subsequently loaded strategies. An empty path clears the override.
func (m *Manager) SetConfigPath(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configPath = path
}

func (m *Manager) currentConfigPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configPath
}

// HookSummary aggregates results into a Summary.
func (m *Manager) HookSummary(results []hook.Result) hook.Summary {
	return hook.Summarize(results)
}

// Close releases resources held by the execution path, flushing hook
// duration history. Safe to call more than once.
func (m *Manager) Close() error {
	if m.orch == nil {
		return nil
	}
	return m.orch.Close()
}

func (m *Manager) currentExecutor() executor.Executor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exec
}

func (m *Manager) rebuildExecutorLocked() {
	if m.execInjected {
		return
	}
	m.exec = m.buildExecutor(m.execKind)
	if m.orch != nil {
		m.orch.SetExecutor(m.exec)
	}
}

func (m *Manager) buildExecutor(kind executor.Kind) executor.Executor {
	return executor.NewFromKind(kind, executor.Config{
		Dir:       m.projectDir,
		Quiet:     m.quiet,
		Verbose:   m.verbose,
		ToolProxy: m.toolProxy,
		Logger:    m.logger,
	})
}

func (m *Manager) maxStrategies() int {
	if m.cfg.MaxConcurrentStrategies < 1 {
		return 1
	}
	return m.cfg.MaxConcurrentStrategies
}
