package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/quillworks/preflight/internal/adaptive"
	"github.com/quillworks/preflight/internal/cache"
	"github.com/quillworks/preflight/internal/config"
	"github.com/quillworks/preflight/internal/event"
	"github.com/quillworks/preflight/internal/executor"
	"github.com/quillworks/preflight/internal/history"
	"github.com/quillworks/preflight/internal/hook"
	"github.com/quillworks/preflight/internal/logging"
)

// runState is a consistent snapshot of the mutable orchestrator pieces
// taken once per run, so SetExecutor and Close cannot change them
// mid-flight.
type runState struct {
	exec    executor.Executor
	cache   cache.Cache
	hist    *history.Store
	planner *adaptive.Planner
}

func (o *Orchestrator) snapshot() runState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return runState{
		exec:    o.exec,
		cache:   o.cache,
		hist:    o.hist,
		planner: o.planner,
	}
}

// ExecuteStrategy runs every hook in the strategy and returns one
// result per hook, in the order the strategy declares them. Per-hook
// failures are reported in the results; the returned error is reserved
// for the run itself being unable to proceed.
//
// In legacy mode the whole strategy is handed to the executor
// unchanged. In advanced mode hooks are grouped into dependency waves,
// each wave runs on a worker pool bounded by MaxParallelHooks, and
// cached results are reused where fingerprints match.
func (o *Orchestrator) ExecuteStrategy(ctx context.Context, s *hook.Strategy) ([]hook.Result, error) {
	if err := o.Init(); err != nil {
		return nil, err
	}
	if s == nil || len(s.Hooks) == 0 {
		return []hook.Result{}, nil
	}

	if o.cfg.Mode == config.ModeLegacy {
		return o.currentExecutor().ExecuteStrategy(ctx, s)
	}
	return o.executeWaves(ctx, s)
}

func (o *Orchestrator) executeWaves(ctx context.Context, s *hook.Strategy) ([]hook.Result, error) {
	waves, err := hook.Waves(s.Hooks)
	if err != nil {
		return nil, err
	}

	run := o.snapshot()
	runID := uuid.NewString()
	log := o.logger.WithRun(runID).WithStage(s.Stage.String())

	o.bus.Publish(event.NewRunStartedEvent(runID, s.Stage.String(), len(s.Hooks), len(waves)))
	log.Info("run started", "hooks", len(s.Hooks), "waves", len(waves))

	// Results go back in declaration order no matter how waves and
	// pools reorder execution.
	slot := make(map[string]int, len(s.Hooks))
	for i, def := range s.Hooks {
		slot[def.ID] = i
	}
	results := make([]hook.Result, len(s.Hooks))

	start := time.Now()
	for num, wave := range waves {
		if run.planner != nil {
			wave = run.planner.OrderWave(wave)
		}

		o.bus.Publish(event.NewWaveStartedEvent(runID, num, hookIDs(wave)))

		p := pool.NewWithResults[hook.Result]().WithMaxGoroutines(o.maxParallel())
		for _, def := range wave {
			p.Go(func() hook.Result {
				return o.runHook(ctx, run, log, runID, num, def)
			})
		}

		failures := 0
		for _, res := range p.Wait() {
			if !res.Passed() {
				failures++
			}
			results[slot[res.ID]] = res
		}
		o.bus.Publish(event.NewWaveCompletedEvent(runID, num, failures))

		if err := ctx.Err(); err != nil {
			log.Warn("run aborted", "wave", num, "error", err)
			completed := make([]hook.Result, 0, len(results))
			for _, res := range results {
				if res.ID != "" {
					completed = append(completed, res)
				}
			}
			return completed, err
		}
	}

	passed := 0
	for _, res := range results {
		if res.Passed() {
			passed++
		}
	}
	failed := len(results) - passed

	o.recordDurations(run, results)
	o.bus.Publish(event.NewRunCompletedEvent(runID, s.Stage.String(), passed, failed, time.Since(start)))
	log.Info("run completed", "passed", passed, "failed", failed, "duration", time.Since(start))

	return results, nil
}

// runHook executes a single hook, consulting the cache first when
// caching is enabled. Whatever happens comes back as a Result.
func (o *Orchestrator) runHook(ctx context.Context, run runState, log *logging.Logger, runID string, waveNum int, def hook.Definition) hook.Result {
	key := ""
	if o.cfg.EnableCaching && run.cache != nil {
		k, err := cache.Fingerprint(o.dir, def)
		if err != nil {
			log.Debug("fingerprint failed, hook will not be cached", "hook", def.ID, "error", err)
		} else {
			key = k
			if res, ok := run.cache.Get(ctx, key); ok {
				res.CacheHit = true
				o.bus.Publish(event.NewCacheHitEvent(runID, def.ID))
				o.bus.Publish(event.NewHookCompletedEvent(runID, def.ID, res.Status.String(), res.Duration, true))
				log.Info("hook served from cache", "hook", def.ID, "status", res.Status)
				return res
			}
		}
	}

	o.bus.Publish(event.NewHookStartedEvent(runID, def.ID, def.Stage.String(), waveNum))

	single := &hook.Strategy{Stage: def.Stage, Hooks: []hook.Definition{def}}
	executed, err := run.exec.ExecuteStrategy(ctx, single)

	var res hook.Result
	switch {
	case len(executed) == 1:
		res = executed[0]
	case err != nil:
		res = hook.Result{
			ID:          def.ID,
			Name:        def.DisplayName(),
			Status:      hook.StatusError,
			Stage:       def.Stage,
			IssuesFound: []string{err.Error()},
		}
	default:
		res = hook.Result{
			ID:     def.ID,
			Name:   def.DisplayName(),
			Status: hook.StatusError,
			Stage:  def.Stage,
		}
	}

	// A timeout or failure is a stable, reusable verdict for these
	// inputs. An invocation error is not.
	if key != "" && res.Status != hook.StatusError {
		run.cache.Set(ctx, key, res)
	}

	o.bus.Publish(event.NewHookCompletedEvent(runID, def.ID, res.Status.String(), res.Duration, res.CacheHit))
	return res
}

// recordDurations folds freshly executed runs into the duration
// history. Cached results are skipped so replayed verdicts cannot
// distort the averages.
func (o *Orchestrator) recordDurations(run runState, results []hook.Result) {
	if run.hist == nil {
		return
	}
	for _, res := range results {
		if res.CacheHit {
			continue
		}
		run.hist.Observe(res.ID, res.Duration, res.Status)
	}
	if err := run.hist.Save(); err != nil {
		o.logger.Warn("saving duration history failed", "error", err)
	}
}

func hookIDs(wave []hook.Definition) []string {
	ids := make([]string, len(wave))
	for i, def := range wave {
		ids[i] = def.ID
	}
	return ids
}
