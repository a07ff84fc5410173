package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "run.started", "hook.completed")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Run Lifecycle Events
// -----------------------------------------------------------------------------

// RunStartedEvent is emitted when a strategy run begins execution.
type RunStartedEvent struct {
	baseEvent
	RunID     string // Unique identifier for the run
	Stage     string // Strategy stage being executed ("fast", "comprehensive")
	HookCount int    // Total number of hooks scheduled
	WaveCount int    // Number of dependency waves the hooks were grouped into
}

// NewRunStartedEvent creates a RunStartedEvent.
func NewRunStartedEvent(runID, stage string, hookCount, waveCount int) RunStartedEvent {
	return RunStartedEvent{
		baseEvent: newBaseEvent("run.started"),
		RunID:     runID,
		Stage:     stage,
		HookCount: hookCount,
		WaveCount: waveCount,
	}
}

// RunCompletedEvent is emitted when a strategy run finishes.
type RunCompletedEvent struct {
	baseEvent
	RunID    string        // Unique identifier for the run
	Stage    string        // Strategy stage that was executed
	Passed   int           // Number of hooks that passed
	Failed   int           // Number of hooks that did not pass
	Duration time.Duration // Wall-clock duration of the run
}

// NewRunCompletedEvent creates a RunCompletedEvent.
func NewRunCompletedEvent(runID, stage string, passed, failed int, duration time.Duration) RunCompletedEvent {
	return RunCompletedEvent{
		baseEvent: newBaseEvent("run.completed"),
		RunID:     runID,
		Stage:     stage,
		Passed:    passed,
		Failed:    failed,
		Duration:  duration,
	}
}

// -----------------------------------------------------------------------------
// Wave Events
// -----------------------------------------------------------------------------

// WaveStartedEvent is emitted when a dependency wave begins execution.
type WaveStartedEvent struct {
	baseEvent
	RunID   string   // Run this wave belongs to
	Wave    int      // Zero-based wave index
	HookIDs []string // Hooks executing in this wave
}

// NewWaveStartedEvent creates a WaveStartedEvent.
func NewWaveStartedEvent(runID string, wave int, hookIDs []string) WaveStartedEvent {
	return WaveStartedEvent{
		baseEvent: newBaseEvent("wave.started"),
		RunID:     runID,
		Wave:      wave,
		HookIDs:   hookIDs,
	}
}

// WaveCompletedEvent is emitted when every hook in a wave has finished.
type WaveCompletedEvent struct {
	baseEvent
	RunID    string // Run this wave belongs to
	Wave     int    // Zero-based wave index
	Failures int    // Number of hooks in the wave that did not pass
}

// NewWaveCompletedEvent creates a WaveCompletedEvent.
func NewWaveCompletedEvent(runID string, wave, failures int) WaveCompletedEvent {
	return WaveCompletedEvent{
		baseEvent: newBaseEvent("wave.completed"),
		RunID:     runID,
		Wave:      wave,
		Failures:  failures,
	}
}

// -----------------------------------------------------------------------------
// Hook Events
// -----------------------------------------------------------------------------

// HookStartedEvent is emitted when an individual hook begins execution.
type HookStartedEvent struct {
	baseEvent
	RunID  string // Run this hook belongs to
	HookID string // Identifier of the hook
	Stage  string // Strategy stage the hook runs in
	Wave   int    // Wave the hook was assigned to
}

// NewHookStartedEvent creates a HookStartedEvent.
func NewHookStartedEvent(runID, hookID, stage string, wave int) HookStartedEvent {
	return HookStartedEvent{
		baseEvent: newBaseEvent("hook.started"),
		RunID:     runID,
		HookID:    hookID,
		Stage:     stage,
		Wave:      wave,
	}
}

// HookCompletedEvent is emitted when an individual hook finishes.
type HookCompletedEvent struct {
	baseEvent
	RunID    string        // Run this hook belongs to
	HookID   string        // Identifier of the hook
	Status   string        // Terminal status ("passed", "failed", "timeout", "error")
	Duration time.Duration // How long the hook ran
	CacheHit bool          // Whether the result was served from cache
}

// NewHookCompletedEvent creates a HookCompletedEvent.
func NewHookCompletedEvent(runID, hookID, status string, duration time.Duration, cacheHit bool) HookCompletedEvent {
	return HookCompletedEvent{
		baseEvent: newBaseEvent("hook.completed"),
		RunID:     runID,
		HookID:    hookID,
		Status:    status,
		Duration:  duration,
		CacheHit:  cacheHit,
	}
}

// -----------------------------------------------------------------------------
// Cache Events
// -----------------------------------------------------------------------------

// CacheHitEvent is emitted when a hook result is served from cache
// instead of being executed.
type CacheHitEvent struct {
	baseEvent
	RunID  string // Run the lookup happened in
	HookID string // Hook whose result was reused
}

// NewCacheHitEvent creates a CacheHitEvent.
func NewCacheHitEvent(runID, hookID string) CacheHitEvent {
	return CacheHitEvent{
		baseEvent: newBaseEvent("cache.hit"),
		RunID:     runID,
		HookID:    hookID,
	}
}
