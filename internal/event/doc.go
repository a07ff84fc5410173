// Package event provides a pub-sub event bus for decoupled inter-component
// communication in Preflight.
//
// This package enables loose coupling between the CLI, Orchestrator, and other
// components by allowing them to communicate through events rather than direct
// method calls. Components can publish events without knowing who will receive
// them, and subscribe to events without knowing who will produce them.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub event dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Categories
//
// The package defines several categories of events:
//
// Run Lifecycle:
//   - [RunStartedEvent]: Emitted when a strategy run begins execution
//   - [RunCompletedEvent]: Emitted when a strategy run finishes
//
// Wave Events:
//   - [WaveStartedEvent]: Emitted when a dependency wave begins execution
//   - [WaveCompletedEvent]: Emitted when every hook in a wave has finished
//
// Hook Events:
//   - [HookStartedEvent]: Emitted when an individual hook begins execution
//   - [HookCompletedEvent]: Emitted when an individual hook finishes
//
// Cache Events:
//   - [CacheHitEvent]: Emitted when a hook result is served from cache
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Multiple goroutines can publish
// and subscribe concurrently. Handlers are called synchronously and protected
// against panics - a panicking handler will not prevent other handlers from
// being called.
//
// # Basic Usage
//
//	bus := event.NewBus()
//
//	// Subscribe to specific event types
//	bus.Subscribe("hook.completed", func(e event.Event) {
//	    done := e.(event.HookCompletedEvent)
//	    log.Printf("Hook %s finished with status %s", done.HookID, done.Status)
//	})
//
//	// Subscribe to all events (useful for logging)
//	bus.SubscribeAll(func(e event.Event) {
//	    log.Printf("Event: %s at %v", e.EventType(), e.Timestamp())
//	})
//
//	// Publish events
//	bus.Publish(event.NewRunStartedEvent("run-1", "fast", 4, 2))
//
//	// Unsubscribe when done
//	id := bus.Subscribe("run.completed", handler)
//	bus.Unsubscribe(id)
//
// # Event Type Naming Convention
//
// Event types follow the pattern "category.action":
//   - run.started, run.completed
//   - wave.started, wave.completed
//   - hook.started, hook.completed
//   - cache.hit
package event
