// Package hook defines the data model shared by the scheduler: hook
// definitions, strategies, execution results, and result summaries.
//
// A hook is an external quality tool (formatter, linter, type checker, test
// runner) executed as a subprocess. Hooks are grouped into strategies by
// stage, and per-hook outcomes are always data: a hook that fails, times out,
// or cannot be invoked produces a Result, never an error.
package hook

import "time"

// DefaultTimeout is the per-hook wall clock budget applied when a definition
// does not set one.
const DefaultTimeout = 60 * time.Second

// Stage identifies which strategy a hook belongs to.
type Stage string

const (
	// StageFast groups quick formatting-level checks.
	StageFast Stage = "fast"

	// StageComprehensive groups deep analysis checks (type checkers,
	// security scanners, test runners).
	StageComprehensive Stage = "comprehensive"
)

// Valid reports whether the stage is one of the known stages.
func (s Stage) Valid() bool {
	return s == StageFast || s == StageComprehensive
}

// String returns the stage name.
func (s Stage) String() string {
	return string(s)
}

// Stages returns all known stages in canonical execution order.
func Stages() []Stage {
	return []Stage{StageFast, StageComprehensive}
}

// Definition describes a single hook: what to run, how long to wait, and
// which hooks must complete in an earlier wave.
type Definition struct {
	// ID uniquely identifies the hook within its strategy.
	ID string

	// Name is the display name. Empty means the ID is used.
	Name string

	// Command is the command line to execute, parsed with shell word
	// splitting rules.
	Command string

	// Timeout is the per-hook wall clock budget. Zero means DefaultTimeout.
	Timeout time.Duration

	// DependsOn lists hook IDs that must finish before this hook starts.
	// Dependencies order scheduling only; a failed dependency does not
	// prevent this hook from running.
	DependsOn []string

	// ConfigPath optionally points at the tool's configuration file. Its
	// content participates in the cache fingerprint.
	ConfigPath string

	// Files optionally restricts the hook's fingerprint to files matching
	// this glob pattern, relative to the project directory.
	Files string

	// Stage is the strategy this hook belongs to.
	Stage Stage
}

// DisplayName returns the name shown in output and logs.
func (d Definition) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// EffectiveTimeout returns the timeout to apply when executing the hook.
func (d Definition) EffectiveTimeout() time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	return DefaultTimeout
}

// Strategy is an ordered collection of hooks for one stage. The order of
// Hooks is the definition order: results are always returned in this order
// regardless of how execution interleaves.
type Strategy struct {
	Stage Stage
	Hooks []Definition
}

// HookIDs returns the IDs of all hooks in definition order.
func (s *Strategy) HookIDs() []string {
	ids := make([]string, len(s.Hooks))
	for i, h := range s.Hooks {
		ids[i] = h.ID
	}
	return ids
}

// Status is the terminal outcome of one hook execution.
type Status string

const (
	// StatusPassed indicates the tool ran and exited zero.
	StatusPassed Status = "passed"

	// StatusFailed indicates the tool ran and exited non-zero.
	StatusFailed Status = "failed"

	// StatusTimeout indicates the tool exceeded its wall clock budget.
	StatusTimeout Status = "timeout"

	// StatusError indicates the tool could not be invoked at all.
	StatusError Status = "error"
)

// String returns the status name.
func (s Status) String() string {
	return string(s)
}

// Result is the outcome of executing (or cache-serving) a single hook.
type Result struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Status         Status        `json:"status"`
	Duration       time.Duration `json:"duration"`
	IssuesFound    []string      `json:"issues_found,omitempty"`
	FilesProcessed int           `json:"files_processed"`
	Stage          Stage         `json:"stage"`

	// CacheHit is true when the result was served from the cache rather
	// than executed. Duration then reflects the original run.
	CacheHit bool `json:"cache_hit,omitempty"`
}

// Passed reports whether the hook completed successfully.
func (r Result) Passed() bool {
	return r.Status == StatusPassed
}
