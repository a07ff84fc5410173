// Package errors provides centralized error definitions and error handling utilities
// for the preflight codebase. It defines domain-specific errors, error constructors
// with context wrapping, and error classification helpers.
//
// # Error Types
//
// Domain-specific errors represent failures from specific subsystems:
//   - ConfigError: invalid configuration, project file, or hook graph
//   - InitError: orchestrator lazy initialization failures
//   - StrategyError: strategy-level execution failures
//
// Individual hook outcomes (failed, timed out, tool missing) are never errors;
// they are hook.Result values. Errors in this package mean the scheduler itself
// could not do its job.
//
// # Usage
//
// Creating errors:
//
//	// Domain-specific error
//	err := errors.NewConfigError("max_parallel_hooks must be at least 1", errors.ErrInvalidConfig)
//
//	// With context wrapping
//	err := errors.NewConfigError("unknown dependency", errors.ErrUnknownDependency).
//		WithField("depends_on").WithValue("missing-hook")
//
// Checking errors:
//
//	// Check for specific sentinel errors
//	if errors.Is(err, errors.ErrInvalidConfig) { ... }
//
//	// Check for error types
//	var cfgErr *errors.ConfigError
//	if errors.As(err, &cfgErr) { ... }
//
//	// Use classification helpers
//	if errors.IsRetryable(err) { ... }
//	if errors.IsUserFacing(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Configuration-related sentinel errors
var (
	// ErrInvalidConfig indicates that a configuration value failed validation.
	ErrInvalidConfig = New("invalid configuration")
	// ErrDependencyCycle indicates a circular dependency between hooks.
	ErrDependencyCycle = New("dependency cycle detected")
	// ErrUnknownDependency indicates a hook depends on an ID that does not exist.
	ErrUnknownDependency = New("unknown dependency")
	// ErrUnknownStage indicates a strategy stage that is not defined.
	ErrUnknownStage = New("unknown strategy stage")
	// ErrDuplicateHook indicates two hooks in a strategy share an ID.
	ErrDuplicateHook = New("duplicate hook id")
)

// Orchestrator-related sentinel errors
var (
	// ErrNotInitialized indicates that the orchestrator has not been initialized.
	ErrNotInitialized = New("orchestrator not initialized")
	// ErrCacheUnavailable indicates that the cache backend could not be built.
	ErrCacheUnavailable = New("cache backend unavailable")
	// ErrExecutorUnavailable indicates that the executor could not be built.
	ErrExecutorUnavailable = New("executor unavailable")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrOperationFailed indicates a general operation failure.
	ErrOperationFailed = New("operation failed")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// PreflightError is the base interface for all preflight errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type PreflightError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	// This is used by errors.Is() for error comparison.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// ConfigError represents invalid configuration, whether from an explicit
// config object, the project file, or the hook dependency graph.
//
// Example:
//
//	err := errors.NewConfigError("must be at least 1", errors.ErrInvalidConfig)
//	err = err.WithField("max_parallel_hooks").WithValue(0)
//	fmt.Println(err) // "config error [field=max_parallel_hooks, value=0]: must be at least 1: invalid configuration"
type ConfigError struct {
	baseError
	Field  string
	Value  any
	Source string // "explicit", "project_file", or "defaults"
}

// NewConfigError creates a new ConfigError.
func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds the offending field name to the error context.
func (e *ConfigError) WithField(field string) *ConfigError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ConfigError) WithValue(value any) *ConfigError {
	e.Value = value
	return e
}

// WithSource records which configuration source produced the value.
func (e *ConfigError) WithSource(source string) *ConfigError {
	e.Source = source
	return e
}

// Error returns the formatted error message.
func (e *ConfigError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	if e.Source != "" {
		parts = append(parts, fmt.Sprintf("source=%s", e.Source))
	}

	prefix := "config error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("config error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ConfigError) Is(target error) bool {
	if _, ok := target.(*ConfigError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// InitError represents a failure to initialize the orchestrator or one of
// its components (cache backend, executor, history store).
//
// Example:
//
//	err := errors.NewInitError("building cache backend", errors.ErrCacheUnavailable)
//	err = err.WithComponent("cache")
type InitError struct {
	baseError
	Component string
}

// NewInitError creates a new InitError.
func NewInitError(message string, cause error) *InitError {
	return &InitError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityCritical,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithComponent adds the failing component name to the error context.
func (e *InitError) WithComponent(component string) *InitError {
	e.Component = component
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *InitError) WithRetryable(r bool) *InitError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *InitError) Error() string {
	prefix := "init error"
	if e.Component != "" {
		prefix = fmt.Sprintf("init error [component=%s]", e.Component)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *InitError) Is(target error) bool {
	if _, ok := target.(*InitError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// StrategyError represents a strategy-level execution failure: the scheduler
// could not run the strategy at all, as opposed to individual hooks failing.
//
// Example:
//
//	err := errors.NewStrategyError("wave computation failed", cause).WithStage("fast")
type StrategyError struct {
	baseError
	Stage string
}

// NewStrategyError creates a new StrategyError.
func NewStrategyError(message string, cause error) *StrategyError {
	return &StrategyError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithStage adds the strategy stage to the error context.
func (e *StrategyError) WithStage(stage string) *StrategyError {
	e.Stage = stage
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *StrategyError) WithRetryable(r bool) *StrategyError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *StrategyError) Error() string {
	prefix := "strategy error"
	if e.Stage != "" {
		prefix = fmt.Sprintf("strategy error [stage=%s]", e.Stage)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *StrategyError) Is(target error) bool {
	if _, ok := target.(*StrategyError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry. This checks for:
//   - Errors implementing PreflightError with IsRetryable() returning true
//   - Errors wrapping ErrTimeout
//
// Example:
//
//	if errors.IsRetryable(err) {
//	    time.Sleep(backoff)
//	    return retry(operation)
//	}
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var pferr PreflightError
	if As(err, &pferr) {
		return pferr.IsRetryable()
	}

	if Is(err, ErrTimeout) {
		return true
	}

	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
//
// Example:
//
//	if errors.IsUserFacing(err) {
//	    displayToUser(err.Error())
//	} else {
//	    displayToUser("An internal error occurred")
//	    log.Error("internal error", "err", err)
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var pferr PreflightError
	if As(err, &pferr) {
		return pferr.IsUserFacing()
	}

	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement PreflightError.
//
// Example:
//
//	switch errors.GetSeverity(err) {
//	case errors.SeverityCritical:
//	    log.Error("fatal", "err", err)
//	case errors.SeverityWarning:
//	    log.Warn("warning", "err", err)
//	}
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var pferr PreflightError
	if As(err, &pferr) {
		return pferr.Severity()
	}

	return SeverityError
}

// IsDomainError returns true if the error is a domain-specific error
// (ConfigError, InitError, or StrategyError).
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}

	var cfgErr *ConfigError
	var initErr *InitError
	var stratErr *StrategyError

	return As(err, &cfgErr) || As(err, &initErr) || As(err, &stratErr)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to resolve config")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to load strategy %s", stage)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
