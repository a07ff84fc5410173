package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "orchestration.max_parallel_hooks")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Orchestration config
	errors = append(errors, c.validateOrchestration()...)

	// Validate Logging config
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateOrchestration validates the Orchestration section
func (c *Config) validateOrchestration() []ValidationError {
	var errors []ValidationError

	if c.Orchestration.Mode != "" && !IsValidMode(c.Orchestration.Mode) {
		errors = append(errors, ValidationError{
			Field:   "orchestration.mode",
			Value:   c.Orchestration.Mode,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidModes(), ", ")),
		})
	}

	if c.Orchestration.CacheBackend != "" && !IsValidBackend(c.Orchestration.CacheBackend) {
		errors = append(errors, ValidationError{
			Field:   "orchestration.cache_backend",
			Value:   c.Orchestration.CacheBackend,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidBackends(), ", ")),
		})
	}

	if c.Orchestration.CacheTTLSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "orchestration.cache_ttl",
			Value:   c.Orchestration.CacheTTLSeconds,
			Message: "must be at least 1 second",
		})
	}

	// Reasonable upper bound: results older than a day are stale for any
	// plausible local workflow
	const maxCacheTTLSeconds = 86400
	if c.Orchestration.CacheTTLSeconds > maxCacheTTLSeconds {
		errors = append(errors, ValidationError{
			Field:   "orchestration.cache_ttl",
			Value:   c.Orchestration.CacheTTLSeconds,
			Message: fmt.Sprintf("exceeds maximum of %d seconds (24h)", maxCacheTTLSeconds),
		})
	}

	const maxParallelLimit = 64
	if c.Orchestration.MaxParallelHooks < 1 {
		errors = append(errors, ValidationError{
			Field:   "orchestration.max_parallel_hooks",
			Value:   c.Orchestration.MaxParallelHooks,
			Message: "must be at least 1",
		})
	}
	if c.Orchestration.MaxParallelHooks > maxParallelLimit {
		errors = append(errors, ValidationError{
			Field:   "orchestration.max_parallel_hooks",
			Value:   c.Orchestration.MaxParallelHooks,
			Message: fmt.Sprintf("exceeds maximum of %d", maxParallelLimit),
		})
	}

	if c.Orchestration.MaxConcurrentStrategies < 1 {
		errors = append(errors, ValidationError{
			Field:   "orchestration.max_concurrent_strategies",
			Value:   c.Orchestration.MaxConcurrentStrategies,
			Message: "must be at least 1",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	validLevel := false
	for _, level := range ValidLogLevels() {
		if c.Logging.Level == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative (0 disables rotation)",
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
