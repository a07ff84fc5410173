package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/quillworks/preflight/internal/errors"
)

// ProjectFileName is the per-project configuration file, read from the
// project root.
const ProjectFileName = ".preflight.yaml"

// LegacyParams carries the optional constructor parameters that predate the
// resolved Orchestration config. Nil fields mean "not specified".
type LegacyParams struct {
	EnableOrchestration *bool
	OrchestrationMode   *string
	EnableCaching       *bool
	CacheBackend        *string
}

// Settings supplies process-wide defaults for enable/mode when neither an
// explicit config nor legacy parameters specify them. Typically sourced from
// the user config via SettingsFromConfig.
type Settings struct {
	EnableOrchestration bool
	OrchestrationMode   string
}

// DefaultSettings returns the process defaults used when no user config is
// available: orchestration off, advanced mode.
func DefaultSettings() Settings {
	return Settings{
		EnableOrchestration: false,
		OrchestrationMode:   ModeAdvanced,
	}
}

// SettingsFromConfig extracts process-wide defaults from a loaded user config.
func SettingsFromConfig(cfg *Config) Settings {
	if cfg == nil {
		return DefaultSettings()
	}
	return Settings{
		EnableOrchestration: cfg.Orchestration.Enable,
		OrchestrationMode:   cfg.Orchestration.Mode,
	}
}

// ProjectOrchestration mirrors the project file's orchestration mapping.
// Pointer fields distinguish declared values from absent ones, which matters
// for the selective overrides in Resolve.
type ProjectOrchestration struct {
	Enable                    *bool   `yaml:"enable"`
	Mode                      *string `yaml:"mode"`
	EnableCaching             *bool   `yaml:"enable_caching"`
	CacheBackend              *string `yaml:"cache_backend"`
	CacheTTLSeconds           *int    `yaml:"cache_ttl"`
	MaxParallelHooks          *int    `yaml:"max_parallel_hooks"`
	EnableAdaptiveExecution   *bool   `yaml:"enable_adaptive_execution"`
	EnableStrategyParallelism *bool   `yaml:"enable_strategy_parallelism"`
	MaxConcurrentStrategies   *int    `yaml:"max_concurrent_strategies"`
}

// projectFile is the subset of the project file this package reads. Other
// sections (hooks) belong to the strategy loader.
type projectFile struct {
	Orchestration *ProjectOrchestration `yaml:"orchestration"`
}

// LoadProjectOrchestration reads the orchestration mapping from the project
// file in dir. A missing file, or a file without an orchestration section,
// returns (nil, nil). A file that cannot be read or parsed is a ConfigError.
func LoadProjectOrchestration(dir string) (*ProjectOrchestration, error) {
	path := filepath.Join(dir, ProjectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewConfigError("cannot read project file", err).WithSource(path)
	}

	var pf projectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, errors.NewConfigError("cannot parse project file", err).WithSource(path)
	}
	return pf.Orchestration, nil
}

// Resolve merges the three orchestration config sources into one effective,
// validated Orchestration value. Strongest source first:
//
//  1. explicit — wins outright when non-nil. Legacy parameters and the
//     project file are ignored entirely; zero-valued numeric and string
//     fields are normalized to defaults before validation. Boolean fields
//     mean what they say (an explicit config is a complete value).
//  2. file — declared fields form the base. The legacy enable/mode
//     parameters, when set, selectively override the corresponding file
//     fields; undeclared fields fall back to the defaults below.
//  3. defaults — DefaultOrchestration adjusted by the process-wide settings
//     (enable/mode) and any legacy parameters.
//
// Validation runs on the result regardless of which source supplied it.
func Resolve(explicit *Orchestration, file *ProjectOrchestration, legacy LegacyParams, settings Settings) (Orchestration, error) {
	if explicit != nil {
		cfg := *explicit
		cfg.normalize()
		if err := cfg.validate("explicit"); err != nil {
			return Orchestration{}, err
		}
		return cfg, nil
	}

	// Base: process defaults adjusted by legacy constructor parameters.
	cfg := DefaultOrchestration()
	cfg.Enable = settings.EnableOrchestration
	if settings.OrchestrationMode != "" {
		cfg.Mode = settings.OrchestrationMode
	}
	if legacy.EnableCaching != nil {
		cfg.EnableCaching = *legacy.EnableCaching
	}
	if legacy.CacheBackend != nil {
		cfg.CacheBackend = *legacy.CacheBackend
	}
	if legacy.EnableOrchestration != nil {
		cfg.Enable = *legacy.EnableOrchestration
	}
	if legacy.OrchestrationMode != nil {
		cfg.Mode = *legacy.OrchestrationMode
	}

	source := "defaults"
	if file != nil {
		source = "project_file"
		file.apply(&cfg)

		// Legacy enable/mode selectively override the file, the other legacy
		// parameters do not.
		if legacy.EnableOrchestration != nil {
			cfg.Enable = *legacy.EnableOrchestration
		}
		if legacy.OrchestrationMode != nil {
			cfg.Mode = *legacy.OrchestrationMode
		}
	}

	if err := cfg.validate(source); err != nil {
		return Orchestration{}, err
	}
	return cfg, nil
}

// apply copies every declared field onto cfg.
func (p *ProjectOrchestration) apply(cfg *Orchestration) {
	if p.Enable != nil {
		cfg.Enable = *p.Enable
	}
	if p.Mode != nil {
		cfg.Mode = *p.Mode
	}
	if p.EnableCaching != nil {
		cfg.EnableCaching = *p.EnableCaching
	}
	if p.CacheBackend != nil {
		cfg.CacheBackend = *p.CacheBackend
	}
	if p.CacheTTLSeconds != nil {
		cfg.CacheTTLSeconds = *p.CacheTTLSeconds
	}
	if p.MaxParallelHooks != nil {
		cfg.MaxParallelHooks = *p.MaxParallelHooks
	}
	if p.EnableAdaptiveExecution != nil {
		cfg.EnableAdaptiveExecution = *p.EnableAdaptiveExecution
	}
	if p.EnableStrategyParallelism != nil {
		cfg.EnableStrategyParallelism = *p.EnableStrategyParallelism
	}
	if p.MaxConcurrentStrategies != nil {
		cfg.MaxConcurrentStrategies = *p.MaxConcurrentStrategies
	}
}

// normalize fills zero-valued numeric and string fields with defaults.
// Boolean fields are left untouched: false is a meaningful setting.
func (o *Orchestration) normalize() {
	defaults := DefaultOrchestration()
	if o.Mode == "" {
		o.Mode = defaults.Mode
	}
	if o.CacheBackend == "" {
		o.CacheBackend = defaults.CacheBackend
	}
	if o.CacheTTLSeconds == 0 {
		o.CacheTTLSeconds = defaults.CacheTTLSeconds
	}
	if o.MaxParallelHooks == 0 {
		o.MaxParallelHooks = defaults.MaxParallelHooks
	}
	if o.MaxConcurrentStrategies == 0 {
		o.MaxConcurrentStrategies = defaults.MaxConcurrentStrategies
	}
}

// validate checks the resolved values, tagging errors with the source that
// produced them.
func (o *Orchestration) validate(source string) error {
	if !IsValidMode(o.Mode) {
		return errors.NewConfigError(
			fmt.Sprintf("must be one of: %v", ValidModes()), errors.ErrInvalidConfig).
			WithField("orchestration.mode").WithValue(o.Mode).WithSource(source)
	}
	if !IsValidBackend(o.CacheBackend) {
		return errors.NewConfigError(
			fmt.Sprintf("must be one of: %v", ValidBackends()), errors.ErrInvalidConfig).
			WithField("orchestration.cache_backend").WithValue(o.CacheBackend).WithSource(source)
	}
	if o.CacheTTLSeconds <= 0 {
		return errors.NewConfigError("must be positive", errors.ErrInvalidConfig).
			WithField("orchestration.cache_ttl").WithValue(o.CacheTTLSeconds).WithSource(source)
	}
	if o.MaxParallelHooks < 1 {
		return errors.NewConfigError("must be at least 1", errors.ErrInvalidConfig).
			WithField("orchestration.max_parallel_hooks").WithValue(o.MaxParallelHooks).WithSource(source)
	}
	if o.MaxConcurrentStrategies < 1 {
		return errors.NewConfigError("must be at least 1", errors.ErrInvalidConfig).
			WithField("orchestration.max_concurrent_strategies").WithValue(o.MaxConcurrentStrategies).WithSource(source)
	}
	return nil
}
