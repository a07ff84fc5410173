package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete Preflight configuration
type Config struct {
	Orchestration Orchestration `mapstructure:"orchestration"`
	Logging       LoggingConfig `mapstructure:"logging"`
	Paths         PathsConfig   `mapstructure:"paths"`
}

// Orchestration controls how hooks are scheduled and executed.
// The same keys appear in the user config (as process-wide defaults) and in
// the project file's orchestration mapping (as project overrides).
type Orchestration struct {
	// Enable turns the orchestrated execution path on. When false, strategies
	// run through the legacy sequential executor (default: false)
	Enable bool `mapstructure:"enable" yaml:"enable"`
	// Mode selects the scheduling mode: "legacy" runs each strategy as a plain
	// sequential pass-through, "advanced" schedules hooks in dependency waves
	// (default: "advanced")
	Mode string `mapstructure:"mode" yaml:"mode"`
	// EnableCaching reuses prior hook results keyed by input fingerprint (default: true)
	EnableCaching bool `mapstructure:"enable_caching" yaml:"enable_caching"`
	// CacheBackend is the cache store: "memory" or "proxy" (default: "memory")
	CacheBackend string `mapstructure:"cache_backend" yaml:"cache_backend"`
	// CacheTTLSeconds is how long cached results stay valid, in seconds (default: 3600)
	CacheTTLSeconds int `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	// MaxParallelHooks bounds concurrent hooks within a dependency wave (default: 4)
	MaxParallelHooks int `mapstructure:"max_parallel_hooks" yaml:"max_parallel_hooks"`
	// EnableAdaptiveExecution starts historically slow hooks first within a
	// wave to shorten the critical path (default: true)
	EnableAdaptiveExecution bool `mapstructure:"enable_adaptive_execution" yaml:"enable_adaptive_execution"`
	// EnableStrategyParallelism lets RunHooks execute the fast and
	// comprehensive strategies concurrently (default: true)
	EnableStrategyParallelism bool `mapstructure:"enable_strategy_parallelism" yaml:"enable_strategy_parallelism"`
	// MaxConcurrentStrategies bounds concurrent strategies when strategy
	// parallelism is enabled (default: 2)
	MaxConcurrentStrategies int `mapstructure:"max_concurrent_strategies" yaml:"max_concurrent_strategies"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// PathsConfig controls where Preflight stores run artifacts
type PathsConfig struct {
	// ArtifactsDir is the directory where logs and run history are written.
	// If empty, defaults to ".preflight" relative to the project root.
	// Can be an absolute path to keep artifacts out of the project tree.
	// Supports ~ for home directory expansion.
	ArtifactsDir string `mapstructure:"artifacts_dir"`
}

// CacheTTL returns the cache TTL as a time.Duration
func (o *Orchestration) CacheTTL() time.Duration {
	return time.Duration(o.CacheTTLSeconds) * time.Second
}

// ResolveArtifactsDir returns the resolved artifacts directory path.
// If ArtifactsDir is empty, it returns the default path relative to baseDir.
// If ArtifactsDir starts with ~, it expands to the user's home directory.
// If ArtifactsDir is a relative path, it's resolved relative to baseDir.
func (p *PathsConfig) ResolveArtifactsDir(baseDir string) string {
	if p.ArtifactsDir == "" {
		return filepath.Join(baseDir, ".preflight")
	}

	path := p.ArtifactsDir

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	// If relative path, resolve relative to baseDir
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Orchestration: DefaultOrchestration(),
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Paths: PathsConfig{
			ArtifactsDir: "", // Empty means use default: .preflight
		},
	}
}

// DefaultOrchestration returns the orchestration settings used when nothing
// else specifies a value
func DefaultOrchestration() Orchestration {
	return Orchestration{
		Enable:                    false, // Orchestrated path is opt-in
		Mode:                      ModeAdvanced,
		EnableCaching:             true,
		CacheBackend:              BackendMemory,
		CacheTTLSeconds:           3600, // 1 hour
		MaxParallelHooks:          4,
		EnableAdaptiveExecution:   true,
		EnableStrategyParallelism: true,
		MaxConcurrentStrategies:   2,
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Orchestration defaults
	viper.SetDefault("orchestration.enable", defaults.Orchestration.Enable)
	viper.SetDefault("orchestration.mode", defaults.Orchestration.Mode)
	viper.SetDefault("orchestration.enable_caching", defaults.Orchestration.EnableCaching)
	viper.SetDefault("orchestration.cache_backend", defaults.Orchestration.CacheBackend)
	viper.SetDefault("orchestration.cache_ttl", defaults.Orchestration.CacheTTLSeconds)
	viper.SetDefault("orchestration.max_parallel_hooks", defaults.Orchestration.MaxParallelHooks)
	viper.SetDefault("orchestration.enable_adaptive_execution", defaults.Orchestration.EnableAdaptiveExecution)
	viper.SetDefault("orchestration.enable_strategy_parallelism", defaults.Orchestration.EnableStrategyParallelism)
	viper.SetDefault("orchestration.max_concurrent_strategies", defaults.Orchestration.MaxConcurrentStrategies)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	// Paths defaults
	viper.SetDefault("paths.artifacts_dir", defaults.Paths.ArtifactsDir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "preflight")
	}
	// Fall back to ~/.config/preflight
	home, err := os.UserHomeDir()
	if err != nil {
		return ".preflight"
	}
	return filepath.Join(home, ".config", "preflight")
}

// ConfigFile returns the path to the user config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Orchestration mode values
const (
	ModeLegacy   = "legacy"
	ModeAdvanced = "advanced"
)

// Cache backend values
const (
	BackendMemory = "memory"
	BackendProxy  = "proxy"
)

// ValidModes returns the list of valid orchestration modes
func ValidModes() []string {
	return []string{ModeLegacy, ModeAdvanced}
}

// IsValidMode checks if the given orchestration mode is valid
func IsValidMode(mode string) bool {
	return slices.Contains(ValidModes(), mode)
}

// ValidBackends returns the list of valid cache backends
func ValidBackends() []string {
	return []string{BackendMemory, BackendProxy}
}

// IsValidBackend checks if the given cache backend is valid
func IsValidBackend(backend string) bool {
	return slices.Contains(ValidBackends(), backend)
}
