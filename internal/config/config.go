// Copyright 2025 James Ross
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Plugins struct {
	Dir                string        `mapstructure:"dir"`
	MaxPlugins         int           `mapstructure:"max_plugins"`
	MaxMemoryMB        int           `mapstructure:"max_memory_mb"`
	MaxExecutionMs     int           `mapstructure:"max_execution_ms"`
	MaxGoroutines      int           `mapstructure:"max_goroutines"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	HeartbeatPeriod    time.Duration `mapstructure:"heartbeat_period"`
	DevelopmentMode    bool          `mapstructure:"development_mode"`
	BundledPluginsGlob string        `mapstructure:"bundled_plugins_glob"`
}

type Search struct {
	FrecencyHalfLife time.Duration `mapstructure:"frecency_half_life"`
	MaxResults       int           `mapstructure:"max_results"`
}

type Repository struct {
	Path              string `mapstructure:"path"`
	MigrationsTableID string `mapstructure:"migrations_table_id"`
}

type Shortcuts struct {
	MetaIsMainModifier bool `mapstructure:"meta_is_main_modifier"`
}

type RPC struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

type TracingConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	Endpoint         string  `mapstructure:"endpoint"`
	Environment      string  `mapstructure:"environment"`
	SamplingStrategy string  `mapstructure:"sampling_strategy"`
	SamplingRate     float64 `mapstructure:"sampling_rate"`
}

// Tracing is a backwards-compatible alias
type Tracing = TracingConfig

type ObservabilityConfig struct {
	MetricsPort int           `mapstructure:"metrics_port"`
	LogLevel    string        `mapstructure:"log_level"`
	Tracing     TracingConfig `mapstructure:"tracing"`
}

// Observability is a backwards-compatible alias
type Observability = ObservabilityConfig

type Config struct {
	Plugins       Plugins       `mapstructure:"plugins"`
	Search        Search        `mapstructure:"search"`
	Repository    Repository    `mapstructure:"repository"`
	Shortcuts     Shortcuts     `mapstructure:"shortcuts"`
	RPC           RPC           `mapstructure:"rpc"`
	Observability Observability `mapstructure:"observability"`
}

func defaultConfig() *Config {
	return &Config{
		Plugins: Plugins{
			Dir:                "./plugins",
			MaxPlugins:         64,
			MaxMemoryMB:        64,
			MaxExecutionMs:     5000,
			MaxGoroutines:      16,
			IdleTimeout:        5 * time.Minute,
			HeartbeatPeriod:    30 * time.Second,
			DevelopmentMode:    false,
			BundledPluginsGlob: "bundled/*",
		},
		Search: Search{
			FrecencyHalfLife: 72 * time.Hour,
			MaxResults:       50,
		},
		Repository: Repository{
			Path:              "./data/gauntlet.db",
			MigrationsTableID: "launcherd_schema_migrations",
		},
		Shortcuts: Shortcuts{
			MetaIsMainModifier: true,
		},
		RPC: RPC{
			ListenAddr: "127.0.0.1:7463",
		},
		Observability: Observability{
			MetricsPort: 9090,
			LogLevel:    "info",
			Tracing:     Tracing{Enabled: false},
		},
	}
}

// Load reads configuration from a YAML file with LAUNCHERD_-prefixed env overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("LAUNCHERD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := defaultConfig()
	v.SetDefault("plugins.dir", def.Plugins.Dir)
	v.SetDefault("plugins.max_plugins", def.Plugins.MaxPlugins)
	v.SetDefault("plugins.max_memory_mb", def.Plugins.MaxMemoryMB)
	v.SetDefault("plugins.max_execution_ms", def.Plugins.MaxExecutionMs)
	v.SetDefault("plugins.max_goroutines", def.Plugins.MaxGoroutines)
	v.SetDefault("plugins.idle_timeout", def.Plugins.IdleTimeout)
	v.SetDefault("plugins.heartbeat_period", def.Plugins.HeartbeatPeriod)
	v.SetDefault("plugins.development_mode", def.Plugins.DevelopmentMode)
	v.SetDefault("plugins.bundled_plugins_glob", def.Plugins.BundledPluginsGlob)

	v.SetDefault("search.frecency_half_life", def.Search.FrecencyHalfLife)
	v.SetDefault("search.max_results", def.Search.MaxResults)

	v.SetDefault("repository.path", def.Repository.Path)
	v.SetDefault("repository.migrations_table_id", def.Repository.MigrationsTableID)

	v.SetDefault("shortcuts.meta_is_main_modifier", def.Shortcuts.MetaIsMainModifier)

	v.SetDefault("rpc.listen_addr", def.RPC.ListenAddr)

	v.SetDefault("observability.metrics_port", def.Observability.MetricsPort)
	v.SetDefault("observability.log_level", def.Observability.LogLevel)
	v.SetDefault("observability.tracing.enabled", def.Observability.Tracing.Enabled)
	v.SetDefault("observability.tracing.endpoint", def.Observability.Tracing.Endpoint)

	// Optional file read
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks config constraints and returns an error on invalid settings.
func Validate(cfg *Config) error {
	if cfg.Plugins.MaxPlugins < 1 {
		return fmt.Errorf("plugins.max_plugins must be >= 1")
	}
	if cfg.Plugins.MaxMemoryMB < 1 {
		return fmt.Errorf("plugins.max_memory_mb must be >= 1")
	}
	if cfg.Plugins.MaxExecutionMs < 1 {
		return fmt.Errorf("plugins.max_execution_ms must be >= 1")
	}
	if cfg.Plugins.IdleTimeout < 5*time.Second {
		return fmt.Errorf("plugins.idle_timeout must be >= 5s")
	}
	if cfg.Search.FrecencyHalfLife <= 0 {
		return fmt.Errorf("search.frecency_half_life must be > 0")
	}
	if cfg.Search.MaxResults < 1 {
		return fmt.Errorf("search.max_results must be >= 1")
	}
	if cfg.Repository.Path == "" {
		return fmt.Errorf("repository.path must be set")
	}
	if cfg.Observability.MetricsPort <= 0 || cfg.Observability.MetricsPort > 65535 {
		return fmt.Errorf("observability.metrics_port must be 1..65535")
	}
	return nil
}
