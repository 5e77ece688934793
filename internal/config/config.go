// Package config loads the hwansaengd daemon configuration from an
// optional YAML file, environment variables and built-in defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/teamPaprika/hwansaeng"
)

// Resource types the daemon can pool.
const (
	ResourceSynthetic = "synthetic"
	ResourcePostgres  = "postgres"
)

// Config holds all configuration for the daemon.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Pool      PoolConfig      `mapstructure:"pool"`
	Workload  WorkloadConfig  `mapstructure:"workload"`
	Resource  ResourceConfig  `mapstructure:"resource"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Debug        bool          `mapstructure:"debug"`
	Version      string        `mapstructure:"version"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// PoolConfig holds the recycling pool settings.
type PoolConfig struct {
	Name          string `mapstructure:"name"`
	WaitInSeconds int    `mapstructure:"wait_in_seconds"`
	MaxPoolSize   int    `mapstructure:"max_pool_size"`
}

// PoolSettings converts the section into the pool's own Config.
func (c PoolConfig) PoolSettings() hwansaeng.Config {
	return hwansaeng.Config{
		WaitInSeconds: c.WaitInSeconds,
		MaxPoolSize:   c.MaxPoolSize,
	}
}

// WorkloadConfig drives the synthetic acquire/hold/release loop.
type WorkloadConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Workers  int           `mapstructure:"workers"`
	Keys     int           `mapstructure:"keys"`
	HoldTime time.Duration `mapstructure:"hold_time"`
	Interval time.Duration `mapstructure:"interval"`
}

// ResourceConfig selects what the daemon pools.
type ResourceConfig struct {
	Type     string         `mapstructure:"type"` // synthetic, postgres
	Database DatabaseConfig `mapstructure:"database"`
}

// DatabaseConfig holds PostgreSQL configuration for the postgres
// resource type.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// TelemetryConfig holds OTLP tracing configuration.
type TelemetryConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Endpoint   string  `mapstructure:"endpoint"`
	SampleRate float64 `mapstructure:"sample_rate"`
	Insecure   bool    `mapstructure:"insecure"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Configuration file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/hwansaeng/")
	v.AddConfigPath("$HOME/.hwansaeng/")

	// Environment variables
	v.SetEnvPrefix("HWANSAENG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is acceptable, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints not expressible as defaults.
func (c *Config) Validate() error {
	if err := c.Pool.PoolSettings().Validate(); err != nil {
		return err
	}
	switch c.Resource.Type {
	case ResourceSynthetic, ResourcePostgres:
	default:
		return fmt.Errorf("unknown resource type %q", c.Resource.Type)
	}
	if c.Workload.Enabled && c.Workload.Workers <= 0 {
		return fmt.Errorf("workload.workers must be positive, got %d", c.Workload.Workers)
	}
	if c.Workload.Enabled && c.Workload.Keys <= 0 {
		return fmt.Errorf("workload.keys must be positive, got %d", c.Workload.Keys)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8292)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.version", "0.1.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	// Pool defaults
	v.SetDefault("pool.name", "default")
	v.SetDefault("pool.wait_in_seconds", 30)
	v.SetDefault("pool.max_pool_size", 64)

	// Workload defaults
	v.SetDefault("workload.enabled", true)
	v.SetDefault("workload.workers", 4)
	v.SetDefault("workload.keys", 8)
	v.SetDefault("workload.hold_time", 50*time.Millisecond)
	v.SetDefault("workload.interval", 100*time.Millisecond)

	// Resource defaults
	v.SetDefault("resource.type", ResourceSynthetic)
	v.SetDefault("resource.database.host", "localhost")
	v.SetDefault("resource.database.port", 5432)
	v.SetDefault("resource.database.user", "hwansaeng")
	v.SetDefault("resource.database.password", "hwansaeng")
	v.SetDefault("resource.database.database", "hwansaeng")
	v.SetDefault("resource.database.ssl_mode", "disable")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "localhost:4318")
	v.SetDefault("telemetry.sample_rate", 1.0)
	v.SetDefault("telemetry.insecure", true)
}
