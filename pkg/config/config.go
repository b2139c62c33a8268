package config

import (
	"time"

	"spendwatch/budgetgate/pkg/budget"
)

// Config is the root configuration structure for budgetgate. It contains
// all configuration sections for the front-end servers, the budgeting
// configs, eviction tuning, and telemetry settings.
type Config struct {
	// Server contains listener and timeout configuration for the HTTP
	// and gRPC front ends.
	Server ServerConfig `yaml:"server"`

	// Budgets maps config names to budgeting parameters. Keys are the
	// config names clients send (e.g., "symbolication-native").
	Budgets map[string]BudgetConfig `yaml:"budgets"`

	// Eviction contains tuning for the stale-entry sweeper.
	Eviction EvictionConfig `yaml:"eviction"`

	// Telemetry contains configuration for observability including
	// logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP and gRPC servers.
type ServerConfig struct {
	// HTTPListenAddress is the address and port for the HTTP front end.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	HTTPListenAddress string `yaml:"http_listen_address"`

	// GRPCListenAddress is the address and port for the gRPC front end.
	// An empty value after defaulting disables the gRPC server.
	// Default: "127.0.0.1:9090"
	GRPCListenAddress string `yaml:"grpc_listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of
	// the response. A zero or negative value means no timeout.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are dropped.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// BudgetConfig contains the budgeting parameters for one config name.
type BudgetConfig struct {
	// Budget is the spend threshold. A project whose window total is
	// strictly greater than this exceeds its budget.
	Budget float64 `yaml:"budget"`

	// Window is the length of the sliding window over which spend is
	// summed.
	// Default: 2m
	Window time.Duration `yaml:"window"`

	// BucketSize is the granularity of the window's buckets. Must
	// evenly relate to the window in practice; any positive value no
	// larger than the window is accepted.
	// Default: 10s
	BucketSize time.Duration `yaml:"bucket_size"`

	// Backoff is the minimum time between state transitions for one
	// project.
	// Default: 5m
	Backoff time.Duration `yaml:"backoff"`
}

// EvictionConfig contains tuning for the stale-entry sweeper.
type EvictionConfig struct {
	// Schedule is a cron expression or descriptor for the sweep cadence.
	// Examples: "@every 30s", "*/5 * * * *".
	// Default: "@every 30s"
	Schedule string `yaml:"schedule"`

	// Idle is the minimum time a project entry must go untouched before
	// it is eligible for eviction.
	// Default: 5m
	Idle time.Duration `yaml:"idle"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is exposed.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus scrape endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// MetricsEnabled reports whether the metrics endpoint should be served,
// treating an unset value as enabled.
func (m MetricsConfig) MetricsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// BudgetParams converts this entry to the engine's parameter struct.
func (b BudgetConfig) BudgetParams() budget.Config {
	return budget.Config{
		Budget:     b.Budget,
		Window:     b.Window,
		BucketSize: b.BucketSize,
		Backoff:    b.Backoff,
	}
}

// BudgetParams converts all configured budgets to engine parameters,
// keyed by config name.
func (c *Config) BudgetParams() map[string]budget.Config {
	out := make(map[string]budget.Config, len(c.Budgets))
	for name, b := range c.Budgets {
		out[name] = b.BudgetParams()
	}
	return out
}
