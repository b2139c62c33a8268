package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultHTTPListenAddress = "127.0.0.1:8080"
	DefaultGRPCListenAddress = "127.0.0.1:9090"
	DefaultReadTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultShutdownTimeout   = 15 * time.Second
	DefaultMaxHeaderBytes    = 1048576 // 1MB

	// Budget defaults
	DefaultBudgetWindow     = 2 * time.Minute
	DefaultBudgetBucketSize = 10 * time.Second
	DefaultBudgetBackoff    = 5 * time.Minute

	// Eviction defaults
	DefaultEvictionSchedule = "@every 30s"
	DefaultEvictionIdle     = 5 * time.Minute

	// Telemetry defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"
	DefaultMetricsPath   = "/metrics"
)

// ApplyDefaults applies default values to a Config struct. It sets
// defaults for any fields that have zero values. This function is
// idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.HTTPListenAddress == "" {
		cfg.Server.HTTPListenAddress = DefaultHTTPListenAddress
	}
	if cfg.Server.GRPCListenAddress == "" {
		cfg.Server.GRPCListenAddress = DefaultGRPCListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	for name, b := range cfg.Budgets {
		if b.Window == 0 {
			b.Window = DefaultBudgetWindow
		}
		if b.BucketSize == 0 {
			b.BucketSize = DefaultBudgetBucketSize
		}
		if b.Backoff == 0 {
			b.Backoff = DefaultBudgetBackoff
		}
		cfg.Budgets[name] = b
	}

	if cfg.Eviction.Schedule == "" {
		cfg.Eviction.Schedule = DefaultEvictionSchedule
	}
	if cfg.Eviction.Idle == 0 {
		cfg.Eviction.Idle = DefaultEvictionIdle
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
