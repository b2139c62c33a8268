package config

import (
	"fmt"
	"math"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "server.http_listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. It implements the error interface and provides access
// to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a
// ValidationError if any validation rules fail. All validation errors
// are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateBudgets(cfg.Budgets)...)
	errs = append(errs, validateEviction(&cfg.Eviction)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(s *ServerConfig) []FieldError {
	var errs []FieldError

	if s.HTTPListenAddress == "" {
		errs = append(errs, FieldError{"server.http_listen_address", "field is required"})
	} else if _, _, err := net.SplitHostPort(s.HTTPListenAddress); err != nil {
		errs = append(errs, FieldError{"server.http_listen_address", fmt.Sprintf("invalid address: %v", err)})
	}

	// gRPC is optional; validate the address only when set.
	if s.GRPCListenAddress != "" {
		if _, _, err := net.SplitHostPort(s.GRPCListenAddress); err != nil {
			errs = append(errs, FieldError{"server.grpc_listen_address", fmt.Sprintf("invalid address: %v", err)})
		}
	}

	if s.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{"server.max_header_bytes", "must not be negative"})
	}
	if s.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{"server.shutdown_timeout", "must not be negative"})
	}

	return errs
}

func validateBudgets(budgets map[string]BudgetConfig) []FieldError {
	var errs []FieldError

	if len(budgets) == 0 {
		errs = append(errs, FieldError{"budgets", "at least one budgeting config is required"})
		return errs
	}

	for name, b := range budgets {
		field := func(f string) string { return fmt.Sprintf("budgets.%s.%s", name, f) }

		if name == "" {
			errs = append(errs, FieldError{"budgets", "config name must not be empty"})
			continue
		}
		if math.IsNaN(b.Budget) || math.IsInf(b.Budget, 0) {
			errs = append(errs, FieldError{field("budget"), "must be a finite number"})
		} else if b.Budget <= 0 {
			errs = append(errs, FieldError{field("budget"), "must be greater than zero"})
		}
		if b.Window <= 0 {
			errs = append(errs, FieldError{field("window"), "must be greater than zero"})
		}
		if b.BucketSize <= 0 {
			errs = append(errs, FieldError{field("bucket_size"), "must be greater than zero"})
		} else if b.Window > 0 && b.BucketSize > b.Window {
			errs = append(errs, FieldError{field("bucket_size"), "must not exceed the window"})
		}
		if b.Backoff < 0 {
			errs = append(errs, FieldError{field("backoff"), "must not be negative"})
		}
	}

	return errs
}

func validateEviction(e *EvictionConfig) []FieldError {
	var errs []FieldError

	if e.Schedule != "" {
		if _, err := cron.ParseStandard(e.Schedule); err != nil {
			errs = append(errs, FieldError{"eviction.schedule", fmt.Sprintf("invalid cron schedule: %v", err)})
		}
	}
	if e.Idle < 0 {
		errs = append(errs, FieldError{"eviction.idle", "must not be negative"})
	}

	return errs
}

func validateTelemetry(t *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch t.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level",
			fmt.Sprintf("invalid level %q (must be debug, info, warn, or error)", t.Logging.Level)})
	}

	switch t.Logging.Format {
	case "", "json", "text":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format",
			fmt.Sprintf("invalid format %q (must be json or text)", t.Logging.Format)})
	}

	if t.Metrics.Path != "" && !strings.HasPrefix(t.Metrics.Path, "/") {
		errs = append(errs, FieldError{"telemetry.metrics.path", "must start with /"})
	}

	return errs
}
