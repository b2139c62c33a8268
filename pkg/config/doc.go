// Package config provides configuration management for budgetgate.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention BUDGETGATE_SECTION_FIELD.
// For example:
//
//   - BUDGETGATE_SERVER_HTTP_LISTEN_ADDRESS overrides server.http_listen_address
//   - BUDGETGATE_EVICTION_SCHEDULE overrides eviction.schedule
//   - BUDGETGATE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	server:
//	  http_listen_address: "127.0.0.1:8080"
//	  grpc_listen_address: "127.0.0.1:9090"
//
//	budgets:
//	  symbolication-native:
//	    budget: 5.0
//	    window: 2m
//	    bucket_size: 10s
//	    backoff: 5m
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// Budget entries map config names to budgeting parameters; the set of
// names is fixed for the lifetime of the process. Changing them requires
// a restart, which the file watcher in watcher.go advises about.
package config
