package config

import (
	"math"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := &Config{
		Budgets: map[string]BudgetConfig{
			"symbolication-native": {Budget: 5.0},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "missing http listen address",
			mutate:    func(c *Config) { c.Server.HTTPListenAddress = "" },
			wantField: "server.http_listen_address",
		},
		{
			name:      "malformed http listen address",
			mutate:    func(c *Config) { c.Server.HTTPListenAddress = "no-port" },
			wantField: "server.http_listen_address",
		},
		{
			name:      "malformed grpc listen address",
			mutate:    func(c *Config) { c.Server.GRPCListenAddress = "no-port" },
			wantField: "server.grpc_listen_address",
		},
		{
			name:      "negative max header bytes",
			mutate:    func(c *Config) { c.Server.MaxHeaderBytes = -1 },
			wantField: "server.max_header_bytes",
		},
		{
			name:      "no budgets",
			mutate:    func(c *Config) { c.Budgets = nil },
			wantField: "budgets",
		},
		{
			name: "zero budget",
			mutate: func(c *Config) {
				b := c.Budgets["symbolication-native"]
				b.Budget = 0
				c.Budgets["symbolication-native"] = b
			},
			wantField: "budgets.symbolication-native.budget",
		},
		{
			name: "nan budget",
			mutate: func(c *Config) {
				b := c.Budgets["symbolication-native"]
				b.Budget = math.NaN()
				c.Budgets["symbolication-native"] = b
			},
			wantField: "budgets.symbolication-native.budget",
		},
		{
			name: "bucket larger than window",
			mutate: func(c *Config) {
				b := c.Budgets["symbolication-native"]
				b.Window = 10 * time.Second
				b.BucketSize = time.Minute
				c.Budgets["symbolication-native"] = b
			},
			wantField: "budgets.symbolication-native.bucket_size",
		},
		{
			name: "negative backoff",
			mutate: func(c *Config) {
				b := c.Budgets["symbolication-native"]
				b.Backoff = -time.Second
				c.Budgets["symbolication-native"] = b
			},
			wantField: "budgets.symbolication-native.backoff",
		},
		{
			name:      "bad eviction schedule",
			mutate:    func(c *Config) { c.Eviction.Schedule = "every day at noon" },
			wantField: "eviction.schedule",
		},
		{
			name:      "bad logging level",
			mutate:    func(c *Config) { c.Telemetry.Logging.Level = "verbose" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "bad logging format",
			mutate:    func(c *Config) { c.Telemetry.Logging.Format = "xml" },
			wantField: "telemetry.logging.format",
		},
		{
			name:      "metrics path without slash",
			mutate:    func(c *Config) { c.Telemetry.Metrics.Path = "metrics" },
			wantField: "telemetry.metrics.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error %q does not mention field %q", err.Error(), tt.wantField)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.HTTPListenAddress = ""
	cfg.Telemetry.Logging.Level = "verbose"

	err := Validate(cfg)
	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("error type = %T, want ValidationError", err)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("len(Errors) = %d, want 2", len(verr.Errors))
	}
}

func TestFieldError_Error(t *testing.T) {
	e := FieldError{Field: "server.read_timeout", Message: "must not be negative"}
	if got := e.Error(); got != "server.read_timeout: must not be negative" {
		t.Errorf("Error() = %q", got)
	}
}
