package service

import (
	"fmt"
	"sort"

	"spendwatch/budgetgate/pkg/budget"
)

// Registry is the fixed mapping from config name to budgeting
// parameters. It is built once at startup and never mutated, so
// lookups need no locking.
type Registry struct {
	configs map[string]budget.Config
}

// NewRegistry validates every config and builds the registry.
func NewRegistry(configs map[string]budget.Config) (*Registry, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("at least one budgeting config is required")
	}
	out := make(map[string]budget.Config, len(configs))
	for name, cfg := range configs {
		if name == "" {
			return nil, fmt.Errorf("config name must not be empty")
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config %q: %w", name, err)
		}
		out[name] = cfg
	}
	return &Registry{configs: out}, nil
}

// Lookup returns the parameters registered under name.
func (r *Registry) Lookup(name string) (budget.Config, bool) {
	cfg, ok := r.configs[name]
	return cfg, ok
}

// Names returns the registered config names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered configs.
func (r *Registry) Len() int { return len(r.configs) }
