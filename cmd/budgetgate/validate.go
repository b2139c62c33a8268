package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"spendwatch/budgetgate/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load a configuration file, apply defaults and environment overrides,
and report whether the result is valid.

Examples:
  # Validate the default config file
  budgetgate validate

  # Validate a specific file
  budgetgate validate --config /etc/budgetgate/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Configuration valid: %s\n", cfgFile)
	fmt.Printf("  HTTP listen address: %s\n", cfg.Server.HTTPListenAddress)
	if cfg.Server.GRPCListenAddress != "" {
		fmt.Printf("  gRPC listen address: %s\n", cfg.Server.GRPCListenAddress)
	}
	fmt.Printf("  Eviction: %s (idle %s)\n", cfg.Eviction.Schedule, cfg.Eviction.Idle)

	names := make([]string, 0, len(cfg.Budgets))
	for name := range cfg.Budgets {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("  Budget configs (%d):\n", len(names))
	for _, name := range names {
		b := cfg.Budgets[name]
		fmt.Printf("    %s: budget=%g window=%s bucket=%s backoff=%s\n",
			name, b.Budget, b.Window, b.BucketSize, b.Backoff)
	}
	return nil
}
