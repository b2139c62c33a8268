package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "budgetgate",
	Short: "budgetgate - per-project resource budgeting service",
	Long: `Budgetgate tracks per-project spend against configurable budgets.

Clients report spend per (config, project) pair and ask whether a project
currently exceeds its budget. Spend is summed over a sliding window; state
flips are debounced by a backoff so answers do not flap at the threshold.

The service exposes an HTTP JSON API and a gRPC API over the same engine.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
