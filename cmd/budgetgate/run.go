package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"spendwatch/budgetgate/pkg/config"
	"spendwatch/budgetgate/pkg/rpc"
	"spendwatch/budgetgate/pkg/server"
	"spendwatch/budgetgate/pkg/service"
	"spendwatch/budgetgate/pkg/telemetry/logging"
)

var runFlags struct {
	httpListen string
	grpcListen string
	logLevel   string
	dryRun     bool
	watch      bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the budgetgate service",
	Long: `Start the budgetgate service with the specified configuration.

The service serves the HTTP JSON API on the configured HTTP address and,
unless disabled, the gRPC API on the configured gRPC address. A background
sweeper evicts stale project entries on a schedule.

Examples:
  # Start with the default config file
  budgetgate run

  # Start with a custom config file
  budgetgate run --config /etc/budgetgate/config.yaml

  # Override the HTTP listen address
  budgetgate run --listen 0.0.0.0:8080

  # Validate config without starting the service
  budgetgate run --dry-run`,
	RunE: runService,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.httpListen, "listen", "l", "", "override HTTP listen address")
	runCmd.Flags().StringVar(&runFlags.grpcListen, "grpc-listen", "", "override gRPC listen address (empty string disables gRPC)")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the service")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", false, "watch the config file and log when it changes")
}

func runService(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.httpListen != "" {
		cfg.Server.HTTPListenAddress = runFlags.httpListen
	}
	if cmd.Flags().Changed("grpc-listen") {
		cfg.Server.GRPCListenAddress = runFlags.grpcListen
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("budgetgate v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	// Wire up the engine
	registry, err := service.NewRegistry(cfg.BudgetParams())
	if err != nil {
		return fmt.Errorf("failed to build budget registry: %w", err)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := service.New(registry,
		service.WithLogger(logger),
		service.WithMetrics(service.NewMetrics(promReg)),
	)
	fmt.Printf("✓ Budget engine initialized (%d configs)\n", registry.Len())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Eviction sweeper
	sweeper := service.NewSweeper(svc, service.SweeperConfig{
		Schedule: cfg.Eviction.Schedule,
		Idle:     cfg.Eviction.Idle,
	})
	if err := sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start eviction sweeper: %w", err)
	}
	defer sweeper.Stop()

	// Optional config file watcher; advisory only, budgets are fixed
	// for the process lifetime.
	if runFlags.watch {
		watcher, err := config.NewWatcher(config.WatcherConfig{Path: cfgFile}, logger)
		if err != nil {
			return fmt.Errorf("failed to create config watcher: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx, nil); err != nil {
				logger.Error("config watcher failed", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	// Front ends
	httpSrv := server.NewServer(cfg.Server, svc, server.Options{
		Logger:   logger,
		Registry: promReg,
		Metrics:  cfg.Telemetry.Metrics,
		Version: server.VersionInfo{
			Version:   Version,
			Commit:    GitCommit,
			BuildTime: BuildDate,
		},
	})

	errChan := make(chan error, 2)
	go func() {
		if err := httpSrv.Start(ctx); err != nil {
			errChan <- fmt.Errorf("http server: %w", err)
		}
	}()

	if cfg.Server.GRPCListenAddress != "" {
		grpcSrv := rpc.NewServer(cfg.Server.GRPCListenAddress, svc, logger)
		go func() {
			if err := grpcSrv.Start(ctx); err != nil {
				errChan <- fmt.Errorf("grpc server: %w", err)
			}
		}()
		fmt.Printf("✓ gRPC API on %s\n", cfg.Server.GRPCListenAddress)
	}

	fmt.Printf("✓ HTTP API on %s\n", cfg.Server.HTTPListenAddress)
	if cfg.Telemetry.Metrics.MetricsEnabled() {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.HTTPListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		if err := httpSrv.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown failed", "error", err)
			return err
		}
		fmt.Println("✓ Service stopped")
		return nil
	}
}
