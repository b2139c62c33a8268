package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spendwatch/budgetgate/pkg/config"
	"spendwatch/budgetgate/pkg/service"
	"spendwatch/budgetgate/pkg/telemetry/health"
)

// Server is the HTTP front end for the budget service.
type Server struct {
	config     config.ServerConfig
	service    *service.Service
	logger     *slog.Logger
	checker    *health.Checker
	registry   *prometheus.Registry
	metricsCfg config.MetricsConfig
	version    VersionInfo

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// VersionInfo carries build metadata for the /version endpoint.
type VersionInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Options customize a Server.
type Options struct {
	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger

	// Registry is the Prometheus registry to expose on the metrics
	// endpoint. When nil the endpoint is not registered.
	Registry *prometheus.Registry

	// Metrics controls whether and where the scrape endpoint is served.
	Metrics config.MetricsConfig

	// Version is the build metadata reported by /version.
	Version VersionInfo
}

// NewServer creates an HTTP server over the given service.
func NewServer(cfg config.ServerConfig, svc *service.Service, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	checker := health.New(2 * time.Second)
	checker.RegisterCheck("registry", func(ctx context.Context) error {
		if svc.Registry().Len() == 0 {
			return fmt.Errorf("no budgeting configs loaded")
		}
		return nil
	})

	return &Server{
		config:     cfg,
		service:    svc,
		logger:     logger.With("component", "server.http"),
		checker:    checker,
		registry:   opts.Registry,
		metricsCfg: opts.Metrics,
		version:    opts.Version,
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Addr:           s.config.HTTPListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", s.config.HTTPListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully shuts down the server, waiting up to the
// configured shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("HTTP server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured handler with the full middleware
// chain. Exposed for tests driving the server through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/record_spending", s.recordSpendingHandler())
	mux.Handle("/exceeds_budget", s.exceedsBudgetHandler())
	mux.Handle("/health", s.checker.LivenessHandler())
	mux.Handle("/ready", s.checker.ReadinessHandler())
	mux.Handle("/version", health.VersionHandler(s.version.Version, s.version.Commit, s.version.BuildTime))

	if s.registry != nil && s.metricsCfg.MetricsEnabled() {
		path := s.metricsCfg.Path
		if path == "" {
			path = config.DefaultMetricsPath
		}
		mux.Handle(path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	var handler http.Handler = mux
	handler = loggingMiddleware(s.logger)(handler)
	handler = requestIDMiddleware(handler)
	handler = recoveryMiddleware(s.logger)(handler)
	return handler
}
