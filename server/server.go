// Package server serves a handler tree over HTTP by convention
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yshengliao/convroute/config"
	"github.com/yshengliao/convroute/middleware"
	"github.com/yshengliao/convroute/observability/metrics"
	"github.com/yshengliao/convroute/registry"
)

// ShutdownHook is a function that gets called during shutdown
type ShutdownHook func(ctx context.Context) error

// Server dispatches HTTP requests to the handlers of a handler tree
type Server struct {
	e               *echo.Echo
	config          *config.Config
	logger          *zap.Logger
	registry        *registry.Registry
	collector       metrics.Collector
	metricsHandler  http.Handler
	shutdownHooks   []ShutdownHook
	shutdownTimeout time.Duration
	mu              sync.RWMutex
}

// Option defines a functional option for Server
type Option func(*Server) error

// WithLogger sets the server logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// WithRegistry sets the registry handlers are loaded from. By default the
// registry reads the handler root of the route configuration from disk.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *Server) error {
		if reg == nil {
			return fmt.Errorf("registry cannot be nil")
		}
		s.registry = reg
		return nil
	}
}

// WithMetrics sets the collector, and the handler exposing it on the metrics
// path when metrics are enabled
func WithMetrics(collector metrics.Collector, handler http.Handler) Option {
	return func(s *Server) error {
		if collector == nil {
			return fmt.Errorf("collector cannot be nil")
		}
		s.collector = collector
		s.metricsHandler = handler
		return nil
	}
}

// WithShutdownTimeout sets the shutdown timeout duration
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) error {
		if timeout <= 0 {
			return fmt.Errorf("shutdown timeout must be positive")
		}
		s.shutdownTimeout = timeout
		return nil
	}
}

// New creates a server for cfg
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	s := &Server{
		e:               echo.New(),
		config:          cfg,
		logger:          zap.NewNop(),
		shutdownTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if s.registry == nil {
		s.registry = registry.New(os.DirFS(cfg.Route.HandlerRoot()),
			registry.WithExtension(cfg.Route.Extension),
			registry.WithLogger(s.logger))
	}
	if s.collector == nil {
		s.collector = metrics.NoOpCollector{}
		if cfg.Metrics.Enabled {
			reg := prometheus.NewRegistry()
			s.collector = metrics.NewPrometheusCollector(
				metrics.WithRegistry(reg),
				metrics.WithNamespace(cfg.Metrics.Namespace))
			s.metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
		}
	}

	if cfg.Route.Watch {
		if err := s.watch(); err != nil {
			return nil, err
		}
	}
	s.setupEcho()
	return s, nil
}

func (s *Server) setupEcho() {
	s.e.HideBanner = true
	s.e.HidePort = true

	skipMetrics := func(c echo.Context) bool {
		return s.config.Metrics.Enabled && c.Request().URL.Path == s.config.Metrics.Path
	}

	s.e.Use(middleware.RequestID())
	s.e.Use(middleware.AccessLogWithConfig(middleware.AccessLogConfig{
		Logger:    s.logger,
		SkipPaths: metricsPaths(s.config),
	}))
	if s.config.Server.Recovery {
		s.e.Use(middleware.Recovery(s.logger))
	}
	s.e.Use(metrics.Middleware(s.collector))

	if rl := s.config.RateLimit; rl.Enabled {
		store := middleware.NewMemoryStore(rl.Rate, rl.Burst)
		s.OnShutdown(func(context.Context) error {
			store.Stop()
			return nil
		})
		s.e.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Store:   store,
			Skipper: skipMetrics,
		}))
	}

	if s.config.Metrics.Enabled && s.metricsHandler != nil {
		s.e.GET(s.config.Metrics.Path, echo.WrapHandler(s.metricsHandler))
	}

	dispatcher := NewDispatcher(&s.config.Route, s.registry, s.logger, s.collector)
	s.e.Any("/*", dispatcher.Handle)
}

func metricsPaths(cfg *config.Config) []string {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return []string{cfg.Metrics.Path}
}

// watch invalidates loaded handlers when the handler tree changes
func (s *Server) watch() error {
	root := s.config.Route.HandlerRoot()
	w, err := registry.NewWatcher(s.registry, root, s.logger)
	if err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}
	w.OnChange = func(string) { s.collector.RecordInvalidation() }

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	s.OnShutdown(func(context.Context) error {
		cancel()
		return w.Close()
	})
	s.logger.Info("Watching handler tree", zap.String("root", root))
	return nil
}

// Echo returns the underlying Echo instance
func (s *Server) Echo() *echo.Echo {
	return s.e
}

// Registry returns the registry handlers are loaded from; bind handler
// implementations on it
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

// Run starts the HTTP server and blocks until it stops. A server stopped by
// Shutdown returns nil.
func (s *Server) Run() error {
	address := s.config.Server.Address
	if address == "" {
		address = ":8080"
	}

	s.e.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.e.Server.WriteTimeout = s.config.Server.WriteTimeout
	s.e.Server.IdleTimeout = s.config.Server.IdleTimeout

	s.logger.Info("Starting server",
		zap.String("address", address),
		zap.String("handlers", s.config.Route.HandlerRoot()))

	if err := s.e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Address returns the address the server listens on, once it is listening
func (s *Server) Address() string {
	if addr := s.e.ListenerAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// OnShutdown registers a function to be called during shutdown
func (s *Server) OnShutdown(fn ShutdownHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdownHooks = append(s.shutdownHooks, fn)
}

// Shutdown gracefully shuts down the server, then runs the shutdown hooks
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Starting graceful shutdown")

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}

	serverErr := s.e.Shutdown(ctx)
	if serverErr != nil {
		s.logger.Error("Error shutting down HTTP server", zap.Error(serverErr))
	}

	s.mu.RLock()
	hooks := append([]ShutdownHook(nil), s.shutdownHooks...)
	s.mu.RUnlock()

	var errs []error
	for i, hook := range hooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown hook %d failed: %w", i, err))
		}
	}
	if hookErr := errors.Join(errs...); hookErr != nil {
		s.logger.Error("Error running shutdown hooks", zap.Error(hookErr))
		if serverErr == nil {
			return hookErr
		}
	}

	s.logger.Info("Graceful shutdown completed")
	return serverErr
}
