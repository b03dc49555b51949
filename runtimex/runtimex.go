// Package runtimex provides runtime lifecycle management with startup checks.
//
// Overview:
//   - Responsibility: Run startup checks, then manage service lifecycle and the
//     HTTP, health and metrics servers
//   - Key Types: Service interface, StartupCheck, Options for configuration
//   - Concurrency Model: All services run concurrently, graceful shutdown supported
//   - Error Semantics: A failing startup check aborts Run before any service starts
//
// Usage:
//
//	err := runtimex.Run(ctx, []runtimex.Service{svc}, runtimex.Options{
//	  Logger:         logger,
//	  StartupChecks:  []runtimex.StartupCheck{runtimex.SettingsCheck(collection)},
//	  Health:         &runtimex.Endpoint{Addr: ":8081"},
//	  Metrics:        &runtimex.Endpoint{Addr: ":9091"},
//	  MetricsHandler: metrics.Handler(),
//	})
package runtimex

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.eggybyte.com/settingsx/core/log"
	"go.eggybyte.com/settingsx/runtimex/internal"
)

// Service defines the interface for services that can be started and stopped.
// Services must be safe for concurrent use and handle context cancellation.
type Service interface {
	// Start begins the service operation.
	// The context should be honored for cancellation.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the service.
	// The context should be honored for shutdown timeout.
	Stop(ctx context.Context) error
}

// StartupCheck is a named check that must pass before any service starts.
type StartupCheck = internal.StartupCheck

// HealthChecker is a named check served on the health endpoint.
type HealthChecker = internal.HealthChecker

// StartupValidator is implemented by anything that validates eagerly at
// startup, such as *optionsx.Collection.
type StartupValidator interface {
	ValidateOnStart(ctx context.Context) error
}

// SettingsCheck returns the startup check that validates v.
func SettingsCheck(v StartupValidator) StartupCheck {
	return StartupCheck{Name: "settings", Check: v.ValidateOnStart}
}

// HealthCheck adapts fn to a HealthChecker called name.
func HealthCheck(name string, fn func(ctx context.Context) error) HealthChecker {
	return funcChecker{name: name, fn: fn}
}

// SettingsHealth reports unhealthy while v fails its startup validation,
// for example after a configuration update made a startup-validated type invalid.
func SettingsHealth(v StartupValidator) HealthChecker {
	return HealthCheck("settings", v.ValidateOnStart)
}

type funcChecker struct {
	name string
	fn   func(ctx context.Context) error
}

func (c funcChecker) Name() string                    { return c.name }
func (c funcChecker) Check(ctx context.Context) error { return c.fn(ctx) }

// Endpoint represents a network endpoint with an address.
type Endpoint struct {
	Addr string // Network address (e.g., ":8081", "localhost:9091")
}

// HTTPOptions configures the application HTTP server.
type HTTPOptions struct {
	Addr    string       // Server address (e.g., ":8080")
	Handler http.Handler // Request handler, e.g. a chi router
}

// Options holds configuration for the runtime.
type Options struct {
	Logger          log.Logger      // Logger for runtime operations
	StartupChecks   []StartupCheck  // Run in order before services start
	HealthCheckers  []HealthChecker // Served on the health endpoint
	HTTP            *HTTPOptions    // Application HTTP server (optional)
	Health          *Endpoint       // Health endpoint serving /healthz (optional)
	Metrics         *Endpoint       // Metrics endpoint serving /metrics (optional)
	MetricsHandler  http.Handler    // Handler for /metrics, e.g. obsx Metrics.Handler()
	ShutdownTimeout time.Duration   // Graceful shutdown timeout (default: 15s)
}

// Run runs the startup checks, starts all services and servers, and blocks
// until ctx is cancelled. Services are stopped gracefully on shutdown.
func Run(ctx context.Context, services []Service, opts Options) error {
	runtime, err := newRuntime(services, opts)
	if err != nil {
		return err
	}

	if err := runtime.Start(ctx); err != nil {
		return fmt.Errorf("runtime start failed: %w", err)
	}

	<-ctx.Done()

	if err := runtime.Stop(context.Background()); err != nil {
		return fmt.Errorf("runtime stop failed: %w", err)
	}
	return nil
}

// CheckStartup runs the startup checks without starting anything.
func CheckStartup(ctx context.Context, logger log.Logger, checks ...StartupCheck) error {
	if logger == nil {
		logger = log.Nop()
	}
	return internal.NewRuntime(logger, nil, checks, 0).RunStartupChecks(ctx)
}

func newRuntime(services []Service, opts Options) (*internal.Runtime, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if opts.Metrics != nil && opts.MetricsHandler == nil {
		return nil, fmt.Errorf("metrics handler is required when a metrics endpoint is set")
	}

	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 15 * time.Second
	}

	internalServices := make([]internal.Service, len(services))
	for i, service := range services {
		internalServices[i] = service
	}

	runtime := internal.NewRuntime(opts.Logger, internalServices, opts.StartupChecks, shutdownTimeout)

	if opts.HTTP != nil {
		runtime.AddServer("http", &http.Server{
			Addr:              opts.HTTP.Addr,
			Handler:           opts.HTTP.Handler,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	if opts.Health != nil {
		mux := http.NewServeMux()
		mux.Handle("/healthz", internal.HealthHandler(opts.HealthCheckers, 5*time.Second))
		runtime.AddServer("health", &http.Server{
			Addr:              opts.Health.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	if opts.Metrics != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", opts.MetricsHandler)
		runtime.AddServer("metrics", &http.Server{
			Addr:              opts.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	return runtime, nil
}
