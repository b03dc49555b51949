package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.eggybyte.com/settingsx/core/log"
)

// Service is the interface for services that can be started and stopped.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// StartupCheck is a named check that must pass before services start.
type StartupCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type namedServer struct {
	name   string
	server *http.Server
}

// Runtime manages the lifecycle of services and servers.
type Runtime struct {
	logger          log.Logger
	services        []Service
	checks          []StartupCheck
	servers         []namedServer
	shutdownTimeout time.Duration
}

// NewRuntime creates a new runtime instance.
func NewRuntime(logger log.Logger, services []Service, checks []StartupCheck, shutdownTimeout time.Duration) *Runtime {
	return &Runtime{
		logger:          logger,
		services:        services,
		checks:          checks,
		shutdownTimeout: shutdownTimeout,
	}
}

// AddServer registers a server started after the services.
func (r *Runtime) AddServer(name string, server *http.Server) {
	r.servers = append(r.servers, namedServer{name: name, server: server})
}

// RunStartupChecks runs every check in order and stops at the first failure.
func (r *Runtime) RunStartupChecks(ctx context.Context) error {
	for _, check := range r.checks {
		started := time.Now()
		if err := check.Check(ctx); err != nil {
			r.logger.Error(err, "startup check failed", log.Str("check", check.Name))
			return fmt.Errorf("startup check %q failed: %w", check.Name, err)
		}
		r.logger.Info("startup check passed",
			log.Str("check", check.Name),
			log.Dur("elapsed", time.Since(started)))
	}
	return nil
}

// Start runs the startup checks, then starts all services and servers.
func (r *Runtime) Start(ctx context.Context) error {
	r.logger.Info("starting runtime")

	if err := r.RunStartupChecks(ctx); err != nil {
		return err
	}

	// Start services concurrently
	var wg sync.WaitGroup
	errChan := make(chan error, len(r.services))

	for i, service := range r.services {
		wg.Add(1)
		go func(idx int, svc Service) {
			defer wg.Done()
			r.logger.Info("starting service", log.Int("index", idx))
			if err := svc.Start(ctx); err != nil {
				r.logger.Error(err, "service start failed", log.Int("index", idx))
				errChan <- fmt.Errorf("service %d start failed: %w", idx, err)
			} else {
				r.logger.Info("service started", log.Int("index", idx))
			}
		}(i, service)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return err
		}
	}

	for _, s := range r.servers {
		go func(s namedServer) {
			r.logger.Info("starting server", log.Str("server", s.name), log.Str("addr", s.server.Addr))
			if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				r.logger.Error(err, "server failed", log.Str("server", s.name))
			}
		}(s)
	}

	r.logger.Info("runtime started successfully")
	return nil
}

// Stop gracefully shuts down all services and servers.
func (r *Runtime) Stop(ctx context.Context) error {
	r.logger.Info("stopping runtime")

	shutdownCtx, cancel := context.WithTimeout(ctx, r.shutdownTimeout)
	defer cancel()

	var wg sync.WaitGroup
	errChan := make(chan error, len(r.services))

	for i, service := range r.services {
		wg.Add(1)
		go func(idx int, svc Service) {
			defer wg.Done()
			r.logger.Info("stopping service", log.Int("index", idx))
			if err := svc.Stop(shutdownCtx); err != nil {
				r.logger.Error(err, "service stop failed", log.Int("index", idx))
				errChan <- fmt.Errorf("service %d stop failed: %w", idx, err)
			} else {
				r.logger.Info("service stopped", log.Int("index", idx))
			}
		}(i, service)
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}

	for _, s := range r.servers {
		r.logger.Info("stopping server", log.Str("server", s.name))
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			r.logger.Error(err, "server shutdown failed", log.Str("server", s.name))
		}
	}

	r.logger.Info("runtime stopped")
	return errors.Join(errs...)
}
