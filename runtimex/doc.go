// Package runtimex provides runtime lifecycle orchestration for services,
// including startup checks, health and metrics endpoints, and graceful shutdown.
//
// # Overview
//
// runtimex runs the application's startup checks, such as eager settings
// validation, before any service starts. A failing check aborts startup with
// the check's error. After startup it serves /healthz and /metrics and stops
// everything gracefully when the context ends.
//
// # Features
//
//   - Ordered startup checks; the first failure aborts startup
//   - Unified lifecycle management with graceful shutdown
//   - Health endpoint backed by pluggable checkers
//   - Metrics endpoint for any http.Handler (obsx Metrics.Handler)
//
// # Usage
//
//	err := runtimex.Run(ctx, nil, runtimex.Options{
//		Logger:        logger,
//		StartupChecks: []runtimex.StartupCheck{runtimex.SettingsCheck(collection)},
//	})
//
// # Layer
//
// runtimex depends on core/log only.
package runtimex
