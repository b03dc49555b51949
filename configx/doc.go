// Package configx provides hierarchical configuration with hot reload.
//
// # Overview
//
// configx aggregates multiple configuration sources (files, env, flags,
// Kubernetes ConfigMaps), merges them deterministically and exposes the
// result as sections addressed by path. Sections decode into structs with
// weak typing and `default` tag fallbacks.
//
// # Features
//
//   - Multiple sources with last-wins merge semantics
//   - Case-insensitive keys; ".", ":" and "__" all separate levels
//   - Section lookup where an absent section is empty, not an error
//   - Debounced hot updates with subscription callbacks
//   - Thread-safe reads and update notifications
//
// # Usage
//
//	mgr, err := configx.NewManager(ctx, configx.Options{
//		Logger:  logger,
//		Sources: configx.DefaultSources("appsettings.yaml", "APP_", nil),
//	})
//	if err != nil { return err }
//
//	var cfg SampleConfiguration
//	if err := configx.BindSection(mgr.Section("Sample"), &cfg); err != nil { return err }
//
// # Layer
//
// configx depends on core only.
package configx
