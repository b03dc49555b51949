// Package internal provides internal implementation details for configx.
package internal

import "context"

// Source describes a configuration source that can load and watch for updates.
// Implementations must be thread-safe and honor context cancellation.
type Source interface {
	// Load reads the current configuration snapshot for initial merge.
	// Keys may use any of the accepted separators; the manager normalizes them.
	Load(ctx context.Context) (map[string]string, error)

	// Watch starts monitoring for updates and publishes snapshots via the returned channel.
	// The channel is closed when the context is cancelled.
	Watch(ctx context.Context) (<-chan map[string]string, error)
}

// idleWatch returns a channel that never publishes and closes with ctx.
func idleWatch(ctx context.Context) <-chan map[string]string {
	ch := make(chan map[string]string)
	go func() {
		defer close(ch)
		<-ctx.Done()
	}()
	return ch
}
