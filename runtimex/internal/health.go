// Package internal contains the runtime implementation.
package internal

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HealthChecker defines the interface for health checks.
// Implementations should perform quick checks and honor context deadlines.
type HealthChecker interface {
	// Name returns the name of the health check.
	Name() string
	// Check performs the health check and returns an error if unhealthy.
	Check(ctx context.Context) error
}

// CheckHealth runs every checker and returns one line per failure.
func CheckHealth(ctx context.Context, checkers []HealthChecker) []string {
	var failures []string
	for _, checker := range checkers {
		if err := checker.Check(ctx); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", checker.Name(), err))
		}
	}
	return failures
}

// HealthHandler serves 200 "OK" when every checker passes and 503 with the
// failures otherwise. Each request is bounded by timeout.
func HealthHandler(checkers []HealthChecker, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if failures := CheckHealth(ctx, checkers); len(failures) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(strings.Join(failures, "\n") + "\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
