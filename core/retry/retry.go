// Package retry runs operations with exponential backoff.
//
// Overview:
//   - Responsibility: Retry transient failures of configuration sources
//   - Key Types: Config for attempts and delays, Permanent for errors that must not be retried
//   - Concurrency Model: All functions are safe for concurrent use
//   - Error Semantics: The last error is returned wrapped; a permanent error is returned unwrapped at once
//
// Usage:
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func() error { return load(ctx) })
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Config holds configuration for retry operations.
type Config struct {
	MaxAttempts int           // Maximum number of attempts
	BaseDelay   time.Duration // Delay after the first failure
	MaxDelay    time.Duration // Upper bound of the delay
	Multiplier  float64       // Delay multiplier for exponential backoff
}

// DefaultConfig returns three attempts starting at 100ms.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Multiplier:  2.0,
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns err itself.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls fn until it succeeds, returns a permanent error, ctx is done or
// config.MaxAttempts is reached.
func Do(ctx context.Context, config Config, fn func() error) error {
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := config.BaseDelay
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err
		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * config.Multiplier)
		if config.MaxDelay > 0 && delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	return fmt.Errorf("retry failed after %d attempts: %w", attempts, lastErr)
}
