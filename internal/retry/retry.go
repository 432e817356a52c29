// Package retry provides the exponential-backoff executor that wraps every
// remote call made against the source and destination services.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Default backoff parameters. Attempts are spaced at 2s, 3s, 4.5s, …
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 2 * time.Second
	defaultMultiplier  = 1.5
)

// Config controls retry behaviour.
type Config struct {
	// MaxAttempts is the total number of invocations, including the first.
	MaxAttempts int

	// BaseDelay is the sleep before the second attempt. Each further sleep
	// grows by a factor of 1.5.
	BaseDelay time.Duration

	// sleep is injectable for tests. Defaults to a context-aware timer wait.
	sleep func(ctx context.Context, d time.Duration) error
}

// DefaultConfig returns the standard retry configuration.
func DefaultConfig() Config {
	return Config{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

// WithSleep returns a copy of the config using the given sleep function.
// Used by tests to observe backoff without waiting.
func (c Config) WithSleep(sleep func(ctx context.Context, d time.Duration) error) Config {
	c.sleep = sleep
	return c
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do invokes op up to cfg.MaxAttempts times, sleeping between attempts with
// exponential backoff. Every error is retried identically; there is no
// error-type discrimination. On exhaustion the most recent error is returned,
// annotated with the attempt count. Context cancellation during backoff stops
// retrying and returns the context error wrapping the last operation error.
func Do[T any](ctx context.Context, cfg Config, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = DefaultMaxAttempts
	}
	base := cfg.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	sleep := cfg.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	delay := base
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		// No sleep after the final attempt.
		if attempt == attempts {
			break
		}
		if serr := sleep(ctx, delay); serr != nil {
			return zero, fmt.Errorf("retry aborted after attempt %d: %w (last error: %v)", attempt, serr, lastErr)
		}
		delay = time.Duration(float64(delay) * defaultMultiplier)
	}

	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
