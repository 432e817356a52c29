package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	var sleeps []time.Duration
	cfg := DefaultConfig().WithSleep(func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	})

	got, err := Do(context.Background(), cfg, func(context.Context) (string, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Empty(t, sleeps, "no backoff when the first attempt succeeds")
}

func TestDoRetriesThenSucceeds(t *testing.T) {
	var sleeps []time.Duration
	cfg := Config{MaxAttempts: 3, BaseDelay: 2 * time.Second}.WithSleep(
		func(_ context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return nil
		})

	calls := 0
	got, err := Do(context.Background(), cfg, func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)

	// Exactly two sleeps, the second longer than the first.
	require.Len(t, sleeps, 2)
	assert.Equal(t, 2*time.Second, sleeps[0])
	assert.Greater(t, sleeps[1], sleeps[0])
	assert.Equal(t, 3*time.Second, sleeps[1])
}

func TestDoExhaustionReturnsLastError(t *testing.T) {
	cfg := Config{MaxAttempts: 3, BaseDelay: time.Second}.WithSleep(
		func(context.Context, time.Duration) error { return nil })

	first := errors.New("first failure")
	last := errors.New("final failure")
	calls := 0
	_, err := Do(context.Background(), cfg, func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", first
		}
		return "", last
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, last)
	assert.NotErrorIs(t, err, first)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestDoNoSleepAfterFinalAttempt(t *testing.T) {
	var sleeps int
	cfg := Config{MaxAttempts: 2, BaseDelay: time.Second}.WithSleep(
		func(context.Context, time.Duration) error {
			sleeps++
			return nil
		})

	_, err := Do(context.Background(), cfg, func(context.Context) (struct{}, error) {
		return struct{}{}, errors.New("always fails")
	})

	require.Error(t, err)
	assert.Equal(t, 1, sleeps)
}

func TestDoContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxAttempts: 3, BaseDelay: time.Second}.WithSleep(
		func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		})

	calls := 0
	_, err := Do(ctx, cfg, func(context.Context) (string, error) {
		calls++
		return "", errors.New("fail")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "no further attempts after cancellation")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoZeroConfigUsesDefaults(t *testing.T) {
	var sleeps []time.Duration
	cfg := Config{}.WithSleep(func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	})

	calls := 0
	_, err := Do(context.Background(), cfg, func(context.Context) (string, error) {
		calls++
		return "", errors.New("fail")
	})

	require.Error(t, err)
	assert.Equal(t, DefaultMaxAttempts, calls)
	require.Len(t, sleeps, DefaultMaxAttempts-1)
	assert.Equal(t, DefaultBaseDelay, sleeps[0])
}
