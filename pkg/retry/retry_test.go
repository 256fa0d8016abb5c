package retry

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/spscring/errors"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       false,
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(5), func() error {
		attempts++
		if attempts < 3 {
			return errors.ErrBufferFull
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		attempts++
		return errors.ErrBufferFull
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.True(t, stderrors.Is(err, errors.ErrMaxRetriesExceeded))
	assert.True(t, stderrors.Is(err, errors.ErrBufferFull))
	assert.True(t, errors.IsFatal(err))
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestDoZeroAttemptsRunsOnce(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Config{}, func() error {
		attempts++
		return errors.ErrBufferFull
	})

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"NonRetryable wrapper", NonRetryable(stderrors.New("boom"))},
		{"invalid classification", errors.WrapInvalid(stderrors.New("bad element"), "test", "Put", "validate")},
		{"fatal classification", errors.WrapFatal(stderrors.New("lost storage"), "test", "Put", "write")},
		{"invalid sentinel", errors.ErrElementSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := Do(context.Background(), fastConfig(5), func() error {
				attempts++
				return tt.err
			})

			assert.Equal(t, 1, attempts)
			assert.Equal(t, tt.err, err)
		})
	}
}

func TestNonRetryable(t *testing.T) {
	assert.Nil(t, NonRetryable(nil))

	base := stderrors.New("base")
	err := NonRetryable(base)
	assert.True(t, IsNonRetryable(err))
	assert.True(t, stderrors.Is(err, base))
	assert.Equal(t, "non-retryable: base", err.Error())

	assert.True(t, IsNonRetryable(fmt.Errorf("outer: %w", err)))
	assert.False(t, IsNonRetryable(errors.ErrBufferFull))
}

func TestDoContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxAttempts: 5, InitialDelay: time.Second, MaxDelay: time.Second}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := Do(ctx, cfg, func() error { return errors.ErrBufferFull })

	require.Error(t, err)
	assert.True(t, stderrors.Is(err, context.Canceled))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestDoContextAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Do(ctx, fastConfig(5), func() error {
		attempts++
		return errors.ErrBufferFull
	})

	assert.True(t, stderrors.Is(err, context.Canceled))
	assert.Equal(t, 1, attempts)
}

func TestDoNotify(t *testing.T) {
	var calls []int
	var delays []time.Duration
	err := DoNotify(context.Background(), fastConfig(4), func() error {
		return errors.ErrBufferFull
	}, func(attempt int, err error, delay time.Duration) {
		assert.ErrorIs(t, err, errors.ErrBufferFull)
		calls = append(calls, attempt)
		delays = append(delays, delay)
	})

	require.Error(t, err)
	assert.Equal(t, []int{1, 2, 3}, calls)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond}, delays)
}

func TestConfigDelay(t *testing.T) {
	cfg := Config{InitialDelay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond, Multiplier: 2}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 10 * time.Millisecond},
		{2, 20 * time.Millisecond},
		{3, 40 * time.Millisecond},
		{4, 50 * time.Millisecond},
		{100, 50 * time.Millisecond},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.Delay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestConfigJitterBounds(t *testing.T) {
	cfg := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2, Jitter: true}
	for i := 0; i < 100; i++ {
		d := cfg.jittered(1)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.Less(t, d, 125*time.Millisecond)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"zero", Config{}, false},
		{"negative attempts", Config{MaxAttempts: -1}, true},
		{"negative initial", Config{InitialDelay: -time.Second}, true},
		{"negative max", Config{MaxDelay: -time.Second}, true},
		{"negative multiplier", Config{Multiplier: -1}, true},
		{"max below initial", Config{InitialDelay: time.Second, MaxDelay: time.Millisecond}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
			assert.True(t, stderrors.Is(err, errors.ErrInvalidConfig))

			calls := 0
			assert.Error(t, Do(context.Background(), tt.cfg, func() error { calls++; return nil }))
			assert.Zero(t, calls)
		})
	}
}
