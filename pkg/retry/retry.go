package retry

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/c360/spscring/errors"
)

// NonRetryableError wraps errors that should not be retried
type NonRetryableError struct {
	Err error
}

func (e *NonRetryableError) Error() string {
	return fmt.Sprintf("non-retryable: %v", e.Err)
}

func (e *NonRetryableError) Unwrap() error {
	return e.Err
}

// NonRetryable wraps an error to indicate it should not be retried
func NonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &NonRetryableError{Err: err}
}

// IsNonRetryable reports whether err stops retrying: NonRetryable errors and
// errors classified invalid or fatal.
func IsNonRetryable(err error) bool {
	var nre *NonRetryableError
	if stderrors.As(err, &nre) {
		return true
	}
	return errors.IsInvalid(err) || errors.IsFatal(err)
}

// Config provides retry configuration
type Config struct {
	MaxAttempts  int           // 0 runs once without retrying
	InitialDelay time.Duration // delay before the second attempt
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool // add up to 25% to each delay
}

// DefaultConfig returns the backoff used for a producer facing a full ring:
// short, fast-growing delays capped well below a millisecond tick.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  20,
		InitialDelay: 10 * time.Microsecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.MaxAttempts < 0:
		return invalid("max_attempts cannot be negative")
	case c.InitialDelay < 0:
		return invalid("initial_delay cannot be negative")
	case c.MaxDelay < 0:
		return invalid("max_delay cannot be negative")
	case c.Multiplier < 0:
		return invalid("multiplier cannot be negative")
	case c.MaxDelay > 0 && c.MaxDelay < c.InitialDelay:
		return invalid("max_delay must be >= initial_delay")
	}
	return nil
}

func invalid(msg string) error {
	return errors.WrapInvalid(fmt.Errorf("%w: retry %s", errors.ErrInvalidConfig, msg),
		"retry", "Validate", "validate config")
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 1
	}
	if c.InitialDelay == 0 {
		c.InitialDelay = 10 * time.Microsecond
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = 5 * time.Millisecond
	}
	if c.Multiplier == 0 {
		c.Multiplier = 2.0
	}
	if c.Multiplier > 1000 {
		c.Multiplier = 1000
	}
	return c
}

// Delay returns the backoff before attempt+1, without jitter. attempt starts at 1.
func (c Config) Delay(attempt int) time.Duration {
	c = c.withDefaults()
	delay := float64(c.InitialDelay)
	for i := 1; i < attempt; i++ {
		delay *= c.Multiplier
		if delay >= float64(c.MaxDelay) {
			return c.MaxDelay
		}
	}
	if delay > float64(c.MaxDelay) {
		return c.MaxDelay
	}
	return time.Duration(delay)
}

func (c Config) jittered(attempt int) time.Duration {
	d := c.Delay(attempt)
	if !c.Jitter || d < 4 {
		return d
	}
	return d + time.Duration(rand.Int64N(int64(d/4)))
}

// NotifyFunc is called before each backoff with the failed attempt number,
// its error and the delay about to be slept.
type NotifyFunc func(attempt int, err error, delay time.Duration)

// Do executes fn with exponential backoff retry
func Do(ctx context.Context, cfg Config, fn func() error) error {
	return DoNotify(ctx, cfg, fn, nil)
}

// DoNotify is Do with a hook called before every backoff. After the last
// attempt the error wraps errors.ErrMaxRetriesExceeded and the last failure.
func DoNotify(ctx context.Context, cfg Config, fn func() error, notify NotifyFunc) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg = cfg.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if IsNonRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return fmt.Errorf("retry cancelled before attempt %d: %w", attempt+1, ctx.Err())
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := cfg.jittered(attempt)
		if notify != nil {
			notify(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled during backoff for attempt %d: %w", attempt+1, ctx.Err())
		case <-timer.C:
		}
	}

	return errors.WrapFatal(fmt.Errorf("%w after %d attempts: %w", errors.ErrMaxRetriesExceeded, cfg.MaxAttempts, lastErr),
		"retry", "Do", "retry operation")
}
