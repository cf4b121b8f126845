package retry

import (
	"context"
	"fmt"
	"time"
)

// Config holds retry configuration
type Config struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	MaxTotalTimeout time.Duration
}

// LogFunc is called after every failed attempt that will be retried.
type LogFunc func(attempt int, err error, nextDelay time.Duration)

// DefaultConfig returns a default retry configuration with 1 minute max timeout
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     10,
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        10 * time.Second,
		BackoffFactor:   2.0,
		MaxTotalTimeout: 60 * time.Second,
	}
}

// RegenerationConfig is tuned for source fetches: few attempts, long gaps.
func RegenerationConfig() Config {
	return Config{
		MaxAttempts:     3,
		InitialDelay:    2 * time.Second,
		MaxDelay:        30 * time.Second,
		BackoffFactor:   3.0,
		MaxTotalTimeout: 2 * time.Minute,
	}
}

// Do executes the given function with exponential backoff retry logic
func Do(ctx context.Context, cfg Config, fn func() error) error {
	return DoWithLog(ctx, cfg, "", fn, nil)
}

// DoWithLog executes the function with retry and reports each failed attempt to logFn
func DoWithLog(ctx context.Context, cfg Config, name string, fn func() error, logFn LogFunc) error {
	if cfg.MaxTotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.MaxTotalTimeout)
		defer cancel()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return wrap(name, abortErr(attempt-1, err, lastErr))
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt == cfg.MaxAttempts {
			return wrap(name, fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr))
		}

		if logFn != nil {
			logFn(attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return wrap(name, abortErr(attempt, ctx.Err(), lastErr))
		case <-timer.C:
		}

		delay = nextDelay(delay, cfg)
	}

	return wrap(name, fmt.Errorf("max retry attempts exceeded: %w", lastErr))
}

func nextDelay(current time.Duration, cfg Config) time.Duration {
	factor := cfg.BackoffFactor
	if factor < 1 {
		factor = 1
	}
	next := time.Duration(float64(current) * factor)
	if cfg.MaxDelay > 0 && next > cfg.MaxDelay {
		next = cfg.MaxDelay
	}
	return next
}

func abortErr(attempts int, ctxErr, lastErr error) error {
	if lastErr != nil {
		return fmt.Errorf("retry aborted after %d attempts: %w (last error: %v)", attempts, ctxErr, lastErr)
	}
	return fmt.Errorf("retry aborted: %w", ctxErr)
}

func wrap(name string, err error) error {
	if name == "" {
		return err
	}
	return fmt.Errorf("%s: %w", name, err)
}
