package common

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// RetryableFunc is one attempt of an operation. A nil return ends the loop.
type RetryableFunc func() error

// RetryConfig holds the backoff policy used by Do.
type RetryConfig struct {
	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
	retryIf      func(error) bool
	onRetry      func(attempt int, err error)
}

// Option configures a RetryConfig.
type Option func(*RetryConfig)

// WithMaxRetries sets how many times a failed attempt is repeated (default 3).
// Zero disables retrying.
func WithMaxRetries(n int) Option {
	return func(c *RetryConfig) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithInitialDelay sets the wait before the first retry (default 1s).
func WithInitialDelay(d time.Duration) Option {
	return func(c *RetryConfig) {
		if d > 0 {
			c.initialDelay = d
		}
	}
}

// WithMaxDelay caps the backoff (default 30s).
func WithMaxDelay(d time.Duration) Option {
	return func(c *RetryConfig) {
		if d > 0 {
			c.maxDelay = d
		}
	}
}

// WithMultiplier sets the exponential growth factor (default 2).
func WithMultiplier(m float64) Option {
	return func(c *RetryConfig) {
		if m > 0 {
			c.multiplier = m
		}
	}
}

// WithRetryIf restricts retrying to errors for which pred returns true.
// Other errors are returned immediately, unwrapped.
func WithRetryIf(pred func(error) bool) Option {
	return func(c *RetryConfig) {
		c.retryIf = pred
	}
}

// WithOnRetry registers a hook called before each backoff sleep.
func WithOnRetry(fn func(attempt int, err error)) Option {
	return func(c *RetryConfig) {
		c.onRetry = fn
	}
}

func newRetryConfig(opts []Option) *RetryConfig {
	cfg := &RetryConfig{
		maxRetries:   3,
		initialDelay: time.Second,
		maxDelay:     30 * time.Second,
		multiplier:   2.0,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Do runs fn and retries it with exponential backoff until it succeeds, the
// retry budget is spent, the error is not retryable, or ctx is done.
//
//	err := common.Do(ctx, func() error {
//	    _, _, err := client.Repositories.Get(ctx, owner, name)
//	    return err
//	}, common.WithMaxRetries(2), common.WithRetryIf(isTransient))
func Do(ctx context.Context, fn RetryableFunc, opts ...Option) error {
	if fn == nil {
		return errors.New("retry: function cannot be nil")
	}
	cfg := newRetryConfig(opts)

	err := fn()
	if err == nil {
		return nil
	}

	for attempt := 1; attempt <= cfg.maxRetries; attempt++ {
		if cfg.retryIf != nil && !cfg.retryIf(err) {
			return err
		}
		if cfg.onRetry != nil {
			cfg.onRetry(attempt, err)
		}

		timer := time.NewTimer(backoff(attempt, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted during backoff (attempt %d/%d): %w", attempt, cfg.maxRetries, ctx.Err())
		case <-timer.C:
		}

		if err = fn(); err == nil {
			return nil
		}
	}

	if cfg.maxRetries == 0 || (cfg.retryIf != nil && !cfg.retryIf(err)) {
		return err
	}
	return fmt.Errorf("retry failed after %d attempts: %w", cfg.maxRetries+1, err)
}

// backoff returns initialDelay * multiplier^(attempt-1), capped at maxDelay.
func backoff(attempt int, cfg *RetryConfig) time.Duration {
	d := float64(cfg.initialDelay) * math.Pow(cfg.multiplier, float64(attempt-1))
	if d > float64(cfg.maxDelay) {
		return cfg.maxDelay
	}
	return time.Duration(d)
}
