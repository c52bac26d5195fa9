// Package retry provides retrying of operations with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Config holds retry configuration.
type Config struct {
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Option is a functional option for retry configuration.
type Option func(*Config)

// WithAttempts sets the total number of attempts (including the first).
func WithAttempts(n int) Option {
	return func(c *Config) { c.Attempts = n }
}

// WithInitialDelay sets the delay before the second attempt.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Config) { c.InitialDelay = d }
}

// WithMaxDelay caps the delay between attempts.
func WithMaxDelay(d time.Duration) Option {
	return func(c *Config) { c.MaxDelay = d }
}

// Do executes the operation until it succeeds, the attempts are exhausted,
// or the context is cancelled. The delay between attempts doubles up to
// MaxDelay. Errors wrapped with Fatal are returned immediately.
func Do(ctx context.Context, operation func() error, opts ...Option) error {
	cfg := &Config{
		Attempts:     5,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		if IsFatal(err) {
			return fmt.Errorf("fatal error (not retrying): %w", err)
		}

		if attempt < cfg.Attempts {
			select {
			case <-ctx.Done():
				return fmt.Errorf("cancelled after %d attempts: %w", attempt, ctx.Err())
			case <-time.After(delay):
				delay *= 2
				if delay > cfg.MaxDelay {
					delay = cfg.MaxDelay
				}
			}
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", cfg.Attempts, lastErr)
}

// FatalError wraps an error to mark it as fatal (non-retryable).
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }

func (e *FatalError) Unwrap() error { return e.Err }

// Fatal marks an error as fatal so Do returns it without further attempts.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal reports whether an error was marked with Fatal.
func IsFatal(err error) bool {
	var fatalErr *FatalError
	return errors.As(err, &fatalErr)
}
