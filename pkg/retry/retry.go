package retry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bizradar/poi-ingest/pkg/apperrors"
)

// Config defines retry behavior. A Multiplier of 1.0 (or 0) gives a fixed
// delay between attempts; anything larger gives exponential backoff capped
// at MaxDelay.
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultConfig returns the policy used for provider search calls:
// 3 retries starting at 500ms, doubling each time, capped at 5s.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:   3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}

// FixedConfig returns a fixed-delay policy with the given attempt budget.
// Used for detail fetches, where the provider recommends a constant wait.
func FixedConfig(maxRetries int, delay time.Duration) *Config {
	return &Config{
		MaxRetries:   maxRetries,
		InitialDelay: delay,
		MaxDelay:     delay,
		Multiplier:   1.0,
	}
}

func (c *Config) next(delay time.Duration) time.Duration {
	if c.Multiplier > 1.0 {
		delay = time.Duration(float64(delay) * c.Multiplier)
	}
	if delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

// Do executes fn until it succeeds or the retry budget is exhausted.
// Non-retryable errors are returned immediately. Respects context
// cancellation during wait periods.
func Do(ctx context.Context, cfg *Config, fn func() error) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		lastErr = err

		if attempt < cfg.MaxRetries {
			select {
			case <-time.After(delay):
				delay = cfg.next(delay)
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return lastErr
}

// DoWithResult is Do for functions that return a value alongside the error.
func DoWithResult[T any](ctx context.Context, cfg *Config, fn func() (T, error)) (T, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var result T
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		r, err := fn()
		if err == nil {
			return r, nil
		}
		if !IsRetryable(err) {
			return r, err
		}
		result = r
		lastErr = err

		if attempt < cfg.MaxRetries {
			select {
			case <-time.After(delay):
				delay = cfg.next(delay)
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}

	return result, lastErr
}

// IsRetryable reports whether an error is transient and worth retrying.
// Sentinel taxonomy errors are checked first; unknown errors fall back to
// pattern matching against transport-level failure strings.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, apperrors.ErrTransient) || errors.Is(err, apperrors.ErrIncomplete) {
		return true
	}
	if errors.Is(err, apperrors.ErrAuth) || errors.Is(err, apperrors.ErrNotFound) {
		return false
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"timeout",
		"timed out",
		"temporary failure",
		"i/o timeout",
		"network is unreachable",
		"429",
		"500",
		"502",
		"503",
		"504",
		"rate limit",
		"service unavailable",
		"too many requests",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
