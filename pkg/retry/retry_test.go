package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizradar/poi-ingest/pkg/apperrors"
)

func fastConfig(retries int) *Config {
	return &Config{
		MaxRetries:   retries,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("page: %w", apperrors.ErrTransient)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	authErr := fmt.Errorf("denied: %w", apperrors.ErrAuth)
	err := Do(context.Background(), fastConfig(3), func() error {
		calls++
		return authErr
	})

	require.ErrorIs(t, err, apperrors.ErrAuth)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsBudgetAndReturnsLastError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(2), func() error {
		calls++
		return fmt.Errorf("attempt %d: %w", calls, apperrors.ErrIncomplete)
	})

	require.ErrorIs(t, err, apperrors.ErrIncomplete)
	assert.Contains(t, err.Error(), "attempt 3")
	assert.Equal(t, 3, calls, "MaxRetries=2 means 3 attempts total")
}

func TestDoRespectsContextDuringWait(t *testing.T) {
	cfg := &Config{MaxRetries: 5, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1.0}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := Do(ctx, cfg, func() error {
		calls++
		return apperrors.ErrTransient
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoWithResultReturnsValue(t *testing.T) {
	calls := 0
	result, err := DoWithResult(context.Background(), fastConfig(3), func() (string, error) {
		calls++
		if calls < 2 {
			return "", apperrors.ErrIncomplete
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, calls)
}

func TestDoWithResultNonRetryableReturnsImmediately(t *testing.T) {
	calls := 0
	_, err := DoWithResult(context.Background(), fastConfig(3), func() (int, error) {
		calls++
		return 0, errors.New("bad request body")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestFixedConfigAttemptBudget(t *testing.T) {
	cfg := FixedConfig(2, time.Millisecond)
	calls := 0
	err := Do(context.Background(), cfg, func() error {
		calls++
		return apperrors.ErrIncomplete
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transient sentinel", apperrors.ErrTransient, true},
		{"incomplete sentinel", apperrors.ErrIncomplete, true},
		{"wrapped transient", fmt.Errorf("x: %w", apperrors.ErrTransient), true},
		{"auth sentinel", apperrors.ErrAuth, false},
		{"not found sentinel", apperrors.ErrNotFound, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"http 503", errors.New("status 503 from /search"), true},
		{"rate limit text", errors.New("rate limit exceeded"), true},
		{"plain error", errors.New("invalid payload"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
