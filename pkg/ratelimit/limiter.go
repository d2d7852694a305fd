package ratelimit

import (
	"context"
	"time"
)

// Limiter enforces a minimum gap between successive calls to one provider.
// It is not safe for concurrent use; the ingestion run is single-threaded
// and each provider client owns its own Limiter.
type Limiter struct {
	gap  time.Duration
	last time.Time
}

// New creates a Limiter with the given minimum inter-call gap.
// A zero or negative gap disables waiting.
func New(gap time.Duration) *Limiter {
	return &Limiter{gap: gap}
}

// Wait blocks until the gap since the previous call has elapsed, then marks
// the current call. Respects context cancellation during the wait.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.gap > 0 && !l.last.IsZero() {
		if remaining := l.gap - time.Since(l.last); remaining > 0 {
			select {
			case <-time.After(remaining):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	l.last = time.Now()
	return nil
}
