package captions

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// RetryConfig controls the backoff schedule.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	CapDelay    time.Duration
	JitterMax   time.Duration
}

// DefaultRetryConfig is suitable for caption API calls.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts: 5,
	BaseDelay:   800 * time.Millisecond,
	CapDelay:    8 * time.Second,
	JitterMax:   500 * time.Millisecond,
}

// backoff returns the deterministic delay before the retry following the
// given attempt (1-based): min(cap, base * 2^(attempt-1)). Jitter is added
// separately so the geometric component stays monotonic up to the cap.
func (rc RetryConfig) backoff(attempt int) time.Duration {
	d := rc.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= rc.CapDelay {
			return rc.CapDelay
		}
	}
	if d > rc.CapDelay {
		return rc.CapDelay
	}
	return d
}

// Retry invokes fn up to MaxAttempts times. Failures classified Permanent
// are returned immediately without sleeping; Retryable failures sleep for
// backoff(attempt) plus uniform jitter before the next attempt. Context
// cancellation aborts both the attempt loop and any in-progress sleep.
func Retry[T any](ctx context.Context, rc RetryConfig, classify func(error) ErrorClass, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= rc.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if classify(err) == Permanent {
			return zero, err
		}
		if attempt == rc.MaxAttempts {
			break
		}

		wait := rc.backoff(attempt)
		if rc.JitterMax > 0 {
			wait += time.Duration(rand.Int63n(int64(rc.JitterMax))) //nolint:gosec // non-cryptographic use
		}
		slog.Debug("retrying",
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.Any("error", err))
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	return zero, lastErr
}
