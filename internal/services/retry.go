package services

import (
	"context"
	"time"
)

// RetryAll retries every error. Used where the caller has no error taxonomy.
func RetryAll(error) bool { return true }

// WithRetry calls fn and, on failure, retries it up to retries more times with
// exponential backoff starting at initialDelay (doubled after each attempt).
// The last error is returned unchanged on exhaustion: the wrapper never wraps
// or reclassifies, so the caller always sees the original failure kind.
// Delays are strictly increasing; worst-case total wait is
// initialDelay * (2^retries - 1).
func WithRetry[T any](ctx context.Context, fn func() (T, error), retries int, initialDelay time.Duration) (T, error) {
	return WithRetryIf(ctx, fn, retries, initialDelay, RetryAll)
}

// WithRetryIf is WithRetry with a predicate deciding which errors are worth
// repeating. A non-retryable error is returned immediately, untouched.
func WithRetryIf[T any](ctx context.Context, fn func() (T, error), retries int, initialDelay time.Duration, retryable func(error) bool) (T, error) {
	var zero T
	delay := initialDelay

	for {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if retries <= 0 || !retryable(err) {
			return zero, err
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}

		retries--
		delay *= 2
	}
}
