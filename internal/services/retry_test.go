package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetryEventualSuccess(t *testing.T) {
	calls := 0
	fn := func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}

	got, err := WithRetry(context.Background(), fn, 3, time.Millisecond)
	if err != nil {
		t.Fatalf("WithRetry() error: %v", err)
	}
	if got != "ok" {
		t.Errorf("WithRetry() = %q, expected \"ok\"", got)
	}
	if calls != 3 {
		t.Errorf("fn invoked %d times, expected exactly 3", calls)
	}
}

func TestWithRetryExhaustionReturnsOriginalError(t *testing.T) {
	original := errors.New("persistent failure")
	calls := 0
	fn := func() (int, error) {
		calls++
		return 0, original
	}

	_, err := WithRetry(context.Background(), fn, 2, time.Millisecond)
	if calls != 3 {
		t.Errorf("fn invoked %d times, expected 3 (initial + 2 retries)", calls)
	}
	// The last error must come back unchanged, not wrapped.
	if err != original {
		t.Errorf("WithRetry() error = %v, expected the original error value", err)
	}
}

func TestWithRetryNoRetriesOnSuccess(t *testing.T) {
	calls := 0
	fn := func() (int, error) {
		calls++
		return 42, nil
	}

	got, err := WithRetry(context.Background(), fn, 3, time.Millisecond)
	if err != nil {
		t.Fatalf("WithRetry() error: %v", err)
	}
	if got != 42 || calls != 1 {
		t.Errorf("WithRetry() = (%d, calls=%d), expected (42, calls=1)", got, calls)
	}
}

func TestWithRetryIfNonRetryableFailsImmediately(t *testing.T) {
	fatal := errors.New("malformed response")
	calls := 0
	fn := func() (int, error) {
		calls++
		return 0, fatal
	}

	_, err := WithRetryIf(context.Background(), fn, 3, time.Millisecond, func(error) bool { return false })
	if calls != 1 {
		t.Errorf("fn invoked %d times, expected 1 for a non-retryable error", calls)
	}
	if err != fatal {
		t.Errorf("WithRetryIf() error = %v, expected the original error value", err)
	}
}

func TestWithRetryBackoffIncreases(t *testing.T) {
	var timestamps []time.Time
	fn := func() (int, error) {
		timestamps = append(timestamps, time.Now())
		return 0, errors.New("fail")
	}

	_, _ = WithRetry(context.Background(), fn, 2, 20*time.Millisecond)

	if len(timestamps) != 3 {
		t.Fatalf("fn invoked %d times, expected 3", len(timestamps))
	}
	first := timestamps[1].Sub(timestamps[0])
	second := timestamps[2].Sub(timestamps[1])
	if second <= first {
		t.Errorf("delays not strictly increasing: %v then %v", first, second)
	}
}

func TestWithRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	fn := func() (int, error) {
		calls++
		cancel()
		return 0, errors.New("fail")
	}

	_, err := WithRetry(ctx, fn, 5, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("WithRetry() error = %v, expected context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("fn invoked %d times, expected 1 before cancellation", calls)
	}
}
