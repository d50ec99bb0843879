package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryWithContextSucceedsAfterFailures(t *testing.T) {
	calls := 0
	b := Backoff{Attempts: 3, BaseDelay: time.Millisecond}

	got, err := RetryWithContext(context.Background(), b, func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("RetryWithContext() error = %v", err)
	}
	if got != 42 {
		t.Errorf("result = %d, want 42", got)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryWithContextExhaustsAttempts(t *testing.T) {
	calls := 0
	b := Backoff{Attempts: 3, BaseDelay: time.Millisecond}

	_, err := RetryWithContext(context.Background(), b, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("permanent")
	})
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("error = %v, want ErrRetriesExhausted", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryWithContextStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := RetryWithContext(ctx, DefaultBackoff, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrRetriesExhausted) {
		t.Error("cancellation must not be reported as retry exhaustion")
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestRetryWithContextDoesNotRetryContextErrors(t *testing.T) {
	calls := 0
	b := Backoff{Attempts: 5, BaseDelay: time.Millisecond}

	_, err := RetryWithContext(context.Background(), b, func(ctx context.Context) (int, error) {
		calls++
		return 0, context.DeadlineExceeded
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want context.DeadlineExceeded", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBackoffDelayDoubles(t *testing.T) {
	b := Backoff{Attempts: 3, BaseDelay: 2 * time.Second}

	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}
	for i, w := range want {
		if got := b.delay(i); got != w {
			t.Errorf("delay(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestRetryErrWithContext(t *testing.T) {
	calls := 0
	b := Backoff{Attempts: 2, BaseDelay: time.Millisecond}

	err := RetryErrWithContext(context.Background(), b, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RetryErrWithContext() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
