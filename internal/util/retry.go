package util

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRetriesExhausted marks an operation that failed on every attempt.
// Callers can distinguish retry exhaustion from other failures with
// errors.Is; the last attempt's error is wrapped alongside it.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Backoff configures retry timing: Attempts total tries and a base
// delay that doubles after each failed attempt.
type Backoff struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultBackoff matches the extraction service contract: 3 attempts
// with a 2 second base delay.
var DefaultBackoff = Backoff{Attempts: 3, BaseDelay: 2 * time.Second}

func (b Backoff) attempts() int {
	if b.Attempts <= 0 {
		return 1
	}
	return b.Attempts
}

// delay returns how long to wait after the given zero-based failed
// attempt before the next one.
func (b Backoff) delay(attempt int) time.Duration {
	return b.BaseDelay << attempt
}

// RetryWithContext calls fn until it succeeds, the attempts are
// exhausted, or ctx is done. Between failed attempts it sleeps with
// exponential backoff. Context errors are returned as-is and are never
// retried; any other final error is wrapped in ErrRetriesExhausted.
func RetryWithContext[T any](ctx context.Context, b Backoff, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for i := 0; i < b.attempts(); i++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		lastErr = err

		if i < b.attempts()-1 && b.BaseDelay > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(b.delay(i)):
			}
		}
	}
	return zero, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, b.attempts(), lastErr)
}

// RetryErrWithContext is RetryWithContext for operations with no result.
func RetryErrWithContext(ctx context.Context, b Backoff, fn func(context.Context) error) error {
	_, err := RetryWithContext(ctx, b, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
