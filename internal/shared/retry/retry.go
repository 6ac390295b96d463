// Package retry applies an explicit retry policy around a single call.
package retry

import (
	"context"
	"time"
)

// Policy describes how a call is retried.
type Policy struct {
	// MaxAttempts counts the first try; values below 1 mean a single attempt.
	MaxAttempts int
	// Backoff returns the wait before attempt n+1, given n failed attempts.
	Backoff func(attempt int) time.Duration
	// Retryable decides whether an error is worth another attempt.
	Retryable func(error) bool
}

// None runs a call exactly once.
var None = Policy{MaxAttempts: 1}

// Linear waits attempt*step, capped at max.
func Linear(step, max time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		d := time.Duration(attempt) * step
		if d > max {
			return max
		}
		return d
	}
}

// Exponential waits base*2^(attempt-1), capped at max.
func Exponential(base, max time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		d := base
		for i := 1; i < attempt && d < max; i++ {
			d *= 2
		}
		if d > max {
			return max
		}
		return d
	}
}

// Do runs fn until it succeeds, fails with a non-retryable error,
// the attempts are used up, or ctx is done.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := DoValue(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoValue is Do for calls returning a value.
func DoValue[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var (
		zero T
		err  error
	)
	for attempt := 1; ; attempt++ {
		var v T
		v, err = fn(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= attempts || p.Retryable == nil || !p.Retryable(err) {
			return zero, err
		}

		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, err
		case <-timer.C:
		}
	}
}
