package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRetry tells Blocking to try again.
var ErrRetry = errors.New("retry")

// ErrGaveUp is returned by a Backoff which allows no more attempts.
var ErrGaveUp = errors.New("gave up retrying")

// Backoff blocks until the next attempt.
//
// It returns nil to retry, or non-nil error to give up.
// When ctx is done, it should return ctx.Err().
type Backoff func(context.Context) error

// StaticBackoff waits for the fixed interval.
func StaticBackoff(interval time.Duration) Backoff {
	return ExponentialBackoff(interval, 1, interval)
}

// ExponentialBackoff waits initial, initial * r, initial * r^2, ... up to max.
func ExponentialBackoff(initial time.Duration, r float64, max time.Duration) Backoff {
	interval := initial
	return func(ctx context.Context) error {
		timer := time.NewTimer(interval)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		interval = time.Duration(float64(interval) * r)
		if max < interval {
			interval = max
		}
		return nil
	}
}

// Limited allows at most n retries with b.
func Limited(n int, b Backoff) Backoff {
	count := 0
	return func(ctx context.Context) error {
		if n <= count {
			return ErrGaveUp
		}
		count += 1
		return b(ctx)
	}
}

// Blocking calls f until it returns nil or an error which is not ErrRetry.
// Between calls, it waits with b.
//
// # Returns
//
// - T: the last value f returned.
//
// - error: nil when f succeeds.
// Otherwise, the error f returned, or the error of b joined with the last error of f.
func Blocking[T any](ctx context.Context, b Backoff, f func() (T, error)) (T, error) {
	for {
		last, err := f()
		if err == nil || !errors.Is(err, ErrRetry) {
			return last, err
		}
		if berr := b(ctx); berr != nil {
			return last, fmt.Errorf("%w (last error: %w)", berr, err)
		}
	}
}
