package util

import (
	"context"
	"errors"
	"time"
)

// PermanentError marks an error that must not be retried.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so that the retry helpers give up immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Retry calls fn up to maxTries times until it returns a nil error.
// If maxTries <= 0, it defaults to 1. Returns the last error if all attempts fail.
func Retry[T any](maxTries int, fn func() (T, error)) (T, error) {
	return RetryWithContext(context.Background(), maxTries, 0, func(context.Context) (T, error) {
		return fn()
	})
}

// RetryWithContext calls fn up to maxTries times until it returns a nil error,
// or until ctx is done. Between attempts it sleeps backoff, doubling each time.
// Errors wrapped with Permanent and context errors end the loop at once and
// are returned unwrapped.
func RetryWithContext[T any](ctx context.Context, maxTries int, backoff time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if maxTries <= 0 {
		maxTries = 1
	}
	var lastErr error
	var zero T
	for i := 0; i < maxTries; i++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		var perm *PermanentError
		if errors.As(err, &perm) {
			return zero, perm.Err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		lastErr = err

		if backoff > 0 && i < maxTries-1 {
			t := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				t.Stop()
				return zero, ctx.Err()
			case <-t.C:
			}
			backoff *= 2
		}
	}
	return zero, lastErr
}
