package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_SuccessImmediate(t *testing.T) {
	result, err := Retry(3, func() (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result != 42 {
		t.Fatalf("expected 42, got %d", result)
	}
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	calls := 0
	result, err := Retry(3, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 99, nil
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result != 99 {
		t.Fatalf("expected 99, got %d", result)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_PersistentFailure(t *testing.T) {
	calls := 0
	_, err := Retry(3, func() (int, error) {
		calls++
		return 0, errors.New("persistent")
	})
	if err == nil || err.Error() != "persistent" {
		t.Fatalf("expected persistent error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_MaxTriesZeroOrNegative(t *testing.T) {
	for _, n := range []int{0, -1} {
		calls := 0
		_, _ = Retry(n, func() (int, error) {
			calls++
			return 0, errors.New("fail")
		})
		if calls != 1 {
			t.Fatalf("maxTries=%d: expected 1 call, got %d", n, calls)
		}
	}
}

func TestRetryWithContext_PermanentStopsImmediately(t *testing.T) {
	base := errors.New("bad request")
	calls := 0
	_, err := RetryWithContext(context.Background(), 5, 0, func(context.Context) (string, error) {
		calls++
		return "", Permanent(base)
	})
	if !errors.Is(err, base) {
		t.Fatalf("expected base error, got %v", err)
	}
	var perm *PermanentError
	if errors.As(err, &perm) {
		t.Fatal("expected permanent wrapper to be removed")
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetryWithContext_CanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := RetryWithContext(ctx, 3, 0, func(context.Context) (int, error) {
		calls++
		return 1, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected 0 calls, got %d", calls)
	}
}

func TestRetryWithContext_CanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := RetryWithContext(ctx, 3, time.Hour, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetryWithContext_FnReturnsDeadline(t *testing.T) {
	calls := 0
	_, err := RetryWithContext(context.Background(), 3, 0, func(context.Context) (int, error) {
		calls++
		return 0, context.DeadlineExceeded
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestPermanentNil(t *testing.T) {
	if Permanent(nil) != nil {
		t.Fatal("expected nil")
	}
}
