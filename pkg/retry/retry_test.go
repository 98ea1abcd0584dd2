package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errUnavailable = errors.New("resource unavailable")

func TestAcquire_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	v, err := Acquire(context.Background(), "flaky", Policy{Interval: time.Millisecond},
		func() (string, error) {
			attempts++
			if attempts <= 5 {
				return "", errUnavailable
			}
			return "handle", nil
		})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if v != "handle" {
		t.Errorf("value: got %q, want %q", v, "handle")
	}
	if attempts != 6 {
		t.Errorf("attempts: got %d, want 6", attempts)
	}
}

func TestAcquire_FirstAttemptImmediate(t *testing.T) {
	start := time.Now()
	_, err := Acquire(context.Background(), "ready", Policy{Interval: time.Hour},
		func() (int, error) { return 42, nil })
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first attempt waited %v, want no delay", elapsed)
	}
}

func TestAcquire_WaitsBetweenAttempts(t *testing.T) {
	const interval = 20 * time.Millisecond
	attempts := 0
	start := time.Now()
	_, err := Acquire(context.Background(), "slow", Policy{Interval: interval},
		func() (int, error) {
			attempts++
			if attempts <= 3 {
				return 0, errUnavailable
			}
			return 1, nil
		})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	// Three failures means three full intervals before the fourth attempt.
	if elapsed := time.Since(start); elapsed < 3*interval {
		t.Errorf("elapsed %v, want at least %v", elapsed, 3*interval)
	}
}

func TestAcquire_MaxAttempts(t *testing.T) {
	attempts := 0
	_, err := Acquire(context.Background(), "dead", Policy{Interval: time.Millisecond, MaxAttempts: 4},
		func() (int, error) {
			attempts++
			return 0, errUnavailable
		})
	if err == nil {
		t.Fatal("expected error after max attempts")
	}
	if !errors.Is(err, errUnavailable) {
		t.Errorf("error %v does not wrap the last failure", err)
	}
	if attempts != 4 {
		t.Errorf("attempts: got %d, want 4", attempts)
	}
}

func TestAcquire_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		_, err := Acquire(ctx, "never", Policy{Interval: time.Hour},
			func() (int, error) { return 0, errUnavailable })
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error: got %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after context cancellation")
	}
}

func TestAcquire_JitterStaysBounded(t *testing.T) {
	const (
		interval = 5 * time.Millisecond
		jitter   = 5 * time.Millisecond
	)
	attempts := 0
	start := time.Now()
	_, err := Acquire(context.Background(), "jittery",
		Policy{Interval: interval, Jitter: jitter},
		func() (int, error) {
			attempts++
			if attempts <= 2 {
				return 0, errUnavailable
			}
			return 1, nil
		})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	elapsed := time.Since(start)
	if elapsed < 2*interval {
		t.Errorf("elapsed %v, want at least %v", elapsed, 2*interval)
	}
	if elapsed > 2*(interval+jitter)+100*time.Millisecond {
		t.Errorf("elapsed %v, want at most ~%v", elapsed, 2*(interval+jitter))
	}
}
