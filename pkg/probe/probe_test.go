package probe

import (
	"context"
	"testing"
	"time"
)

// scriptedChecker fails until a given attempt, then succeeds.
type scriptedChecker struct {
	readyAt int // 0 means never
	calls   int
}

func (s *scriptedChecker) Check(ctx context.Context) Result {
	s.calls++
	if s.readyAt > 0 && s.calls >= s.readyAt {
		return Result{Healthy: true, Message: "ready", CheckedAt: time.Now()}
	}
	return Result{Healthy: false, Message: "not ready yet", CheckedAt: time.Now()}
}

func (s *scriptedChecker) Type() CheckType { return CheckTypeExec }

func TestWait_SucceedsAtAttemptN(t *testing.T) {
	checker := &scriptedChecker{readyAt: 3}
	cfg := Config{Interval: 10 * time.Millisecond, Attempts: 10}

	result := Wait(context.Background(), checker, cfg)

	if !result.Ready {
		t.Fatalf("Wait() ready = false, want true: %s", result.LastError)
	}
	if result.Attempts != 3 {
		t.Errorf("Wait() attempts = %d, want 3", result.Attempts)
	}
	if checker.calls != 3 {
		t.Errorf("checker called %d times, want 3", checker.calls)
	}
	if result.Elapsed < 2*cfg.Interval {
		t.Errorf("Wait() elapsed = %v, expected at least two intervals", result.Elapsed)
	}
	if result.Elapsed >= time.Duration(cfg.Attempts)*cfg.Interval {
		t.Errorf("Wait() elapsed = %v, slept through the whole budget despite success", result.Elapsed)
	}
}

func TestWait_ImmediateSuccessDoesNotSleep(t *testing.T) {
	checker := &scriptedChecker{readyAt: 1}
	cfg := Config{Interval: 200 * time.Millisecond, Attempts: 10}

	result := Wait(context.Background(), checker, cfg)

	if !result.Ready {
		t.Fatal("Wait() ready = false, want true")
	}
	if result.Attempts != 1 {
		t.Errorf("Wait() attempts = %d, want 1", result.Attempts)
	}
	if result.Elapsed >= cfg.Interval {
		t.Errorf("Wait() elapsed = %v, should return without sleeping", result.Elapsed)
	}
}

func TestWait_ExhaustsBudget(t *testing.T) {
	checker := &scriptedChecker{readyAt: 0}
	cfg := Config{Interval: time.Millisecond, Attempts: 4}

	result := Wait(context.Background(), checker, cfg)

	if result.Ready {
		t.Fatal("Wait() ready = true, want false")
	}
	if result.Attempts != 4 {
		t.Errorf("Wait() attempts = %d, want 4", result.Attempts)
	}
	if checker.calls != 4 {
		t.Errorf("checker called %d times, want exactly the budget of 4", checker.calls)
	}
	if result.LastError == "" {
		t.Error("Wait() last error empty, want the final failure message")
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	checker := &scriptedChecker{readyAt: 0}
	cfg := Config{Interval: 50 * time.Millisecond, Attempts: 100}

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	start := time.Now()
	result := Wait(ctx, checker, cfg)

	if result.Ready {
		t.Fatal("Wait() ready = true, want false")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Wait() took %v after cancellation, should stop promptly", elapsed)
	}
	if result.Attempts >= cfg.Attempts {
		t.Errorf("Wait() attempts = %d, cancellation should end the loop early", result.Attempts)
	}
}
