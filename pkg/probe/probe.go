package probe

import (
	"context"
	"time"

	"github.com/openclaw/clawpod/pkg/types"
)

// CheckType represents the kind of readiness check
type CheckType string

const (
	CheckTypeHTTP CheckType = "http"
	CheckTypeExec CheckType = "exec"
)

// Result represents the outcome of a single readiness check
type Result struct {
	Healthy   bool
	Message   string
	CheckedAt time.Time
	Duration  time.Duration
}

// Checker is the interface all readiness checkers implement
type Checker interface {
	// Check performs one readiness check and returns the result
	Check(ctx context.Context) Result

	// Type returns the kind of check
	Type() CheckType
}

// Config controls the polling loop
type Config struct {
	// Interval is the pause after a failed attempt
	Interval time.Duration

	// Attempts is the maximum number of checks before giving up
	Attempts int
}

// DefaultConfig returns the standard readiness cadence: half-second
// intervals, sixty attempts, roughly thirty seconds end to end.
func DefaultConfig() Config {
	return Config{
		Interval: 500 * time.Millisecond,
		Attempts: 60,
	}
}

// Wait polls c until it reports healthy or attempts are exhausted. Success
// returns immediately with the attempt number that succeeded; the loop
// sleeps only after a failed attempt that is not the last, so a probe
// succeeding at attempt N has slept at most N-1 intervals.
//
// Exhaustion is a result, not an error: callers decide whether an unready
// target is fatal. Context cancellation ends the wait early.
func Wait(ctx context.Context, c Checker, cfg Config) types.ReadinessResult {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultConfig().Attempts
	}

	start := time.Now()
	var last Result
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		last = c.Check(ctx)
		if last.Healthy {
			return types.ReadinessResult{
				Ready:    true,
				Attempts: attempt,
				Elapsed:  time.Since(start),
			}
		}
		if attempt == cfg.Attempts {
			break
		}
		select {
		case <-time.After(cfg.Interval):
		case <-ctx.Done():
			return types.ReadinessResult{
				Ready:     false,
				Attempts:  attempt,
				Elapsed:   time.Since(start),
				LastError: ctx.Err().Error(),
			}
		}
	}
	return types.ReadinessResult{
		Ready:     false,
		Attempts:  cfg.Attempts,
		Elapsed:   time.Since(start),
		LastError: last.Message,
	}
}
