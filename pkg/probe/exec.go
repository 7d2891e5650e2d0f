package probe

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/openclaw/clawpod/pkg/runtime"
)

// Execer runs a command inside a container. Satisfied by the runtime
// adapter; tests substitute a single-function fake.
type Execer interface {
	Exec(ctx context.Context, container string, argv []string, opts runtime.ExecOptions) (int, error)
}

// ExecChecker probes an in-pod HTTP endpoint by issuing a lightweight
// request from inside the target container. The sidecar's control endpoint
// is reachable only within the pod's network namespace, so the request has
// to originate there.
type ExecChecker struct {
	// Runtime executes the probe command in the container
	Runtime Execer

	// Container is the probe target
	Container string

	// URL is the in-pod endpoint to request
	URL string

	// Timeout bounds a single request (default: 2 seconds)
	Timeout time.Duration
}

// NewExecChecker creates an in-pod readiness checker.
func NewExecChecker(rt Execer, container, url string) *ExecChecker {
	return &ExecChecker{
		Runtime:   rt,
		Container: container,
		URL:       url,
		Timeout:   2 * time.Second,
	}
}

// Check performs one in-pod request. Exit code zero means healthy.
func (e *ExecChecker) Check(ctx context.Context) Result {
	start := time.Now()

	seconds := int(e.Timeout.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	argv := []string{"curl", "-fsS", "--max-time", strconv.Itoa(seconds), e.URL}

	// One extra second so the in-container timeout fires before ours
	execCtx, cancel := context.WithTimeout(ctx, e.Timeout+time.Second)
	defer cancel()

	code, err := e.Runtime.Exec(execCtx, e.Container, argv, runtime.ExecOptions{
		Stdout: io.Discard,
		Stderr: io.Discard,
	})
	if err != nil {
		return Result{
			Healthy:   false,
			Message:   fmt.Sprintf("probe exec failed: %v", err),
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}
	if code != 0 {
		return Result{
			Healthy:   false,
			Message:   fmt.Sprintf("GET %s exited %d", e.URL, code),
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}
	return Result{
		Healthy:   true,
		Message:   fmt.Sprintf("GET %s succeeded", e.URL),
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}

// Type returns the check type
func (e *ExecChecker) Type() CheckType {
	return CheckTypeExec
}
