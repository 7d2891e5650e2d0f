package probe

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openclaw/clawpod/pkg/runtime"
)

// fakeExecer scripts the outcome of an in-container exec.
type fakeExecer struct {
	code int
	err  error

	gotContainer string
	gotArgv      []string
}

func (f *fakeExecer) Exec(ctx context.Context, container string, argv []string, opts runtime.ExecOptions) (int, error) {
	f.gotContainer = container
	f.gotArgv = argv
	return f.code, f.err
}

func TestExecChecker_Healthy(t *testing.T) {
	fake := &fakeExecer{code: 0}
	checker := NewExecChecker(fake, "openclaw-browser", "http://127.0.0.1:9222/json/version")

	result := checker.Check(context.Background())

	if !result.Healthy {
		t.Fatalf("Check() healthy = false, want true: %s", result.Message)
	}
	if fake.gotContainer != "openclaw-browser" {
		t.Errorf("Check() probed container %q, want openclaw-browser", fake.gotContainer)
	}
	argv := strings.Join(fake.gotArgv, " ")
	if !strings.Contains(argv, "http://127.0.0.1:9222/json/version") {
		t.Errorf("Check() argv = %q, missing the control URL", argv)
	}
}

func TestExecChecker_UnhealthyExit(t *testing.T) {
	fake := &fakeExecer{code: 7}
	checker := NewExecChecker(fake, "openclaw-browser", "http://127.0.0.1:9222/json/version")

	result := checker.Check(context.Background())

	if result.Healthy {
		t.Fatal("Check() healthy = true, want false")
	}
	if !strings.Contains(result.Message, "7") {
		t.Errorf("Check() message = %q, should mention the exit code", result.Message)
	}
}

func TestExecChecker_ExecError(t *testing.T) {
	fake := &fakeExecer{err: errors.New("container is not running")}
	checker := NewExecChecker(fake, "openclaw-browser", "http://127.0.0.1:9222/json/version")

	result := checker.Check(context.Background())

	if result.Healthy {
		t.Fatal("Check() healthy = true, want false")
	}
	if !strings.Contains(result.Message, "not running") {
		t.Errorf("Check() message = %q, should carry the exec error", result.Message)
	}
}
