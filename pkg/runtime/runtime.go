package runtime

import (
	"context"
	"io"

	"github.com/openclaw/clawpod/pkg/types"
)

// Runtime is the only seam through which the orchestrator touches the
// container runtime. The production implementation shells out to the podman
// CLI (pkg/runtime/podman); tests substitute a fake that records calls.
//
// State-reporting methods answer from a fresh runtime query every time.
// Absent resources are results, not errors: PodState returns PodStateAbsent,
// StopPod and RemovePod succeed when the pod is already gone.
type Runtime interface {
	// Available verifies the runtime binary exists and responds. Failure
	// wraps ErrRuntimeUnavailable with an install hint.
	Available(ctx context.Context) error

	// ImageExists reports whether ref is present locally. It never pulls.
	ImageExists(ctx context.Context, ref string) (bool, error)

	PodExists(ctx context.Context, name string) (bool, error)
	PodState(ctx context.Context, name string) (types.PodState, error)

	// CreatePod creates the shared pod with its port bindings. The runtime
	// rejects a name collision; callers check PodExists first to fail before
	// mutating anything.
	CreatePod(ctx context.Context, spec types.PodSpec) error

	// RunContainer starts a detached container inside pod. Implementations
	// apply the full hardening set to every container: read-only root,
	// empty capability set, no privilege escalation.
	RunContainer(ctx context.Context, pod string, spec types.ContainerSpec) error

	ContainerRunning(ctx context.Context, name string) (bool, error)
	ListContainers(ctx context.Context, pod string) ([]types.ContainerStatus, error)

	// Exec runs argv in a running container with the given stdio wiring and
	// returns the remote exit code. A non-zero remote exit is (code, nil);
	// an error means the command could not run at all, including
	// ErrContainerNotRunning for a dead target.
	Exec(ctx context.Context, container string, argv []string, opts ExecOptions) (int, error)

	// StreamLogs writes the container log to w, following until ctx is
	// cancelled when opts.Follow is set. A container that never existed is
	// ErrContainerNotRunning; a merely exited one still streams.
	StreamLogs(ctx context.Context, container string, opts LogOptions, w io.Writer) error

	// StopPod gracefully stops all containers in the pod. RemovePod forces
	// removal of the pod and anything left in it. Both are no-ops on an
	// absent pod.
	StopPod(ctx context.Context, name string) error
	RemovePod(ctx context.Context, name string) error
}

// ExecOptions control stdio wiring for Exec.
type ExecOptions struct {
	TTY         bool
	Interactive bool
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
}

// LogOptions control log streaming.
type LogOptions struct {
	Follow bool
	Tail   int // 0 streams the whole log
}
