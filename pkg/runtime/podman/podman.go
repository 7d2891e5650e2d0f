package podman

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/openclaw/clawpod/pkg/log"
	"github.com/openclaw/clawpod/pkg/runtime"
	"github.com/openclaw/clawpod/pkg/types"
)

const stopTimeoutSeconds = 10

// Podman implements runtime.Runtime by driving a local podman binary.
type Podman struct {
	bin    string
	logger zerolog.Logger
}

// New returns a Podman adapter using the podman binary from PATH.
func New() *Podman {
	return &Podman{
		bin:    "podman",
		logger: log.WithComponent("podman"),
	}
}

// Available checks that podman exists and answers a version query.
func (p *Podman) Available(ctx context.Context) error {
	if _, err := exec.LookPath(p.bin); err != nil {
		return fmt.Errorf("%w: %s not found in PATH (install podman first)", runtime.ErrRuntimeUnavailable, p.bin)
	}
	if _, err := p.commandOutput(ctx, "version", "--format", "{{.Client.Version}}"); err != nil {
		return fmt.Errorf("%w: %v", runtime.ErrRuntimeUnavailable, err)
	}
	return nil
}

// ImageExists reports local image presence. It never pulls.
func (p *Podman) ImageExists(ctx context.Context, ref string) (bool, error) {
	return p.exitCodeQuery(ctx, "image", "exists", ref)
}

// PodExists reports whether a pod with the given name exists in any state.
func (p *Podman) PodExists(ctx context.Context, name string) (bool, error) {
	return p.exitCodeQuery(ctx, "pod", "exists", name)
}

// PodState derives the pod state from a live query.
func (p *Podman) PodState(ctx context.Context, name string) (types.PodState, error) {
	exists, err := p.PodExists(ctx, name)
	if err != nil {
		return "", err
	}
	if !exists {
		return types.PodStateAbsent, nil
	}
	out, err := p.commandOutput(ctx, "pod", "inspect", name, "--format", "{{.State}}")
	if err != nil {
		return "", fmt.Errorf("failed to inspect pod %s: %w", name, err)
	}
	return mapPodState(out), nil
}

// mapPodState folds podman's pod states into the lifecycle vocabulary.
func mapPodState(s string) types.PodState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "running":
		return types.PodStateRunning
	case "degraded":
		return types.PodStatePartiallyRunning
	case "created":
		return types.PodStateCreated
	default:
		// exited, stopped, dead, paused
		return types.PodStateStopped
	}
}

// CreatePod creates the shared pod with its port bindings.
func (p *Podman) CreatePod(ctx context.Context, spec types.PodSpec) error {
	if _, err := p.commandOutput(ctx, buildPodCreateArgs(spec)...); err != nil {
		return fmt.Errorf("failed to create pod %s: %w", spec.Name, err)
	}
	p.logger.Info().Str("pod", spec.Name).Msg("pod created")
	return nil
}

func buildPodCreateArgs(spec types.PodSpec) []string {
	args := []string{"pod", "create", "--name", spec.Name}
	for _, pb := range spec.Ports {
		args = append(args, "-p", formatPortBinding(pb))
	}
	for _, k := range sortedKeys(spec.Labels) {
		args = append(args, "--label", k+"="+spec.Labels[k])
	}
	return args
}

func formatPortBinding(pb types.PortBinding) string {
	host := strconv.Itoa(pb.HostPort)
	if pb.HostIP != "" {
		host = pb.HostIP + ":" + host
	}
	s := fmt.Sprintf("%s:%d", host, pb.ContainerPort)
	if pb.Protocol != "" && pb.Protocol != "tcp" {
		s += "/" + pb.Protocol
	}
	return s
}

// RunContainer starts a detached container inside the pod. The hardening
// flags are appended unconditionally; no ContainerSpec can remove them.
func (p *Podman) RunContainer(ctx context.Context, pod string, spec types.ContainerSpec) error {
	if _, err := p.commandOutput(ctx, buildRunArgs(pod, spec)...); err != nil {
		return fmt.Errorf("failed to start container %s: %w", spec.Name, err)
	}
	p.logger.Info().Str("container", spec.Name).Str("image", spec.Image).Msg("container started")
	return nil
}

func buildRunArgs(pod string, spec types.ContainerSpec) []string {
	args := []string{
		"run", "--detach",
		"--pod", pod,
		"--name", spec.Name,
		"--read-only",
		"--cap-drop", "ALL",
		"--security-opt", "no-new-privileges",
	}
	for _, m := range spec.Mounts {
		if m.Type == "tmpfs" {
			args = append(args, "--tmpfs", m.Destination+":"+strings.Join(m.Options, ","))
			continue
		}
		v := m.Source + ":" + m.Destination
		if len(m.Options) > 0 {
			v += ":" + strings.Join(m.Options, ",")
		}
		args = append(args, "-v", v)
	}
	for _, k := range sortedKeys(spec.Env) {
		args = append(args, "-e", k+"="+spec.Env[k])
	}
	if spec.WorkDir != "" {
		args = append(args, "--workdir", spec.WorkDir)
	}
	args = append(args, spec.Image)
	args = append(args, spec.Command...)
	return args
}

// ContainerRunning reports whether the named container is currently alive.
func (p *Podman) ContainerRunning(ctx context.Context, name string) (bool, error) {
	exists, err := p.exitCodeQuery(ctx, "container", "exists", name)
	if err != nil || !exists {
		return false, err
	}
	out, err := p.commandOutput(ctx, "container", "inspect", name, "--format", "{{.State.Status}}")
	if err != nil {
		return false, fmt.Errorf("failed to inspect container %s: %w", name, err)
	}
	return out == "running", nil
}

// ListContainers returns the non-infra containers of a pod.
func (p *Podman) ListContainers(ctx context.Context, pod string) ([]types.ContainerStatus, error) {
	out, err := p.commandOutput(ctx, "ps", "--all", "--filter", "pod="+pod, "--format", "json")
	if err != nil {
		return nil, fmt.Errorf("failed to list containers for pod %s: %w", pod, err)
	}
	if out == "" {
		return nil, nil
	}

	var entries []struct {
		Names     []string `json:"Names"`
		Image     string   `json:"Image"`
		State     string   `json:"State"`
		ExitCode  int      `json:"ExitCode"`
		StartedAt int64    `json:"StartedAt"`
		IsInfra   bool     `json:"IsInfra"`
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		return nil, fmt.Errorf("failed to decode container list: %w", err)
	}

	statuses := make([]types.ContainerStatus, 0, len(entries))
	for _, e := range entries {
		if e.IsInfra || len(e.Names) == 0 {
			continue
		}
		statuses = append(statuses, types.ContainerStatus{
			Name:      e.Names[0],
			Image:     e.Image,
			State:     e.State,
			ExitCode:  e.ExitCode,
			StartedAt: e.StartedAt,
		})
	}
	return statuses, nil
}

// Exec runs argv in a running container with the given stdio wiring.
func (p *Podman) Exec(ctx context.Context, container string, argv []string, opts runtime.ExecOptions) (int, error) {
	running, err := p.ContainerRunning(ctx, container)
	if err != nil {
		return -1, err
	}
	if !running {
		return -1, fmt.Errorf("%w: %s", runtime.ErrContainerNotRunning, container)
	}

	args := []string{"exec"}
	if opts.Interactive {
		args = append(args, "--interactive")
	}
	if opts.TTY {
		args = append(args, "--tty")
	}
	args = append(args, container)
	args = append(args, argv...)

	cmd := exec.CommandContext(ctx, p.bin, args...)
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	p.logger.Debug().Str("container", container).Strs("argv", argv).Msg("exec")

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("failed to exec in container %s: %w", container, err)
	}
	return 0, nil
}

// StreamLogs copies the container log to w. With Follow it blocks until ctx
// is cancelled; cancellation is a clean stop, not an error.
func (p *Podman) StreamLogs(ctx context.Context, container string, opts runtime.LogOptions, w io.Writer) error {
	exists, err := p.exitCodeQuery(ctx, "container", "exists", container)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", runtime.ErrContainerNotRunning, container)
	}

	args := []string{"logs"}
	if opts.Tail > 0 {
		args = append(args, "--tail", strconv.Itoa(opts.Tail))
	}
	if opts.Follow {
		args = append(args, "--follow")
	}
	args = append(args, container)

	cmd := exec.CommandContext(ctx, p.bin, args...)
	cmd.Stdout = w
	cmd.Stderr = w
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to stream logs for %s: %w", container, err)
	}
	return nil
}

// StopPod gracefully stops the pod's containers. Absent pod is a no-op.
func (p *Podman) StopPod(ctx context.Context, name string) error {
	exists, err := p.PodExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if _, err := p.commandOutput(ctx, "pod", "stop", "--time", strconv.Itoa(stopTimeoutSeconds), name); err != nil {
		return fmt.Errorf("failed to stop pod %s: %w", name, err)
	}
	p.logger.Info().Str("pod", name).Msg("pod stopped")
	return nil
}

// RemovePod force-removes the pod. Absent pod is a no-op.
func (p *Podman) RemovePod(ctx context.Context, name string) error {
	exists, err := p.PodExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if _, err := p.commandOutput(ctx, "pod", "rm", "--force", name); err != nil {
		return fmt.Errorf("failed to remove pod %s: %w", name, err)
	}
	p.logger.Info().Str("pod", name).Msg("pod removed")
	return nil
}

// commandOutput runs podman with args and returns trimmed stdout. Stderr is
// folded into the error.
func (p *Podman) commandOutput(ctx context.Context, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	p.logger.Debug().Str("cmd", p.bin+" "+strings.Join(args, " ")).Msg("run")

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		return "", fmt.Errorf("%s %s: %w: %s", p.bin, strings.Join(args, " "), err, msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// exitCodeQuery runs a podman query whose answer is encoded in the exit
// status: 0 yes, 1 no, anything else an error.
func (p *Podman) exitCodeQuery(ctx context.Context, args ...string) (bool, error) {
	cmd := exec.CommandContext(ctx, p.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return false, nil
		}
		msg := strings.TrimSpace(stderr.String())
		return false, fmt.Errorf("%s %s: %w: %s", p.bin, strings.Join(args, " "), err, msg)
	}
	return true, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
