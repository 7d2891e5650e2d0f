package types

import (
	"fmt"
	"time"

	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// PodState represents the observed state of the deployment pod. It is
// always derived from a fresh runtime query; nothing in the orchestrator
// caches it between invocations.
type PodState string

const (
	PodStateAbsent           PodState = "absent"
	PodStateCreated          PodState = "created"
	PodStateRunning          PodState = "running"
	PodStatePartiallyRunning PodState = "partially-running"
	PodStateStopped          PodState = "stopped"
)

// GatewayContainerName derives the primary container name for a pod.
func GatewayContainerName(pod string) string {
	return pod + "-gateway"
}

// BrowserContainerName derives the sidecar container name for a pod.
func BrowserContainerName(pod string) string {
	return pod + "-browser"
}

// PortBinding defines a host port published on the pod
type PortBinding struct {
	HostIP        string // empty means all interfaces
	HostPort      int
	ContainerPort int
	Protocol      string // "tcp" or "udp"; empty means tcp
}

// String renders the binding in host:container form for logs and errors.
func (p PortBinding) String() string {
	host := fmt.Sprintf("%d", p.HostPort)
	if p.HostIP != "" {
		host = fmt.Sprintf("%s:%d", p.HostIP, p.HostPort)
	}
	return fmt.Sprintf("%s->%d", host, p.ContainerPort)
}

// PodSpec describes the shared pod holding the gateway and its sidecar
type PodSpec struct {
	Name   string
	Ports  []PortBinding
	Labels map[string]string
}

// ContainerSpec describes one container inside the pod. Every container the
// runtime starts from a ContainerSpec runs with a read-only root filesystem,
// an empty capability set, and privilege escalation disabled; those settings
// are enforced unconditionally by the runtime adapter and are not fields
// here, so no caller can switch them off. Writable paths come exclusively
// from Mounts.
type ContainerSpec struct {
	Name    string
	Image   string
	Command []string          // optional entrypoint override
	Env     map[string]string // merged workload environment
	WorkDir string
	Mounts  []specs.Mount // bind and tmpfs mounts
}

// BindMount builds a host directory mount.
func BindMount(source, destination string, readOnly bool) specs.Mount {
	opt := "rw"
	if readOnly {
		opt = "ro"
	}
	return specs.Mount{
		Destination: destination,
		Type:        "bind",
		Source:      source,
		Options:     []string{opt},
	}
}

// TmpfsMount builds a size-capped tmpfs mount for a path that must stay
// writable inside a read-only container. The mount never permits exec or
// setuid.
func TmpfsMount(destination, size string) specs.Mount {
	return specs.Mount{
		Destination: destination,
		Type:        "tmpfs",
		Options:     []string{"rw", "size=" + size, "noexec", "nosuid"},
	}
}

// ContainerStatus reports one container as the runtime sees it
type ContainerStatus struct {
	Name      string
	Image     string
	State     string // runtime state string, verbatim
	ExitCode  int
	StartedAt int64 // unix seconds, zero when unknown
}

// PodStatus is the result of the status operation
type PodStatus struct {
	Name       string
	State      PodState
	Containers []ContainerStatus
}

// ReadinessResult reports the outcome of a readiness wait. Exhaustion is a
// result, not an error: Ready false with the attempt count and the last
// failure message.
type ReadinessResult struct {
	Ready     bool
	Attempts  int
	Elapsed   time.Duration
	LastError string
}
