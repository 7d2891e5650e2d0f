package deploy

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/openclaw/clawpod/pkg/runtime"
	"github.com/openclaw/clawpod/pkg/types"
)

// fakeRuntime is an in-memory runtime.Runtime that records every call in
// order. Tests assert on the sequence and on the specs it was handed.
type fakeRuntime struct {
	calls      []string
	images     map[string]bool
	pods       map[string]types.PodState
	containers map[string][]types.ContainerStatus
	podSpecs   map[string]types.PodSpec
	ctrSpecs   map[string]types.ContainerSpec

	// readyAfter controls the scripted exec probe: attempt N with
	// N >= readyAfter exits 0. Zero means the probe never succeeds.
	readyAfter int
	execCalls  int
	execArgv   [][]string

	availableErr error
	stopErr      error
	removeErr    error
	logLines     []string
}

var _ runtime.Runtime = (*fakeRuntime)(nil)

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		images:     map[string]bool{},
		pods:       map[string]types.PodState{},
		containers: map[string][]types.ContainerStatus{},
		podSpecs:   map[string]types.PodSpec{},
		ctrSpecs:   map[string]types.ContainerSpec{},
		readyAfter: 1,
	}
}

func (f *fakeRuntime) Available(ctx context.Context) error {
	f.calls = append(f.calls, "Available")
	return f.availableErr
}

func (f *fakeRuntime) ImageExists(ctx context.Context, ref string) (bool, error) {
	f.calls = append(f.calls, "ImageExists:"+ref)
	return f.images[ref], nil
}

func (f *fakeRuntime) PodExists(ctx context.Context, name string) (bool, error) {
	f.calls = append(f.calls, "PodExists:"+name)
	_, ok := f.pods[name]
	return ok, nil
}

func (f *fakeRuntime) PodState(ctx context.Context, name string) (types.PodState, error) {
	f.calls = append(f.calls, "PodState:"+name)
	state, ok := f.pods[name]
	if !ok {
		return types.PodStateAbsent, nil
	}
	return state, nil
}

func (f *fakeRuntime) CreatePod(ctx context.Context, spec types.PodSpec) error {
	f.calls = append(f.calls, "CreatePod:"+spec.Name)
	if _, ok := f.pods[spec.Name]; ok {
		return fmt.Errorf("pod %s already exists", spec.Name)
	}
	f.pods[spec.Name] = types.PodStateCreated
	f.podSpecs[spec.Name] = spec
	return nil
}

func (f *fakeRuntime) RunContainer(ctx context.Context, pod string, spec types.ContainerSpec) error {
	f.calls = append(f.calls, "RunContainer:"+spec.Name)
	if _, ok := f.pods[pod]; !ok {
		return fmt.Errorf("pod %s does not exist", pod)
	}
	f.pods[pod] = types.PodStateRunning
	f.containers[pod] = append(f.containers[pod], types.ContainerStatus{
		Name:  spec.Name,
		Image: spec.Image,
		State: "running",
	})
	f.ctrSpecs[spec.Name] = spec
	return nil
}

func (f *fakeRuntime) ContainerRunning(ctx context.Context, name string) (bool, error) {
	f.calls = append(f.calls, "ContainerRunning:"+name)
	return f.running(name), nil
}

func (f *fakeRuntime) ListContainers(ctx context.Context, pod string) ([]types.ContainerStatus, error) {
	f.calls = append(f.calls, "ListContainers:"+pod)
	return f.containers[pod], nil
}

func (f *fakeRuntime) Exec(ctx context.Context, container string, argv []string, opts runtime.ExecOptions) (int, error) {
	f.calls = append(f.calls, "Exec:"+container)
	if !f.running(container) {
		return -1, fmt.Errorf("%w: %s", runtime.ErrContainerNotRunning, container)
	}
	f.execCalls++
	f.execArgv = append(f.execArgv, argv)
	if f.readyAfter > 0 && f.execCalls >= f.readyAfter {
		return 0, nil
	}
	return 22, nil
}

func (f *fakeRuntime) StreamLogs(ctx context.Context, container string, opts runtime.LogOptions, w io.Writer) error {
	f.calls = append(f.calls, "StreamLogs:"+container)
	for _, line := range f.logLines {
		fmt.Fprintln(w, line)
	}
	return nil
}

func (f *fakeRuntime) StopPod(ctx context.Context, name string) error {
	f.calls = append(f.calls, "StopPod:"+name)
	if f.stopErr != nil {
		return f.stopErr
	}
	if _, ok := f.pods[name]; !ok {
		return nil
	}
	f.pods[name] = types.PodStateStopped
	for i := range f.containers[name] {
		f.containers[name][i].State = "exited"
	}
	return nil
}

func (f *fakeRuntime) RemovePod(ctx context.Context, name string) error {
	f.calls = append(f.calls, "RemovePod:"+name)
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.pods, name)
	delete(f.containers, name)
	return nil
}

func (f *fakeRuntime) running(name string) bool {
	for _, ctrs := range f.containers {
		for _, c := range ctrs {
			if c.Name == name && c.State == "running" {
				return true
			}
		}
	}
	return false
}

func (f *fakeRuntime) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeRuntime) indexOf(call string) int {
	for i, c := range f.calls {
		if c == call {
			return i
		}
	}
	return -1
}
