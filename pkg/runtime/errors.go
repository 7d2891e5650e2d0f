package runtime

import (
	"errors"
	"fmt"
)

var (
	// ErrRuntimeUnavailable means the container runtime binary is missing or
	// not responding. Nothing can proceed without it.
	ErrRuntimeUnavailable = errors.New("container runtime unavailable")

	// ErrPodExists means a pod with the configured name is already present,
	// in any state. start never reuses or recreates an existing pod.
	ErrPodExists = errors.New("pod already exists")

	// ErrContainerNotRunning means an exec or log target is not alive.
	ErrContainerNotRunning = errors.New("container is not running")
)

// ImageNotFoundError reports a required image that is not present locally.
// The tool never pulls or builds implicitly, so the message carries the
// command that produces the image.
type ImageNotFoundError struct {
	Image     string
	BuildHint string
}

func (e *ImageNotFoundError) Error() string {
	if e.BuildHint == "" {
		return fmt.Sprintf("image %s not found locally", e.Image)
	}
	return fmt.Sprintf("image %s not found locally; build it with: %s", e.Image, e.BuildHint)
}
