/*
Package runtime defines the adapter seam between the orchestrator and the
container runtime.

The orchestrator never invokes a runtime binary directly; every operation
goes through the Runtime interface so the whole lifecycle is testable with a
fake. The production implementation (pkg/runtime/podman) shells out to the
podman CLI.

# Architecture

	┌──────────────────────────────────────────────────┐
	│                  pkg/deploy                       │
	│   start / stop / restart / status / logs / exec   │
	└─────────────────────┬────────────────────────────┘
	                      │ Runtime interface
	          ┌───────────┴───────────┐
	          ▼                       ▼
	┌──────────────────┐    ┌──────────────────┐
	│ runtime/podman   │    │  fakeRuntime     │
	│ podman CLI exec  │    │  (tests only)    │
	└──────────────────┘    └──────────────────┘

# Semantics

The interface encodes the rules the orchestrator relies on:

  - State is derived, never cached. PodState answers from a live query, and
    an absent pod is the PodStateAbsent value, not an error.
  - Teardown is idempotent. StopPod and RemovePod succeed on a pod that is
    already gone, so stop can be retried safely forever.
  - Images are never pulled. ImageExists only checks local storage; a
    missing image becomes an ImageNotFoundError naming the image and the
    command that builds it.
  - Every container is hardened. RunContainer implementations apply the
    read-only root, empty capability set, and no-new-privileges settings
    unconditionally; ContainerSpec has no way to opt out.

# Errors

Sentinel errors (ErrRuntimeUnavailable, ErrPodExists,
ErrContainerNotRunning) are matched with errors.Is; ImageNotFoundError
carries the image reference and is matched with errors.As.
*/
package runtime
