/*
Package types defines the shared data model for the clawpod deployment tool.

The model is small and deliberate: a PodSpec describing the shared pod and
its published ports, a ContainerSpec per container, typed PodState values
derived from the runtime, and result types for status and readiness
reporting.

# States

PodState values mirror what the runtime reports at the moment of the query:

	absent             no pod with the configured name exists
	created            pod exists, no containers started yet
	running            all containers running
	partially-running  some containers running, some stopped
	stopped            pod exists, all containers stopped

State is never persisted or cached. Every operation that needs it asks the
runtime again, so two invocations of the tool can never disagree about a pod
because of stale local state.

# Naming

Container names are derived from the pod name and are not configurable:
GatewayContainerName and BrowserContainerName yield "<pod>-gateway" and
"<pod>-browser". All lookups, log streaming, and exec targeting go through
these two functions.

# Hardening

ContainerSpec carries no security knobs on purpose. The runtime adapter
starts every container with a read-only root filesystem, an empty capability
set, and privilege escalation disabled. Writable paths exist only where a
ContainerSpec mounts them: bind mounts for persistent host directories and
size-capped noexec,nosuid tmpfs mounts for scratch paths.

Mounts use the OCI runtime-spec Mount type, so bind and tmpfs mounts share
one vocabulary with the rest of the container ecosystem.
*/
package types
