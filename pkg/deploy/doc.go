/*
Package deploy orchestrates the OpenClaw pod lifecycle.

The deploy package owns every decision about what runs: container names,
images, mounts, environment, port bindings, and the order in which the
pieces come up. It drives those decisions through the runtime.Runtime
interface and never shells out itself, which is what makes the whole
sequence testable against a fake.

# Architecture

The start sequence is a straight line with one gate in the middle:

	┌────────────── START SEQUENCE ───────────────────────────┐
	│                                                          │
	│  validating ──── token, runtime, images, no pod yet      │
	│      │           (no mutation before this completes)     │
	│      ▼                                                   │
	│  provisioning ── host dirs created 0700                  │
	│      │                                                   │
	│      ▼                                                   │
	│  creating-pod ── ports published at the pod layer        │
	│      │           gateway → loopback, display → all       │
	│      ▼                                                   │
	│  starting-browser ── sidecar with persistent $HOME       │
	│      │                                                   │
	│      ▼                                                   │
	│  awaiting-browser ── poll DevTools endpoint in-pod       │
	│      │               exhausted budget = warn + continue  │
	│      ▼               (fatal with RequireBrowserReady)    │
	│  starting-gateway ── merged env + computed wiring        │
	│      │                                                   │
	│      ▼                                                   │
	│  started ── URLs printed to stdout                       │
	└──────────────────────────────────────────────────────────┘

The gateway starts after the browser because it dials the DevTools
endpoint on boot. The gate is soft: the gateway retries on its own, so an
unready browser delays nothing permanently.

# Core Components

Deployer:
  - One instance per command invocation
  - Holds config.Config and a runtime.Runtime
  - Verbs: Start, Stop, Restart, Status, Logs, Exec, Shell, Setup
  - Progress to stdout, diagnostics to the structured log

Phase:
  - Names the step a start failure happened in
  - Wrapped into errors and logged as a field

# Teardown

Stop is idempotent: an absent pod prints "not running" and succeeds. A
pod that refuses a graceful stop is removed anyway; Stop only fails when
the pod is still present after both attempts. Restart runs Stop then
Start unconditionally, so a half-dead pod cannot wedge recovery.

# Usage

	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		return err
	}
	d := deploy.NewDeployer(cfg, podman.New())

	if err := d.Start(ctx); err != nil {
		return err
	}

	status, err := d.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Println(status.State)

# Integration Points

This package integrates with:

  - pkg/config: all tunables and the merged workload environment
  - pkg/runtime: the adapter executing pod and container operations
  - pkg/probe: browser readiness polling via in-container exec
  - pkg/volume: host directory provisioning
  - pkg/envfile: secrets file generation during setup

# Error Semantics

Start errors wrap the phase they occurred in, so "validating: image
localhost/openclaw-browser:latest not found locally" tells the operator
both what failed and that nothing was mutated. Sentinel and typed errors
from pkg/runtime pass through wrapped, never replaced; callers can still
errors.Is and errors.As them.

Exec and Shell return the remote command's exit code with a nil error.
A non-nil error means the command could not be run at all.

# Best Practices

Do:
  - Run setup once per host before the first start
  - Keep the secrets file out of version control
  - Use status before debugging; it reads the runtime fresh

Don't:
  - Edit files under the config root while the pod is running
  - Publish the gateway port beyond loopback without a reason

# See Also

  - pkg/runtime for the adapter contract
  - pkg/probe for readiness timing
  - pkg/config for precedence rules
*/
package deploy
