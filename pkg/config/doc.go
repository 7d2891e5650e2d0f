/*
Package config resolves the orchestrator configuration into one explicit
Config value.

Resolution happens exactly once, in Load, and the result is passed as a
parameter everywhere. Precedence, highest first:

 1. explicit command-line overrides
 2. the calling process environment (OPENCLAW_* variables)
 3. the secrets file (keys not already exported by the caller)
 4. the optional YAML settings file (<config-dir>/clawpod.yaml)
 5. built-in defaults

The secrets file (pkg/envfile) carries the workload environment and the
required OPENCLAW_GATEWAY_TOKEN; the settings file tunes the orchestrator
itself (probe cadence, strict readiness, images). Both are optional; the
token is the only value with no default anywhere.

Validation is part of Load: malformed ports, bind modes, tmpfs sizes, pod
names, or probe settings surface as *ValidationError before any command
logic runs.
*/
package config
