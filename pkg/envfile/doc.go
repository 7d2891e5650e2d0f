/*
Package envfile loads the workload secrets file and merges it with the
calling environment.

The file feeds the gateway container and supplies OPENCLAW_GATEWAY_TOKEN;
it is distinct from the orchestrator's own settings file (pkg/config). The
merge rule is fixed: the file provides defaults, the calling environment
always overrides. Values are kept byte-for-byte as written after the first
'='; only keys are trimmed.
*/
package envfile
