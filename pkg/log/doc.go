/*
Package log provides structured logging for clawpod using zerolog.

The log package wraps the zerolog library to provide structured diagnostics
with component-specific child loggers, configurable log levels, and helper
functions for common patterns. All records carry timestamps and support
filtering by severity.

# Output discipline

Diagnostics always go to stderr. Stdout belongs to the commands themselves:
status tables, reachable URLs, streamed container logs, and passthrough exec
output. This keeps the tool scriptable; piping stdout never captures log
noise.

The CLI selects the format: a zerolog ConsoleWriter when stderr is a
terminal, JSON otherwise (or always JSON with --log-json). Packages never
choose a format; they log through the global Logger or a child of it.

# Usage

	import "github.com/openclaw/clawpod/pkg/log"

	log.Init(log.Config{Level: log.InfoLevel, Pretty: true})

	logger := log.WithComponent("deploy")
	logger.Info().Str("pod", "openclaw").Msg("creating pod")
	logger.Warn().Int("attempts", 60).Msg("browser readiness timed out")

# Levels

	debug   runtime command traces, probe attempts
	info    lifecycle progress (phases, containers started)
	warn    degraded-but-continuing conditions (chmod failures, probe timeout)
	error   operation failures

# Best Practices

Do:
  - Use structured fields for queryable data (.Str, .Int, .Dur)
  - Create component-specific loggers
  - Log errors with .Err()
  - Include context (pod name, container name, phase)

Don't:
  - Log secret values (the gateway token is never a log field)
  - Write command output through the logger
*/
package log
