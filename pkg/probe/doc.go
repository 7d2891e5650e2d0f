/*
Package probe implements readiness checking for the browser sidecar and the
gateway.

A Checker performs one check; Wait turns a Checker into a blocking
poll-sleep loop with a bounded attempt budget. Two checkers exist:

  - ExecChecker requests an in-pod URL from inside the target container via
    the runtime adapter. This is how sidecar readiness works: the browser
    control endpoint is not published to the host, so only an in-pod request
    can see it.
  - HTTPChecker requests a host-reachable URL directly. status uses it to
    report whether the gateway answers on loopback.

# Timing

Wait returns the moment a check succeeds and sleeps only between failed
attempts, so success at attempt N costs at most N-1 intervals of waiting.
Exhausting the budget yields ReadinessResult{Ready: false} with the attempt
count and last failure; the caller decides whether that is fatal. The
default start policy treats it as a warning and continues, because a
half-started pod is easier to diagnose with status and logs than a torn-down
one.
*/
package probe
