/*
Package podman implements the runtime adapter on top of the podman CLI.

Every operation is an exec.CommandContext invocation of the local podman
binary. Existence questions (pod exists, image exists, container exists) use
podman's exit-status queries; state questions use --format templates; the
container list uses --format json. Argument construction is separated from
execution so the flag set, including the unconditional hardening flags, is
unit-testable without a podman installation.
*/
package podman
