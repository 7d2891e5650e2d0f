/*
Package volume provisions the host directories behind the pod's persistent
bind mounts: the config root, the workspace, and the browser profile data.

Provisioning runs before any container exists and is deliberately two-tier.
Directory creation must succeed or the deployment aborts, because a missing
mount source would surface later as a confusing runtime failure. Permission
tightening to 0700 is best effort: the failure is reported in the Result for
the caller to log, and the deployment continues, since an over-permissive
directory still works.
*/
package volume
