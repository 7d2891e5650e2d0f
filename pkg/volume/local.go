package volume

import (
	"fmt"
	"os"
)

// DirMode is the permission set for provisioned directories. The config
// root holds secrets and browser profile data, so group and other access is
// never granted.
const DirMode = 0700

// Result reports one provisioning pass. Creation failures abort the pass;
// permission-tightening failures do not, they land in Warnings for the
// caller to log and carry on.
type Result struct {
	Created  []string
	Warnings []string
}

// Provisioner ensures the host directories backing the pod's bind mounts
type Provisioner struct{}

// NewProvisioner creates a host directory provisioner
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Ensure creates every path recursively with DirMode and tightens
// permissions on paths that already existed. A creation failure returns
// immediately; chmod failures are warnings only.
func (p *Provisioner) Ensure(paths []string) (Result, error) {
	var res Result
	for _, path := range paths {
		existed := true
		if _, err := os.Stat(path); err != nil {
			if !os.IsNotExist(err) {
				return res, fmt.Errorf("failed to stat %s: %w", path, err)
			}
			existed = false
		}

		if err := os.MkdirAll(path, DirMode); err != nil {
			return res, fmt.Errorf("failed to create directory %s: %w", path, err)
		}
		if !existed {
			res.Created = append(res.Created, path)
		}

		if err := os.Chmod(path, DirMode); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("could not tighten permissions on %s: %v", path, err))
		}
	}
	return res, nil
}
