package config

import (
	"fmt"
	"regexp"

	"golang.org/x/crypto/ssh"
)

// domainName matches valid DNS-style cluster names. The cluster name ends up
// in every VM name and in the downstream inventory, so it has to be safe.
var domainName = regexp.MustCompile(
	`^[a-z0-9]([-a-z0-9]*[a-z0-9])?(\.[a-z0-9]([-a-z0-9]*[a-z0-9])?)*$`,
)

// supportedControlPlaneCounts are the etcd-quorum-safe control plane sizes.
var supportedControlPlaneCounts = map[int]bool{1: true, 3: true, 5: true}

// Validate checks the configuration for errors that would make a run
// impossible or hand a broken cluster to the downstream tooling.
func (c *Config) Validate() error {
	if c.ClusterName == "" {
		return fmt.Errorf("cluster_name is required")
	}
	if !domainName.MatchString(c.ClusterName) {
		return fmt.Errorf("cluster_name %q is not a valid domain name", c.ClusterName)
	}
	if c.BaseVM == "" {
		return fmt.Errorf("base_vm is required")
	}
	if c.Image.Name == "" {
		return fmt.Errorf("image.name is required")
	}
	if c.Image.StorageContainer == "" {
		return fmt.Errorf("image.storage_container is required")
	}

	for _, role := range c.Roles() {
		if role.Count < 1 {
			return fmt.Errorf("%s count must be at least 1", role.Role)
		}
		if role.Network == "" {
			return fmt.Errorf("%s has no network (set network or %s.network)", role.Role, role.Role)
		}
		if role.VCPUs < 1 || role.RAMGB < 1 || role.DiskGB < 1 {
			return fmt.Errorf("%s sizing must be positive", role.Role)
		}
	}

	if !supportedControlPlaneCounts[c.ControlPlane.Count] {
		return fmt.Errorf("control-plane count must be one of 1, 3 or 5, got %d", c.ControlPlane.Count)
	}

	if len(c.Users) == 0 {
		return fmt.Errorf("at least one user with an SSH public key is required")
	}
	for _, user := range c.Users {
		if user.Username == "" {
			return fmt.Errorf("user with public key %.20q has no username", user.PublicKey)
		}
		if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(user.PublicKey)); err != nil {
			return fmt.Errorf("user %s has an invalid SSH public key: %w", user.Username, err)
		}
	}

	return nil
}
