// Package credentials injects operator SSH access into provisioned VMs.
//
// Access material is delivered as a cloud-config document through the
// platform's guest customization mechanism: one user block per operator,
// each with passwordless sudo and an authorized SSH key. A VM is only
// Ready once this injection succeeded, because the downstream tooling
// needs SSH access to every host it is handed.
package credentials

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/kubeprism/kubeprism/internal/config"
)

const cloudConfigHeader = "#cloud-config\nusers:"

const cloudConfigUserBlock = `  - name: %s
    shell: /bin/bash
    sudo: ['ALL=(ALL) NOPASSWD:ALL']
    lock_passwd: true
    ssh-authorized-keys:
      - %s`

// CloudConfig renders the cloud-config userdata for the given operator
// users. Public keys are validated so a typo fails the run before any VM
// is touched.
func CloudConfig(users []config.User) (string, error) {
	if len(users) == 0 {
		return "", fmt.Errorf("at least one user is required")
	}

	parts := []string{cloudConfigHeader}
	for _, user := range users {
		key := strings.TrimSpace(user.PublicKey)
		if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(key)); err != nil {
			return "", fmt.Errorf("invalid public key for user %s: %w", user.Username, err)
		}
		parts = append(parts, fmt.Sprintf(cloudConfigUserBlock, user.Username, key))
	}

	return strings.Join(parts, "\n"), nil
}
