// Package inventory renders the provisioning result as a kubespray Ansible
// inventory. Output is deterministic: the same set of records always
// produces the same bytes.
package inventory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kubeprism/kubeprism/internal/config"
	"github.com/kubeprism/kubeprism/internal/provisioning"
)

// sshCommonArgs disables host key checks. Freshly provisioned VMs have
// unknown host keys by definition.
const sshCommonArgs = "-o StrictHostKeyChecking=no -o UserKnownHostsFile=/dev/null"

// Shortfall describes one role that ended below its desired count.
type Shortfall struct {
	Role    string
	Ready   int
	Desired int
	// Reasons carries the failure reason of every non-ready VM of the role.
	Reasons []string
}

// InsufficientNodesError means at least one role has fewer ready VMs than
// configured, so a usable inventory cannot be written.
type InsufficientNodesError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientNodesError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s %d/%d ready", s.Role, s.Ready, s.Desired))
	}
	return "insufficient nodes: " + strings.Join(parts, ", ")
}

var roleRank = map[string]int{
	config.RoleControlPlane: 0,
	config.RoleWorker:       1,
}

// Build renders the inventory for the given records. desired maps each role
// to its configured count; a role whose ready records fall short makes Build
// fail with an InsufficientNodesError listing every shortfall.
func Build(records []*provisioning.VMRecord, desired map[string]int) ([]byte, error) {
	sorted := make([]*provisioning.VMRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if roleRank[sorted[i].Role] != roleRank[sorted[j].Role] {
			return roleRank[sorted[i].Role] < roleRank[sorted[j].Role]
		}
		return sorted[i].Ordinal < sorted[j].Ordinal
	})

	byRole := make(map[string][]*provisioning.VMRecord)
	for _, rec := range sorted {
		if rec.State == provisioning.StateReady {
			byRole[rec.Role] = append(byRole[rec.Role], rec)
		}
	}

	if err := checkCounts(sorted, byRole, desired); err != nil {
		return nil, err
	}

	var b strings.Builder

	b.WriteString("[kube-master]\n")
	for _, rec := range byRole[config.RoleControlPlane] {
		writeHost(&b, rec)
	}

	b.WriteString("\n[kube-node]\n")
	for _, rec := range byRole[config.RoleWorker] {
		writeHost(&b, rec)
	}

	b.WriteString("\n[etcd:children]\nkube-master\n")
	b.WriteString("\n[k8s-cluster:children]\nkube-master\nkube-node\n")
	b.WriteString("\n[k8s-cluster:vars]\n")
	b.WriteString("ansible_become=true\n")
	fmt.Fprintf(&b, "ansible_ssh_common_args='%s'\n", sshCommonArgs)

	return []byte(b.String()), nil
}

func writeHost(b *strings.Builder, rec *provisioning.VMRecord) {
	fmt.Fprintf(b, "%s ansible_host=%s ansible_user=%s\n", rec.Name, rec.IP, rec.User)
}

func checkCounts(records []*provisioning.VMRecord, byRole map[string][]*provisioning.VMRecord, desired map[string]int) error {
	roles := make([]string, 0, len(desired))
	for role := range desired {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roleRank[roles[i]] < roleRank[roles[j]] })

	var shortfalls []Shortfall
	for _, role := range roles {
		ready := len(byRole[role])
		if ready >= desired[role] {
			continue
		}
		shortfall := Shortfall{Role: role, Ready: ready, Desired: desired[role]}
		for _, rec := range records {
			if rec.Role == role && rec.State != provisioning.StateReady {
				shortfall.Reasons = append(shortfall.Reasons, rec.FailureReason())
			}
		}
		shortfalls = append(shortfalls, shortfall)
	}

	if len(shortfalls) > 0 {
		return &InsufficientNodesError{Shortfalls: shortfalls}
	}
	return nil
}
