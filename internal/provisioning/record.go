package provisioning

import (
	"fmt"

	"github.com/kubeprism/kubeprism/internal/config"
	"github.com/kubeprism/kubeprism/internal/util/naming"
)

// VMState is the lifecycle state of a provisioned VM.
type VMState string

const (
	// StatePending means no terminal state has been reached yet.
	StatePending VMState = "pending"
	// StateReady means the VM has an IP and credentials injected.
	StateReady VMState = "ready"
	// StateFailed means some pipeline step failed or timed out.
	StateFailed VMState = "failed"
)

// VMRecord tracks one VM through its provisioning pipeline. The pipeline
// owns the record exclusively until it publishes the terminal state, so no
// field needs locking.
type VMRecord struct {
	Name    string
	UUID    string
	Role    string
	Ordinal int
	Spec    config.RoleSpec

	// IP is empty until address resolution succeeds.
	IP string
	// User is the SSH user the downstream tooling connects as.
	User string

	State VMState
	Err   error

	// Adopted is true when a VM with this name already existed and was
	// taken over instead of cloned.
	Adopted bool
}

// NewVMRecord creates a pending record with the deterministic VM name for
// the role, ordinal and cluster domain.
func NewVMRecord(spec config.RoleSpec, ordinal int, domain string) *VMRecord {
	return &VMRecord{
		Name:    naming.VM(spec.Role, ordinal, domain),
		Role:    spec.Role,
		Ordinal: ordinal,
		Spec:    spec,
		State:   StatePending,
	}
}

// MarkReady transitions the record to Ready with the resolved address.
func (r *VMRecord) MarkReady(ip string) {
	r.IP = ip
	r.State = StateReady
}

// MarkFailed transitions the record to Failed, keeping the cause.
func (r *VMRecord) MarkFailed(err error) {
	r.Err = err
	r.State = StateFailed
}

// Terminal reports whether the record reached Ready or Failed.
func (r *VMRecord) Terminal() bool {
	return r.State == StateReady || r.State == StateFailed
}

// FailureReason describes why the VM is not usable, for run reports.
func (r *VMRecord) FailureReason() string {
	if r.Err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", r.Name, r.Err)
}
