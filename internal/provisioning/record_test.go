package provisioning

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kubeprism/kubeprism/internal/config"
)

func TestVMRecord_Lifecycle(t *testing.T) {
	rec := NewVMRecord(config.RoleSpec{Role: config.RoleWorker}, 2, "demo.local")

	assert.Equal(t, "worker-2-demo.local", rec.Name)
	assert.Equal(t, StatePending, rec.State)
	assert.False(t, rec.Terminal())

	rec.MarkReady("10.0.0.12")
	assert.Equal(t, StateReady, rec.State)
	assert.Equal(t, "10.0.0.12", rec.IP)
	assert.True(t, rec.Terminal())
}

func TestVMRecord_Failure(t *testing.T) {
	rec := NewVMRecord(config.RoleSpec{Role: config.RoleWorker}, 0, "demo")
	rec.MarkFailed(errors.New("address timeout"))

	assert.Equal(t, StateFailed, rec.State)
	assert.True(t, rec.Terminal())
	assert.Contains(t, rec.FailureReason(), "worker-0-demo")
	assert.Contains(t, rec.FailureReason(), "address timeout")
}

func TestState_RecordsSortedByRoleThenOrdinal(t *testing.T) {
	state := NewState()
	state.Publish(NewVMRecord(config.RoleSpec{Role: config.RoleWorker}, 1, "d"))
	state.Publish(NewVMRecord(config.RoleSpec{Role: config.RoleControlPlane}, 1, "d"))
	state.Publish(NewVMRecord(config.RoleSpec{Role: config.RoleWorker}, 0, "d"))
	state.Publish(NewVMRecord(config.RoleSpec{Role: config.RoleControlPlane}, 0, "d"))

	var names []string
	for _, rec := range state.Records() {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{
		"control-plane-0-d",
		"control-plane-1-d",
		"worker-0-d",
		"worker-1-d",
	}, names)
}

func TestState_ReadyCount(t *testing.T) {
	state := NewState()

	ready := NewVMRecord(config.RoleSpec{Role: config.RoleWorker}, 0, "d")
	ready.MarkReady("10.0.0.2")
	failed := NewVMRecord(config.RoleSpec{Role: config.RoleWorker}, 1, "d")
	failed.MarkFailed(errors.New("boom"))

	state.Publish(ready)
	state.Publish(failed)

	assert.Equal(t, 1, state.ReadyCount(config.RoleWorker))
	assert.Equal(t, 0, state.ReadyCount(config.RoleControlPlane))
}
