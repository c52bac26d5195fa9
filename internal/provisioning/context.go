// Package provisioning defines the shared state and per-VM records that
// flow between provisioning phases.
package provisioning

import (
	"context"
	"sort"
	"sync"

	"github.com/kubeprism/kubeprism/internal/config"
	"github.com/kubeprism/kubeprism/internal/platform/prism"
)

// roleRank orders roles deterministically: control plane before workers.
var roleRank = map[string]int{
	config.RoleControlPlane: 0,
	config.RoleWorker:       1,
}

// State holds the shared results of provisioning phases. It is progressively
// populated as each phase completes. Concurrent VM pipelines publish their
// terminal records through Publish; everything else is written by exactly
// one phase before the next starts.
type State struct {
	// Image results (populated by the image resolver)
	ImageUUID   string
	ImageDiskID string

	// Networks maps network name to platform UUID.
	Networks map[string]string

	// BaseVM is the template VM that role VMs are cloned from.
	BaseVM *prism.VM

	mu      sync.Mutex
	records []*VMRecord
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{
		Networks: make(map[string]string),
	}
}

// Publish adds a terminal VM record to the run's result set. It is the
// single aggregation point for concurrent pipelines.
func (s *State) Publish(rec *VMRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

// Records returns all published records sorted by role, then ordinal.
func (s *State) Records() []*VMRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*VMRecord, len(s.records))
	copy(out, s.records)
	sort.Slice(out, func(i, j int) bool {
		if roleRank[out[i].Role] != roleRank[out[j].Role] {
			return roleRank[out[i].Role] < roleRank[out[j].Role]
		}
		return out[i].Ordinal < out[j].Ordinal
	})
	return out
}

// ReadyCount returns how many published records for the role are Ready.
func (s *State) ReadyCount(role string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, rec := range s.records {
		if rec.Role == role && rec.State == StateReady {
			count++
		}
	}
	return count
}

// Context wraps all dependencies and state needed for a provisioning phase.
type Context struct {
	context.Context
	Config   *config.Config
	State    *State
	Platform prism.Platform
	Timeouts *config.Timeouts
}

// NewContext creates a new provisioning context.
func NewContext(ctx context.Context, cfg *config.Config, platform prism.Platform) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		State:    NewState(),
		Platform: platform,
		Timeouts: config.LoadTimeouts(),
	}
}

// Phase is one step of the provisioning workflow.
type Phase interface {
	Name() string
	Provision(ctx *Context) error
}
