// Package orchestration coordinates the provisioning workflow.
//
// The reconciler runs the phases in order: connect, resolve networks,
// resolve the image, ensure the base VM, then provision role VMs. Phase
// failures are fatal; individual VM failures inside the compute phase are
// not, they surface through the final inventory step.
package orchestration

import (
	"context"
	"fmt"
	"log"

	"github.com/kubeprism/kubeprism/internal/config"
	"github.com/kubeprism/kubeprism/internal/inventory"
	"github.com/kubeprism/kubeprism/internal/platform/prism"
	"github.com/kubeprism/kubeprism/internal/provisioning"
	"github.com/kubeprism/kubeprism/internal/provisioning/compute"
	"github.com/kubeprism/kubeprism/internal/provisioning/credentials"
	"github.com/kubeprism/kubeprism/internal/provisioning/image"
)

// Reconciler drives a cluster from configuration to inventory.
type Reconciler struct {
	platform prism.Platform
	config   *config.Config
	timeouts *config.Timeouts
	state    *provisioning.State

	phases []provisioning.Phase
}

// NewReconciler wires the provisioning phases for the given platform
// session and cluster configuration.
func NewReconciler(platform prism.Platform, cfg *config.Config, timeouts *config.Timeouts) (*Reconciler, error) {
	injector, err := credentials.NewInjector(platform, timeouts, cfg.Users)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare credentials: %w", err)
	}

	return &Reconciler{
		platform: platform,
		config:   cfg,
		timeouts: timeouts,
		state:    provisioning.NewState(),
		phases: []provisioning.Phase{
			&connectPhase{},
			&networkPhase{},
			&imagePhase{resolver: image.NewResolver(platform, timeouts)},
			&baseVMPhase{injector: injector},
			&computePhase{provisioner: compute.NewProvisioner(platform, timeouts, injector)},
		},
	}, nil
}

// Reconcile runs all provisioning phases and returns the rendered kubespray
// inventory. When any role ends below its desired count the error is an
// *inventory.InsufficientNodesError and no inventory is returned.
func (r *Reconciler) Reconcile(ctx context.Context) ([]byte, error) {
	pCtx := &provisioning.Context{
		Context:  ctx,
		Config:   r.config,
		State:    r.state,
		Platform: r.platform,
		Timeouts: r.timeouts,
	}

	for _, phase := range r.phases {
		log.Printf("[Reconcile] Starting phase: %s", phase.Name())
		if err := phase.Provision(pCtx); err != nil {
			return nil, fmt.Errorf("phase %s failed: %w", phase.Name(), err)
		}
	}

	r.report()

	out, err := inventory.Build(r.state.Records(), r.config.DesiredCounts())
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Records exposes the terminal VM records of the last run, for reporting.
func (r *Reconciler) Records() []*provisioning.VMRecord {
	return r.state.Records()
}

func (r *Reconciler) report() {
	desired := r.config.DesiredCounts()
	for _, spec := range r.config.Roles() {
		log.Printf("[Report] %s: %d/%d ready", spec.Role, r.state.ReadyCount(spec.Role), desired[spec.Role])
	}
	for _, rec := range r.state.Records() {
		if rec.State == provisioning.StateFailed {
			log.Printf("[Report] failed: %s", rec.FailureReason())
		}
	}
}

// connectPhase authenticates the platform session.
type connectPhase struct{}

func (p *connectPhase) Name() string { return "connect" }

func (p *connectPhase) Provision(ctx *provisioning.Context) error {
	return ctx.Platform.Connect(ctx)
}
