package orchestration

import (
	"context"

	"github.com/kubeprism/kubeprism/internal/provisioning"
	"github.com/kubeprism/kubeprism/internal/provisioning/compute"
	"github.com/kubeprism/kubeprism/internal/util/async"
)

// computePhase provisions the VMs of every role concurrently. It never
// returns an error: each VM ends in a terminal record, and shortfalls are
// judged by the inventory step.
type computePhase struct {
	provisioner *compute.Provisioner
}

func (p *computePhase) Name() string { return "compute" }

func (p *computePhase) Provision(ctx *provisioning.Context) error {
	tasks := make([]async.Task, 0, 2)
	for _, spec := range ctx.Config.Roles() {
		spec := spec
		if spec.Count == 0 {
			continue
		}
		tasks = append(tasks, async.Task{
			Name: "provision-" + spec.Role,
			Func: func(context.Context) error {
				p.provisioner.ProvisionRole(ctx, spec)
				return nil
			},
		})
	}
	async.Run(ctx, tasks, true)
	return nil
}
