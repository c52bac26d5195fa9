package orchestration

import (
	"fmt"
	"log"

	"github.com/kubeprism/kubeprism/internal/provisioning"
)

// networkPhase resolves every configured network name to its platform UUID
// before any VM work starts. A missing network is fatal: every clone of the
// role would fail the same way.
type networkPhase struct{}

func (p *networkPhase) Name() string { return "network" }

func (p *networkPhase) Provision(ctx *provisioning.Context) error {
	names := map[string]bool{ctx.Config.Network: true}
	for _, spec := range ctx.Config.Roles() {
		if spec.Network != "" {
			names[spec.Network] = true
		}
	}

	for name := range names {
		if name == "" {
			continue
		}
		network, err := ctx.Platform.FindNetwork(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to look up network %q: %w", name, err)
		}
		if network == nil {
			return fmt.Errorf("network %q not found on the platform", name)
		}
		ctx.State.Networks[name] = network.UUID
		log.Printf("[Network] Resolved %s to %s", name, network.UUID)
	}
	return nil
}
