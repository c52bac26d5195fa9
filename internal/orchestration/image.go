package orchestration

import (
	"log"

	"github.com/kubeprism/kubeprism/internal/provisioning"
	"github.com/kubeprism/kubeprism/internal/provisioning/image"
)

// imagePhase makes sure the base OS image exists on the platform and
// records its identifiers for the base VM phase.
type imagePhase struct {
	resolver *image.Resolver
}

func (p *imagePhase) Name() string { return "image" }

func (p *imagePhase) Provision(ctx *provisioning.Context) error {
	resolved, err := p.resolver.Resolve(ctx, ctx.Config.Image)
	if err != nil {
		return err
	}
	ctx.State.ImageUUID = resolved.UUID
	ctx.State.ImageDiskID = resolved.VMDiskID
	log.Printf("[Image] Using image %s (%s)", resolved.Name, resolved.UUID)
	return nil
}
