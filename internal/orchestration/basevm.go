package orchestration

import (
	"fmt"
	"log"

	"github.com/kubeprism/kubeprism/internal/config"
	"github.com/kubeprism/kubeprism/internal/platform/prism"
	"github.com/kubeprism/kubeprism/internal/provisioning"
	"github.com/kubeprism/kubeprism/internal/provisioning/credentials"
	"github.com/kubeprism/kubeprism/internal/util/retry"
)

// baseVMPhase gets or creates the template VM that role VMs are cloned
// from. The base VM is built from the resolved image disk and stays powered
// off; only its clones run.
type baseVMPhase struct {
	injector *credentials.Injector
}

func (p *baseVMPhase) Name() string { return "base-vm" }

func (p *baseVMPhase) Provision(ctx *provisioning.Context) error {
	name := ctx.Config.BaseVM

	existing, err := findVMByName(ctx, ctx.Platform, name)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Printf("[BaseVM] Using existing base vm %s (%s)", name, existing.UUID)
		ctx.State.BaseVM = existing
		return nil
	}

	networkUUID, ok := ctx.State.Networks[ctx.Config.Network]
	if !ok {
		return fmt.Errorf("network %q was not resolved", ctx.Config.Network)
	}

	log.Printf("[BaseVM] Creating base vm %s from image %s", name, ctx.State.ImageUUID)
	handle, err := ctx.Platform.CreateVM(ctx, prism.CreateVMOpts{
		Name:          name,
		VCPUs:         config.BaseVMVCPUs,
		MemoryMB:      config.BaseVMRAMGB * 1024,
		DiskGB:        config.BaseVMDiskGB,
		NetworkUUID:   networkUUID,
		ImageDiskUUID: ctx.State.ImageDiskID,
		Userdata:      p.injector.Userdata(),
	})
	if err != nil {
		return fmt.Errorf("failed to submit base vm creation: %w", err)
	}
	if _, err := prism.WaitTask(ctx, ctx.Platform, handle, prism.WaitOpts{
		Interval: ctx.Timeouts.PollInterval,
		Timeout:  ctx.Timeouts.Task,
	}); err != nil {
		return fmt.Errorf("base vm creation did not complete: %w", err)
	}

	// The VM list can lag the creation task briefly.
	var created *prism.VM
	err = retry.Do(ctx, func() error {
		var lookupErr error
		created, lookupErr = findVMByName(ctx, ctx.Platform, name)
		if lookupErr != nil {
			return lookupErr
		}
		if created == nil {
			return fmt.Errorf("base vm %s not visible yet", name)
		}
		return nil
	},
		retry.WithAttempts(ctx.Timeouts.RetryAttempts),
		retry.WithInitialDelay(ctx.Timeouts.RetryInitialDelay))
	if err != nil {
		return fmt.Errorf("failed to find created base vm: %w", err)
	}

	ctx.State.BaseVM = created
	return nil
}

// findVMByName returns the VM whose name matches exactly, or nil. The
// search endpoint matches substrings.
func findVMByName(ctx *provisioning.Context, vms prism.VMService, name string) (*prism.VM, error) {
	found, err := vms.FindVMs(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search for vm %s: %w", name, err)
	}
	for i := range found {
		if found[i].Name == name {
			return &found[i], nil
		}
	}
	return nil, nil
}
