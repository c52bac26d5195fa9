// Package compute runs the per-VM provisioning pipeline: clone from the
// base VM, size, attach network, power on, wait for an address and inject
// credentials. Pipelines for the VMs of a role run concurrently and fail
// independently.
package compute

import (
	"context"
	"fmt"
	"log"

	"github.com/kubeprism/kubeprism/internal/config"
	"github.com/kubeprism/kubeprism/internal/platform/prism"
	"github.com/kubeprism/kubeprism/internal/provisioning"
	"github.com/kubeprism/kubeprism/internal/provisioning/credentials"
	"github.com/kubeprism/kubeprism/internal/util/async"
	"github.com/kubeprism/kubeprism/internal/util/retry"
)

// Provisioner drives role VMs from nothing to ready.
type Provisioner struct {
	platform prism.Platform
	timeouts *config.Timeouts
	injector *credentials.Injector
}

// NewProvisioner creates a provisioner using the given platform session.
func NewProvisioner(platform prism.Platform, timeouts *config.Timeouts, injector *credentials.Injector) *Provisioner {
	return &Provisioner{
		platform: platform,
		timeouts: timeouts,
		injector: injector,
	}
}

// ProvisionRole provisions spec.Count VMs for the role concurrently. Every
// VM reaches a terminal record, Ready or Failed, and is published to the
// run state. One VM failing never aborts its siblings.
func (p *Provisioner) ProvisionRole(ctx *provisioning.Context, spec config.RoleSpec) []*provisioning.VMRecord {
	records := make([]*provisioning.VMRecord, 0, spec.Count)
	tasks := make([]async.Task, 0, spec.Count)

	for ordinal := 1; ordinal <= spec.Count; ordinal++ {
		rec := provisioning.NewVMRecord(spec, ordinal, ctx.Config.ClusterName)
		rec.User = p.injector.SSHUser()
		records = append(records, rec)

		tasks = append(tasks, async.Task{
			Name: rec.Name,
			Func: func(taskCtx context.Context) error {
				ip, err := p.provisionOne(taskCtx, ctx.State, rec)
				if err != nil {
					rec.MarkFailed(err)
				} else {
					rec.MarkReady(ip)
				}
				ctx.State.Publish(rec)
				return err
			},
		})
	}

	// Errors are already recorded per VM; the aggregate map is not needed.
	async.Run(ctx, tasks, true)
	return records
}

// provisionOne runs the full pipeline for a single VM and returns its IP.
// A VM with the target name that already exists is adopted instead of
// cloned, which makes re-runs after partial failures safe.
func (p *Provisioner) provisionOne(ctx context.Context, state *provisioning.State, rec *provisioning.VMRecord) (string, error) {
	existing, err := p.findByName(ctx, rec.Name)
	if err != nil {
		return "", err
	}

	if existing != nil {
		rec.UUID = existing.UUID
		rec.Adopted = true
		log.Printf("[Compute] Adopting existing vm %s (%s)", rec.Name, existing.UUID)
		if existing.PowerState != prism.PowerOn {
			if err := p.submit(ctx, func() (*prism.TaskHandle, error) {
				return p.platform.PowerOnVM(ctx, rec.UUID)
			}); err != nil {
				return "", fmt.Errorf("failed to power on %s: %w", rec.Name, err)
			}
		}
		return p.finish(ctx, rec)
	}

	if state.BaseVM == nil {
		return "", fmt.Errorf("no base vm to clone %s from", rec.Name)
	}

	log.Printf("[Compute] Cloning %s from base vm %s", rec.Name, state.BaseVM.Name)
	if err := p.submit(ctx, func() (*prism.TaskHandle, error) {
		return p.platform.CloneVM(ctx, state.BaseVM.UUID, prism.CloneOpts{
			Name:     rec.Name,
			VCPUs:    rec.Spec.VCPUs,
			MemoryMB: int64(rec.Spec.RAMGB) * 1024,
		})
	}); err != nil {
		return "", fmt.Errorf("failed to clone %s: %w", rec.Name, err)
	}

	// The clone task does not return the new VM's identity; look it up by
	// name, retrying because the VM list can lag the clone task.
	cloned, err := p.findByNameRetry(ctx, rec.Name)
	if err != nil {
		return "", err
	}
	rec.UUID = cloned.UUID

	if err := p.submit(ctx, func() (*prism.TaskHandle, error) {
		return p.platform.SetVMResources(ctx, rec.UUID, prism.ResourceOpts{
			VCPUs:    rec.Spec.VCPUs,
			MemoryMB: int64(rec.Spec.RAMGB) * 1024,
			DiskGB:   rec.Spec.DiskGB,
		})
	}); err != nil {
		return "", fmt.Errorf("failed to size %s: %w", rec.Name, err)
	}

	networkUUID, ok := state.Networks[rec.Spec.Network]
	if !ok {
		return "", fmt.Errorf("network %q was not resolved", rec.Spec.Network)
	}
	if err := p.submit(ctx, func() (*prism.TaskHandle, error) {
		return p.platform.AttachNetwork(ctx, rec.UUID, networkUUID)
	}); err != nil {
		return "", fmt.Errorf("failed to attach network to %s: %w", rec.Name, err)
	}

	if err := p.submit(ctx, func() (*prism.TaskHandle, error) {
		return p.platform.PowerOnVM(ctx, rec.UUID)
	}); err != nil {
		return "", fmt.Errorf("failed to power on %s: %w", rec.Name, err)
	}

	return p.finish(ctx, rec)
}

// finish waits for the VM's address and injects credentials. Shared by the
// clone and adopt paths.
func (p *Provisioner) finish(ctx context.Context, rec *provisioning.VMRecord) (string, error) {
	ip, err := waitForAddress(ctx, p.platform, rec.Name, rec.UUID,
		p.timeouts.PollInterval, p.timeouts.Address)
	if err != nil {
		return "", err
	}

	if err := p.injector.Inject(ctx, rec.Name, rec.UUID); err != nil {
		return "", err
	}
	return ip, nil
}

// submit runs one async platform mutation and waits for its task.
func (p *Provisioner) submit(ctx context.Context, op func() (*prism.TaskHandle, error)) error {
	handle, err := op()
	if err != nil {
		return err
	}
	_, err = prism.WaitTask(ctx, p.platform, handle, prism.WaitOpts{
		Interval: p.timeouts.PollInterval,
		Timeout:  p.timeouts.Task,
	})
	return err
}

// findByName returns the VM whose name matches exactly, or nil. The search
// endpoint matches substrings, so vm names that prefix each other must be
// filtered here.
func (p *Provisioner) findByName(ctx context.Context, name string) (*prism.VM, error) {
	vms, err := p.platform.FindVMs(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search for vm %s: %w", name, err)
	}
	for i := range vms {
		if vms[i].Name == name {
			return &vms[i], nil
		}
	}
	return nil, nil
}

func (p *Provisioner) findByNameRetry(ctx context.Context, name string) (*prism.VM, error) {
	var found *prism.VM
	err := retry.Do(ctx, func() error {
		var lookupErr error
		found, lookupErr = p.findByName(ctx, name)
		if lookupErr != nil {
			return lookupErr
		}
		if found == nil {
			return fmt.Errorf("vm %s not visible yet", name)
		}
		return nil
	},
		retry.WithAttempts(p.timeouts.RetryAttempts),
		retry.WithInitialDelay(p.timeouts.RetryInitialDelay))
	if err != nil {
		return nil, fmt.Errorf("failed to find cloned vm %s: %w", name, err)
	}
	return found, nil
}
