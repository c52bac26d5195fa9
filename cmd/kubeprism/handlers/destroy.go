package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/kubeprism/kubeprism/internal/config"
	"github.com/kubeprism/kubeprism/internal/platform/prism"
	"github.com/kubeprism/kubeprism/internal/util/async"
)

// DestroyOptions carry the destroy command's flag values.
type DestroyOptions struct {
	ConfigPath  string
	TargetsPath string
	Cluster     string
	// IncludeBase also deletes the base template VM.
	IncludeBase bool
}

// Destroy handles the destroy command.
//
// It deletes every VM whose name carries the cluster's name suffix, in
// parallel. The base template VM is kept unless IncludeBase is set.
func Destroy(ctx context.Context, opts DestroyOptions) error {
	cfg, err := loadConfigFile(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	target, err := loadTarget(opts.TargetsPath, opts.Cluster)
	if err != nil {
		return fmt.Errorf("failed to load target: %w", err)
	}

	timeouts := loadTimeouts()
	platform := newPlatformClient(target, timeouts)

	if err := platform.Connect(ctx); err != nil {
		return err
	}

	vms, err := platform.FindVMs(ctx, cfg.ClusterName)
	if err != nil {
		return fmt.Errorf("failed to list cluster vms: %w", err)
	}

	suffix := "-" + cfg.ClusterName
	tasks := make([]async.Task, 0, len(vms))
	for i := range vms {
		vm := vms[i]
		if !strings.HasSuffix(vm.Name, suffix) {
			continue
		}
		tasks = append(tasks, async.Task{
			Name: "delete-" + vm.Name,
			Func: func(taskCtx context.Context) error {
				return deleteVM(taskCtx, platform, timeouts, vm.UUID)
			},
		})
	}

	if opts.IncludeBase {
		if base, findErr := findBaseVM(ctx, platform, cfg.BaseVM); findErr != nil {
			return findErr
		} else if base != nil {
			tasks = append(tasks, async.Task{
				Name: "delete-" + base.Name,
				Func: func(taskCtx context.Context) error {
					return deleteVM(taskCtx, platform, timeouts, base.UUID)
				},
			})
		}
	}

	if len(tasks) == 0 {
		log.Printf("[Destroy] No vms found for cluster %s", cfg.ClusterName)
		return nil
	}

	log.Printf("[Destroy] Deleting %d vm(s) of cluster %s", len(tasks), cfg.ClusterName)
	errs := async.Run(ctx, tasks, true)
	if len(errs) > 0 {
		return fmt.Errorf("failed to delete %d of %d vms", len(errs), len(tasks))
	}

	log.Printf("[Destroy] Cluster %s destroyed", cfg.ClusterName)
	return nil
}

func deleteVM(ctx context.Context, platform prism.Platform, timeouts *config.Timeouts, uuid string) error {
	handle, err := platform.DeleteVM(ctx, uuid)
	if err != nil {
		return err
	}
	_, err = prism.WaitTask(ctx, platform, handle, prism.WaitOpts{
		Interval: timeouts.PollInterval,
		Timeout:  timeouts.Task,
	})
	return err
}

func findBaseVM(ctx context.Context, platform prism.Platform, name string) (*prism.VM, error) {
	vms, err := platform.FindVMs(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search for base vm %s: %w", name, err)
	}
	for i := range vms {
		if vms[i].Name == name {
			return &vms[i], nil
		}
	}
	return nil, nil
}
