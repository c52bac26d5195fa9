// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/kubeprism/kubeprism/internal/config"
	"github.com/kubeprism/kubeprism/internal/orchestration"
	"github.com/kubeprism/kubeprism/internal/platform/prism"
	"github.com/kubeprism/kubeprism/internal/util/runlog"
)

// ApplyOptions carry the apply command's flag values.
type ApplyOptions struct {
	ConfigPath  string
	TargetsPath string
	Cluster     string
	OutputPath  string
}

// Reconciler interface for testing - matches orchestration.Reconciler.
type Reconciler interface {
	Reconcile(ctx context.Context) ([]byte, error)
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// newPlatformClient creates a platform client for the target.
	newPlatformClient = func(target *config.ClusterTarget, timeouts *config.Timeouts) prism.Platform {
		return prism.NewRealClient(target, prism.WithTimeouts(timeouts))
	}

	// newReconciler creates a provisioning reconciler.
	newReconciler = func(platform prism.Platform, cfg *config.Config, timeouts *config.Timeouts) (Reconciler, error) {
		return orchestration.NewReconciler(platform, cfg, timeouts)
	}

	// loadConfigFile loads the cluster config (for testing injection).
	loadConfigFile = config.LoadFile

	// loadTarget loads one target from the targets file (for testing injection).
	loadTarget = config.LoadTarget

	// loadTimeouts reads timeout overrides from the environment.
	loadTimeouts = config.LoadTimeouts

	// setupRunLog tees log output into a per-run file.
	setupRunLog = runlog.Setup

	// newRunID generates the run identifier.
	newRunID = uuid.NewString

	// writeFile writes data to a file (for testing injection).
	writeFile = os.WriteFile
)

// Apply handles the apply command: provision all cluster VMs and write the
// kubespray inventory.
func Apply(ctx context.Context, opts ApplyOptions) error {
	logPath, closeLog, err := setupRunLog(".", newRunID())
	if err != nil {
		return fmt.Errorf("failed to set up run log: %w", err)
	}
	defer closeLog()
	log.Printf("[Apply] Run log: %s", logPath)

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

	reconciler, err := newReconciler(platform, cfg, timeouts)
	if err != nil {
		return err
	}

	log.Printf("[Apply] Provisioning cluster %s on %s", cfg.ClusterName, opts.Cluster)
	inventoryBytes, err := reconciler.Reconcile(ctx)
	if err != nil {
		return err
	}

	if err := writeFile(opts.OutputPath, inventoryBytes, 0o644); err != nil {
		return fmt.Errorf("failed to write inventory: %w", err)
	}

	log.Printf("[Apply] Inventory written to %s", opts.OutputPath)
	return nil
}
