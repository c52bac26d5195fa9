package compute

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kubeprism/kubeprism/internal/platform/prism"
)

// AddressTimeoutError means a VM powered on but never reported an IP
// address within the configured window. The VM itself may still be fine;
// the record just cannot be used for inventory.
type AddressTimeoutError struct {
	VM      string
	Timeout time.Duration
}

func (e *AddressTimeoutError) Error() string {
	return fmt.Sprintf("vm %s reported no ip address within %s", e.VM, e.Timeout)
}

// waitForAddress polls the platform until the VM reports at least one IP
// address, returning the first one. Address assignment depends on the guest
// booting and DHCP completing, so this is the longest wait of the pipeline.
func waitForAddress(ctx context.Context, vms prism.VMService, name, uuid string, interval, timeout time.Duration) (string, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		addrs, err := vms.GetVMIPAddresses(ctx, uuid)
		if err != nil {
			return "", fmt.Errorf("failed to poll addresses for %s: %w", name, err)
		}
		if len(addrs) > 0 {
			log.Printf("[Address] %s has address %s after %.1f seconds",
				name, addrs[0], time.Since(start).Seconds())
			return addrs[0], nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline.C:
			return "", &AddressTimeoutError{VM: name, Timeout: timeout}
		case <-ticker.C:
		}
	}
}
