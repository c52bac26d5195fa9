package credentials

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/kubeprism/kubeprism/internal/config"
	"github.com/kubeprism/kubeprism/internal/platform/prism"
)

// CustomizationError means guest customization could not be applied to a
// VM. The VM is unusable for the cluster (no SSH access) but the failure
// is scoped to that VM only.
type CustomizationError struct {
	VM  string
	Err error
}

func (e *CustomizationError) Error() string {
	return fmt.Sprintf("guest customization for %s failed: %v", e.VM, e.Err)
}

func (e *CustomizationError) Unwrap() error { return e.Err }

// Injector applies the rendered cloud-config to VMs via guest
// customization. The userdata is rendered once per run and shared by all
// pipelines.
type Injector struct {
	platform prism.Platform
	timeouts *config.Timeouts
	userdata string
	sshUser  string
}

// NewInjector renders the cloud-config for the configured users and
// returns an injector ready for concurrent use.
func NewInjector(platform prism.Platform, timeouts *config.Timeouts, users []config.User) (*Injector, error) {
	userdata, err := CloudConfig(users)
	if err != nil {
		return nil, err
	}
	return &Injector{
		platform: platform,
		timeouts: timeouts,
		userdata: userdata,
		sshUser:  users[0].Username,
	}, nil
}

// SSHUser returns the username downstream tooling should connect as.
func (i *Injector) SSHUser() string {
	return i.sshUser
}

// Userdata returns the rendered cloud-config document.
func (i *Injector) Userdata() string {
	return i.userdata
}

// Inject pushes the operator users into the named VM and waits for the
// customization task to complete.
func (i *Injector) Inject(ctx context.Context, name, uuid string) error {
	handle, err := i.platform.SetGuestCustomization(ctx, uuid, i.userdata)
	if err != nil {
		return &CustomizationError{VM: name, Err: err}
	}

	if _, err := prism.WaitTask(ctx, i.platform, handle, prism.WaitOpts{
		Interval: i.timeouts.PollInterval,
		Timeout:  i.timeouts.Task,
	}); err != nil {
		return &CustomizationError{VM: name, Err: err}
	}

	log.Printf("[Credentials] Injected %d user(s) into %s",
		strings.Count(i.userdata, "- name:"), name)
	return nil
}
