package prism

import "context"

// TaskService polls asynchronous task state.
type TaskService interface {
	GetTask(ctx context.Context, taskUUID string) (*TaskStatus, error)
}

// ImageService manages disk images.
type ImageService interface {
	// FindImage returns the image with the given name, or nil if absent.
	FindImage(ctx context.Context, name string) (*Image, error)
	// UploadImage registers an image from a remote source. Asynchronous.
	UploadImage(ctx context.Context, opts ImageUploadOpts) (*TaskHandle, error)
	// FindStorageContainer returns the container with the given name, or nil.
	FindStorageContainer(ctx context.Context, name string) (*StorageContainer, error)
}

// VMService manages virtual machines. Every mutating call returns a task
// handle, not a completion guarantee.
type VMService interface {
	// FindVMs returns all VMs whose name contains query.
	FindVMs(ctx context.Context, query string) ([]VM, error)
	// GetVM returns the VM with the given UUID.
	GetVM(ctx context.Context, uuid string) (*VM, error)
	CreateVM(ctx context.Context, opts CreateVMOpts) (*TaskHandle, error)
	CloneVM(ctx context.Context, baseUUID string, opts CloneOpts) (*TaskHandle, error)
	SetVMResources(ctx context.Context, uuid string, opts ResourceOpts) (*TaskHandle, error)
	AttachNetwork(ctx context.Context, uuid, networkUUID string) (*TaskHandle, error)
	PowerOnVM(ctx context.Context, uuid string) (*TaskHandle, error)
	// SetGuestCustomization replaces the VM's cloud-init userdata.
	SetGuestCustomization(ctx context.Context, uuid, userdata string) (*TaskHandle, error)
	// GetVMIPAddresses returns the addresses currently assigned to the VM.
	// An empty slice means the platform has not reported a lease yet.
	GetVMIPAddresses(ctx context.Context, uuid string) ([]string, error)
	DeleteVM(ctx context.Context, uuid string) (*TaskHandle, error)
}

// NetworkService looks up virtual networks.
type NetworkService interface {
	// FindNetwork returns the network with the given name, or nil if absent.
	FindNetwork(ctx context.Context, name string) (*Network, error)
}

// Platform combines every service the orchestrator needs. The underlying
// session is shared across all concurrent VM pipelines and is safe for
// concurrent use.
type Platform interface {
	// Connect authenticates the session. It must be called once before any
	// other method.
	Connect(ctx context.Context) error

	TaskService
	ImageService
	VMService
	NetworkService
}
