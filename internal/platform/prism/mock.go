package prism

import "context"

// MockPlatform is a mock implementation of Platform for tests.
// Unset func fields fall back to benign defaults.
type MockPlatform struct {
	ConnectFunc func(ctx context.Context) error

	GetTaskFunc func(ctx context.Context, taskUUID string) (*TaskStatus, error)

	FindImageFunc            func(ctx context.Context, name string) (*Image, error)
	UploadImageFunc          func(ctx context.Context, opts ImageUploadOpts) (*TaskHandle, error)
	FindStorageContainerFunc func(ctx context.Context, name string) (*StorageContainer, error)

	FindVMsFunc               func(ctx context.Context, query string) ([]VM, error)
	GetVMFunc                 func(ctx context.Context, uuid string) (*VM, error)
	CreateVMFunc              func(ctx context.Context, opts CreateVMOpts) (*TaskHandle, error)
	CloneVMFunc               func(ctx context.Context, baseUUID string, opts CloneOpts) (*TaskHandle, error)
	SetVMResourcesFunc        func(ctx context.Context, uuid string, opts ResourceOpts) (*TaskHandle, error)
	AttachNetworkFunc         func(ctx context.Context, uuid, networkUUID string) (*TaskHandle, error)
	PowerOnVMFunc             func(ctx context.Context, uuid string) (*TaskHandle, error)
	SetGuestCustomizationFunc func(ctx context.Context, uuid, userdata string) (*TaskHandle, error)
	GetVMIPAddressesFunc      func(ctx context.Context, uuid string) ([]string, error)
	DeleteVMFunc              func(ctx context.Context, uuid string) (*TaskHandle, error)

	FindNetworkFunc func(ctx context.Context, name string) (*Network, error)
}

// Ensure interface compliance.
var _ Platform = (*MockPlatform)(nil)

func mockHandle() *TaskHandle {
	return &TaskHandle{UUID: "mock-task"}
}

func mockDoneTask(uuid string) *TaskStatus {
	return &TaskStatus{
		UUID:               uuid,
		OperationType:      "MockOperation",
		ProgressStatus:     TaskSucceeded,
		PercentageComplete: 100,
	}
}

// Connect mocks session authentication.
func (m *MockPlatform) Connect(ctx context.Context) error {
	if m.ConnectFunc != nil {
		return m.ConnectFunc(ctx)
	}
	return nil
}

// GetTask mocks task polling. Defaults to an immediately succeeded task.
func (m *MockPlatform) GetTask(ctx context.Context, taskUUID string) (*TaskStatus, error) {
	if m.GetTaskFunc != nil {
		return m.GetTaskFunc(ctx, taskUUID)
	}
	return mockDoneTask(taskUUID), nil
}

// FindImage mocks image lookup. Defaults to found.
func (m *MockPlatform) FindImage(ctx context.Context, name string) (*Image, error) {
	if m.FindImageFunc != nil {
		return m.FindImageFunc(ctx, name)
	}
	return &Image{UUID: "mock-image", Name: name, VMDiskID: "mock-disk"}, nil
}

// UploadImage mocks image upload.
func (m *MockPlatform) UploadImage(ctx context.Context, opts ImageUploadOpts) (*TaskHandle, error) {
	if m.UploadImageFunc != nil {
		return m.UploadImageFunc(ctx, opts)
	}
	return mockHandle(), nil
}

// FindStorageContainer mocks container lookup. Defaults to found.
func (m *MockPlatform) FindStorageContainer(ctx context.Context, name string) (*StorageContainer, error) {
	if m.FindStorageContainerFunc != nil {
		return m.FindStorageContainerFunc(ctx, name)
	}
	return &StorageContainer{UUID: "mock-container", Name: name}, nil
}

// FindVMs mocks VM search. Defaults to no matches.
func (m *MockPlatform) FindVMs(ctx context.Context, query string) ([]VM, error) {
	if m.FindVMsFunc != nil {
		return m.FindVMsFunc(ctx, query)
	}
	return nil, nil
}

// GetVM mocks VM lookup.
func (m *MockPlatform) GetVM(ctx context.Context, uuid string) (*VM, error) {
	if m.GetVMFunc != nil {
		return m.GetVMFunc(ctx, uuid)
	}
	return &VM{UUID: uuid, Name: "mock-vm", PowerState: PowerOn}, nil
}

// CreateVM mocks VM creation.
func (m *MockPlatform) CreateVM(ctx context.Context, opts CreateVMOpts) (*TaskHandle, error) {
	if m.CreateVMFunc != nil {
		return m.CreateVMFunc(ctx, opts)
	}
	return mockHandle(), nil
}

// CloneVM mocks cloning.
func (m *MockPlatform) CloneVM(ctx context.Context, baseUUID string, opts CloneOpts) (*TaskHandle, error) {
	if m.CloneVMFunc != nil {
		return m.CloneVMFunc(ctx, baseUUID, opts)
	}
	return mockHandle(), nil
}

// SetVMResources mocks sizing overrides.
func (m *MockPlatform) SetVMResources(ctx context.Context, uuid string, opts ResourceOpts) (*TaskHandle, error) {
	if m.SetVMResourcesFunc != nil {
		return m.SetVMResourcesFunc(ctx, uuid, opts)
	}
	return mockHandle(), nil
}

// AttachNetwork mocks NIC attachment.
func (m *MockPlatform) AttachNetwork(ctx context.Context, uuid, networkUUID string) (*TaskHandle, error) {
	if m.AttachNetworkFunc != nil {
		return m.AttachNetworkFunc(ctx, uuid, networkUUID)
	}
	return mockHandle(), nil
}

// PowerOnVM mocks a power-on transition.
func (m *MockPlatform) PowerOnVM(ctx context.Context, uuid string) (*TaskHandle, error) {
	if m.PowerOnVMFunc != nil {
		return m.PowerOnVMFunc(ctx, uuid)
	}
	return mockHandle(), nil
}

// SetGuestCustomization mocks userdata replacement.
func (m *MockPlatform) SetGuestCustomization(ctx context.Context, uuid, userdata string) (*TaskHandle, error) {
	if m.SetGuestCustomizationFunc != nil {
		return m.SetGuestCustomizationFunc(ctx, uuid, userdata)
	}
	return mockHandle(), nil
}

// GetVMIPAddresses mocks address lookup. Defaults to one address.
func (m *MockPlatform) GetVMIPAddresses(ctx context.Context, uuid string) ([]string, error) {
	if m.GetVMIPAddressesFunc != nil {
		return m.GetVMIPAddressesFunc(ctx, uuid)
	}
	return []string{"10.0.0.10"}, nil
}

// DeleteVM mocks VM deletion.
func (m *MockPlatform) DeleteVM(ctx context.Context, uuid string) (*TaskHandle, error) {
	if m.DeleteVMFunc != nil {
		return m.DeleteVMFunc(ctx, uuid)
	}
	return mockHandle(), nil
}

// FindNetwork mocks network lookup. Defaults to found.
func (m *MockPlatform) FindNetwork(ctx context.Context, name string) (*Network, error) {
	if m.FindNetworkFunc != nil {
		return m.FindNetworkFunc(ctx, name)
	}
	return &Network{UUID: "mock-network", Name: name}, nil
}
