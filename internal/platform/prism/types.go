package prism

// Task progress states reported by the platform.
const (
	TaskQueued    = "Queued"
	TaskRunning   = "Running"
	TaskSucceeded = "Succeeded"
	TaskFailed    = "Failed"
)

// Power states as reported by the v1 VM entity.
const (
	PowerOn  = "on"
	PowerOff = "off"
)

// TaskHandle identifies an asynchronous platform task.
type TaskHandle struct {
	UUID string `json:"task_uuid"`
}

// TaskStatus is the polled state of an asynchronous task.
type TaskStatus struct {
	UUID               string `json:"uuid"`
	OperationType      string `json:"operation_type"`
	ProgressStatus     string `json:"progress_status"`
	PercentageComplete int    `json:"percentage_complete"`
	CreateTimeUsecs    int64  `json:"create_time_usecs"`
	CompleteTimeUsecs  int64  `json:"complete_time_usecs"`
	MetaResponse       struct {
		ErrorDetail string `json:"error_detail"`
	} `json:"meta_response"`
}

// Done reports whether the task reached a successful terminal state.
func (t *TaskStatus) Done() bool {
	return t.ProgressStatus == TaskSucceeded && t.PercentageComplete == 100
}

// VM is the v1 VM entity, reduced to the fields the orchestrator needs.
type VM struct {
	UUID        string   `json:"uuid"`
	Name        string   `json:"vmName"`
	PowerState  string   `json:"powerState"`
	IPAddresses []string `json:"ipAddresses"`
	NumVCPUs    int      `json:"numVCpus"`
}

// Image is a disk image registered on the platform.
type Image struct {
	UUID     string `json:"uuid"`
	Name     string `json:"name"`
	VMDiskID string `json:"vm_disk_id"`
}

// Network is a virtual network configured on the cluster.
type Network struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// StorageContainer is a storage pool that holds images and VM disks.
type StorageContainer struct {
	UUID string `json:"storage_container_uuid"`
	Name string `json:"name"`
}

// ImageUploadOpts describe an image upload from a remote source URL.
type ImageUploadOpts struct {
	Name             string
	StorageContainer string
	SourceURL        string
}

// CreateVMOpts describe a VM created directly from an image (the base VM).
type CreateVMOpts struct {
	Name          string
	VCPUs         int
	MemoryMB      int64
	DiskGB        int
	NetworkUUID   string
	ImageDiskUUID string
	Userdata      string
}

// CloneOpts describe a single clone of a base VM.
type CloneOpts struct {
	Name     string
	VCPUs    int
	MemoryMB int64
}

// ResourceOpts are sizing overrides applied to an existing VM.
type ResourceOpts struct {
	VCPUs    int
	MemoryMB int64
	DiskGB   int
}
