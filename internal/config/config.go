// Package config defines the configuration model for a provisioning run.
//
// Two YAML files feed a run: a targets file mapping human-readable names to
// virtualization endpoints, and a cluster file describing the desired state
// (image, base VM, role sizing, operator users). Loading applies defaults
// and validates the result, so the rest of the code can assume a well-formed
// configuration.
package config

// Role tags for cluster nodes.
const (
	RoleControlPlane = "control-plane"
	RoleWorker       = "worker"
)

// Defaults applied when the cluster file omits a value.
const (
	DefaultCount  = 3
	DefaultVCPUs  = 2
	DefaultRAMGB  = 4
	DefaultDiskGB = 10

	// Sizing of the base VM that role VMs are cloned from.
	BaseVMVCPUs  = 2
	BaseVMRAMGB  = 4
	BaseVMDiskGB = 10

	// DefaultImageURL is the fallback source for the base OS image.
	DefaultImageURL = "http://cloud.centos.org/centos/7/images/CentOS-7-x86_64-GenericCloud-1702.qcow2c"

	// DefaultAPIPort is the Prism control-plane port.
	DefaultAPIPort = 9440
)

// ClusterTarget identifies one virtualization endpoint. Immutable for a run.
type ClusterTarget struct {
	Address     string `yaml:"address"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	InsecureTLS bool   `yaml:"insecure_tls"`
}

// Targets is the parsed targets file: endpoint name -> target.
type Targets struct {
	Clusters map[string]ClusterTarget `yaml:"clusters"`
}

// ImageSpec names the base OS image and where it lives. If the image is
// absent from the storage container it is uploaded from SourceURL.
type ImageSpec struct {
	Name             string `yaml:"name"`
	SourceURL        string `yaml:"source_url"`
	StorageContainer string `yaml:"storage_container"`
}

// RoleSpec is the desired state for one node role.
type RoleSpec struct {
	Role    string `yaml:"-"`
	Count   int    `yaml:"count"`
	VCPUs   int    `yaml:"vcpus"`
	RAMGB   int    `yaml:"ram_gb"`
	DiskGB  int    `yaml:"disk_gb"`
	Network string `yaml:"network"`
}

// User is an operator account injected into every VM.
type User struct {
	Username  string `yaml:"username"`
	PublicKey string `yaml:"public_key"`
}

// Config is the desired state for one provisioning run.
type Config struct {
	// ClusterName doubles as the VM name domain; it must be unique per
	// cluster on the target platform.
	ClusterName  string   `yaml:"cluster_name"`
	BaseVM       string   `yaml:"base_vm"`
	Network      string   `yaml:"network"`
	Image        ImageSpec `yaml:"image"`
	ControlPlane RoleSpec  `yaml:"control_plane"`
	Worker       RoleSpec  `yaml:"worker"`
	Users        []User    `yaml:"users"`
}

// Roles returns the role specs in deterministic order, control plane first.
func (c *Config) Roles() []RoleSpec {
	return []RoleSpec{c.ControlPlane, c.Worker}
}

// DesiredCounts returns the desired node count per role tag.
func (c *Config) DesiredCounts() map[string]int {
	return map[string]int{
		RoleControlPlane: c.ControlPlane.Count,
		RoleWorker:       c.Worker.Count,
	}
}
