package handlers

import (
	"fmt"
	"os"

	"github.com/kubeprism/kubeprism/internal/config"
)

// fileExists checks if a file exists. Variable for testing injection.
var fileExists = func(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Init writes a starter cluster configuration to outputPath.
func Init(outputPath string, force bool) error {
	if fileExists(outputPath) && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", outputPath)
	}

	if err := writeFile(outputPath, []byte(starterConfig()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Configuration written to %s\n", outputPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Edit the file to match your cluster.")
	fmt.Println("  2. Create a targets file with your Prism endpoints.")
	fmt.Println("  3. Run 'kubeprism apply --cluster <target>'.")
	return nil
}

func starterConfig() string {
	return fmt.Sprintf(`# kubeprism cluster configuration
#
# cluster_name doubles as the VM name domain: VMs are named
# <role>-<n>-<cluster_name> and must be unique on the target platform.
cluster_name: demo.example.com

# Template VM that role VMs are cloned from. Created from the image below
# if it does not exist yet.
base_vm: base-demo

# Default network for the base VM and any role without its own network.
network: vm-network

image:
  name: centos7-cloud
  storage_container: default
  # Uploaded from here when the image is absent. Remove this line to fail
  # instead of uploading.
  source_url: %s

control_plane:
  count: %d # must be 1, 3 or 5
  vcpus: %d
  ram_gb: %d
  disk_gb: %d

worker:
  count: %d
  vcpus: %d
  ram_gb: %d
  disk_gb: %d

# Operator accounts injected into every VM via cloud-init.
users:
  - username: ops
    public_key: "ssh-ed25519 AAAA... ops@example.com"
`,
		config.DefaultImageURL,
		config.DefaultCount, config.DefaultVCPUs, config.DefaultRAMGB, config.DefaultDiskGB,
		config.DefaultCount, config.DefaultVCPUs, config.DefaultRAMGB, config.DefaultDiskGB)
}
