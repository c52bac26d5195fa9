package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads and parses the cluster configuration from a YAML file,
// applies defaults and validates the result.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadTarget reads the targets file and returns the named endpoint.
// PRISM_USERNAME and PRISM_PASSWORD override credentials from the file so
// they never have to be committed alongside it.
func LoadTarget(path, name string) (*ClusterTarget, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read targets file: %w", err)
	}

	var targets Targets
	if err := yaml.Unmarshal(data, &targets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	if targets.Clusters == nil {
		return nil, fmt.Errorf("targets file %s has no clusters section", path)
	}

	target, ok := targets.Clusters[name]
	if !ok {
		return nil, fmt.Errorf("cluster %q not found in %s", name, path)
	}

	if v := os.Getenv("PRISM_USERNAME"); v != "" {
		target.Username = v
	}
	if v := os.Getenv("PRISM_PASSWORD"); v != "" {
		target.Password = v
	}
	if target.Port == 0 {
		target.Port = DefaultAPIPort
	}

	if target.Address == "" {
		return nil, fmt.Errorf("cluster %q has no address", name)
	}
	if target.Username == "" || target.Password == "" {
		return nil, fmt.Errorf("cluster %q has no credentials (set PRISM_USERNAME/PRISM_PASSWORD)", name)
	}

	return &target, nil
}

func applyDefaults(cfg *Config) {
	cfg.ControlPlane.Role = RoleControlPlane
	cfg.Worker.Role = RoleWorker

	for _, role := range []*RoleSpec{&cfg.ControlPlane, &cfg.Worker} {
		if role.Count == 0 {
			role.Count = DefaultCount
		}
		if role.VCPUs == 0 {
			role.VCPUs = DefaultVCPUs
		}
		if role.RAMGB == 0 {
			role.RAMGB = DefaultRAMGB
		}
		if role.DiskGB == 0 {
			role.DiskGB = DefaultDiskGB
		}
		if role.Network == "" {
			role.Network = cfg.Network
		}
	}
}
