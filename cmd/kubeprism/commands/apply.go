package commands

import (
	"github.com/spf13/cobra"

	"github.com/kubeprism/kubeprism/cmd/kubeprism/handlers"
)

// Apply returns the command for provisioning cluster VMs.
//
// It loads the cluster configuration and the targets file, connects to the
// selected virtualization endpoint, provisions the configured VMs and
// writes a kubespray inventory.
//
// Flags:
//
//	--config, -c:  cluster configuration YAML (default: kubeprism.yaml)
//	--targets, -t: targets YAML mapping names to endpoints (default: targets.yaml)
//	--cluster:     target name from the targets file (required)
//	--output, -o:  inventory output path (default: inventory.ini)
//
// Environment variables:
//
//	PRISM_USERNAME, PRISM_PASSWORD: override target credentials
func Apply() *cobra.Command {
	var opts handlers.ApplyOptions

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Provision the cluster VMs and write the inventory",
		Long: `Provision the virtual machines for a kubespray cluster.

The command is idempotent: VMs that already exist under their target name
are adopted instead of cloned, so a failed run can be retried as-is.

Examples:
  # Provision using kubeprism.yaml against the target named production
  kubeprism apply --cluster production

  # Use explicit files and a custom inventory path
  kubeprism apply -c staging.yaml -t targets.yaml --cluster staging -o staging.ini`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "kubeprism.yaml", "Path to cluster configuration file")
	cmd.Flags().StringVarP(&opts.TargetsPath, "targets", "t", "targets.yaml", "Path to targets file")
	cmd.Flags().StringVar(&opts.Cluster, "cluster", "", "Target name from the targets file")
	cmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "inventory.ini", "Path to write the kubespray inventory")
	_ = cmd.MarkFlagRequired("cluster")

	return cmd
}
