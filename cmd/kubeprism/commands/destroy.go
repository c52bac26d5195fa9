package commands

import (
	"github.com/spf13/cobra"

	"github.com/kubeprism/kubeprism/cmd/kubeprism/handlers"
)

// Destroy returns the command for deleting cluster VMs.
//
// Deletion is explicit and never part of apply: a failed apply leaves its
// VMs in place for inspection, and destroy is the one way to remove them.
func Destroy() *cobra.Command {
	var opts handlers.DestroyOptions

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the cluster VMs",
		Long: `Delete every VM whose name belongs to the configured cluster.

Only role VMs are deleted by default. Pass --base to also delete the base
template VM.

Examples:
  kubeprism destroy --cluster production
  kubeprism destroy --cluster production --base`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "kubeprism.yaml", "Path to cluster configuration file")
	cmd.Flags().StringVarP(&opts.TargetsPath, "targets", "t", "targets.yaml", "Path to targets file")
	cmd.Flags().StringVar(&opts.Cluster, "cluster", "", "Target name from the targets file")
	cmd.Flags().BoolVar(&opts.IncludeBase, "base", false, "Also delete the base template VM")
	_ = cmd.MarkFlagRequired("cluster")

	return cmd
}
