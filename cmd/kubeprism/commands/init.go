package commands

import (
	"github.com/spf13/cobra"

	"github.com/kubeprism/kubeprism/cmd/kubeprism/handlers"
)

// Init returns the command that writes a starter configuration.
func Init() *cobra.Command {
	var outputPath string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter cluster configuration",
		Long: `Write a starter cluster configuration with sensible defaults.

Edit the generated file, create a targets file with your Prism endpoints,
then run 'kubeprism apply'.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Init(outputPath, force)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "kubeprism.yaml", "Path to write the configuration")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}
