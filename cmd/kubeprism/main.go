// Package main is the entry point for the kubeprism CLI.
//
// kubeprism provisions the virtual machines for a kubespray-managed
// Kubernetes cluster on a Nutanix Prism managed virtualization platform.
// It ensures the base OS image and template VM exist, clones and boots the
// role VMs, injects operator SSH credentials and writes an Ansible
// inventory for kubespray.
//
// Commands: init, apply, destroy, version.
//
// For detailed usage information, run:
//
//	kubeprism --help
package main

import (
	"fmt"
	"os"

	"github.com/kubeprism/kubeprism/cmd/kubeprism/commands"
	"github.com/kubeprism/kubeprism/cmd/kubeprism/handlers"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(handlers.ExitCode(err))
	}
}
