// Package naming provides consistent naming for cluster VMs.
//
// Every VM created for a cluster carries the cluster domain in its name.
// Names are deterministic, so a repeated run resolves to the same set of
// names and adopts existing VMs instead of duplicating them, and the
// destroy path can find everything that belongs to one cluster.
package naming

import "fmt"

// VM returns the deterministic name for a cluster node:
// {role}-{ordinal}-{domain}, e.g. worker-2-demo.local.
func VM(role string, ordinal int, domain string) string {
	return fmt.Sprintf("%s-%d-%s", role, ordinal, domain)
}

// RunLog returns the log file name for a provisioning run.
func RunLog(runID string) string {
	return fmt.Sprintf("kubeprism-%s.log", runID)
}
