package handlers

import (
	"errors"

	"github.com/kubeprism/kubeprism/internal/inventory"
	"github.com/kubeprism/kubeprism/internal/platform/prism"
	"github.com/kubeprism/kubeprism/internal/provisioning/image"
)

// Exit codes distinguish the failure classes callers script against.
const (
	exitGeneric           = 1
	exitUnreachable       = 2
	exitImageNotFound     = 3
	exitInsufficientNodes = 4
)

// ExitCode maps an error from a command handler to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var imageNotFound *image.NotFoundError
	var insufficient *inventory.InsufficientNodesError

	switch {
	case prism.IsUnreachable(err):
		return exitUnreachable
	case errors.As(err, &imageNotFound):
		return exitImageNotFound
	case errors.As(err, &insufficient):
		return exitInsufficientNodes
	default:
		return exitGeneric
	}
}
