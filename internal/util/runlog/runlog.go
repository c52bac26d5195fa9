// Package runlog tees standard log output to a per-run log file.
//
// Every task submission, poll outcome and terminal VM state is logged during
// a provisioning run; keeping a file copy makes partial failures debuggable
// after the console output is gone.
package runlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/kubeprism/kubeprism/internal/util/naming"
)

// Setup redirects the standard logger to write to both stderr and a run log
// file named after runID in dir. It returns the log file path and a close
// function that restores plain stderr logging.
func Setup(dir, runID string) (string, func() error, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, naming.RunLog(runID))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open run log: %w", err)
	}

	log.SetOutput(io.MultiWriter(os.Stderr, f))

	closeFn := func() error {
		log.SetOutput(os.Stderr)
		return f.Close()
	}
	return path, closeFn, nil
}
