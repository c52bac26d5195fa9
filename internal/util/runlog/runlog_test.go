package runlog

import (
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_WritesToFile(t *testing.T) {
	dir := t.TempDir()

	path, closeFn, err := Setup(dir, "test-run")
	require.NoError(t, err)

	log.Printf("hello from the run")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the run")
	assert.Contains(t, path, "kubeprism-test-run.log")
}

func TestSetup_BadDirectory(t *testing.T) {
	_, _, err := Setup("/nonexistent/path/for/sure", "run")
	assert.Error(t, err)
}
