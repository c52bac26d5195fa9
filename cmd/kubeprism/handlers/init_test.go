package handlers

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubeprism/kubeprism/internal/config"
)

func TestInit(t *testing.T) {
	saveAndRestoreFactories(t)

	fileExists = func(string) bool { return false }

	var wrotePath string
	var wroteData []byte
	writeFile = func(path string, data []byte, _ os.FileMode) error {
		wrotePath = path
		wroteData = data
		return nil
	}

	require.NoError(t, Init("kubeprism.yaml", false))
	assert.Equal(t, "kubeprism.yaml", wrotePath)

	text := string(wroteData)
	assert.Contains(t, text, "cluster_name:")
	assert.Contains(t, text, config.DefaultImageURL)
	assert.Contains(t, text, "control_plane:")
	assert.Contains(t, text, "worker:")
	assert.Contains(t, text, "users:")
}

func TestInit_StarterConfigParses(t *testing.T) {
	saveAndRestoreFactories(t)

	fileExists = func(string) bool { return false }

	var wroteData []byte
	writeFile = func(_ string, data []byte, _ os.FileMode) error {
		wroteData = data
		return nil
	}
	require.NoError(t, Init("kubeprism.yaml", false))

	dir := t.TempDir()
	path := dir + "/kubeprism.yaml"
	require.NoError(t, os.WriteFile(path, wroteData, 0o644))

	// The starter config must parse; only the placeholder SSH key fails
	// validation.
	_, err := config.LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid SSH public key")
}

func TestInit_RefusesToOverwrite(t *testing.T) {
	saveAndRestoreFactories(t)

	fileExists = func(string) bool { return true }
	writeFile = func(string, []byte, os.FileMode) error {
		t.Fatal("must not write over an existing file")
		return nil
	}

	err := Init("kubeprism.yaml", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInit_ForceOverwrites(t *testing.T) {
	saveAndRestoreFactories(t)

	fileExists = func(string) bool { return true }

	var wrote bool
	writeFile = func(string, []byte, os.FileMode) error {
		wrote = true
		return nil
	}

	require.NoError(t, Init("kubeprism.yaml", true))
	assert.True(t, wrote)
}
