package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	cmd := Apply()

	require.NotNil(t, cmd)
	assert.Equal(t, "apply", cmd.Use)
	assert.NotNil(t, cmd.RunE)
}

func TestApply_Flags(t *testing.T) {
	cmd := Apply()

	config := cmd.Flags().Lookup("config")
	require.NotNil(t, config)
	assert.Equal(t, "c", config.Shorthand)
	assert.Equal(t, "kubeprism.yaml", config.DefValue)

	targets := cmd.Flags().Lookup("targets")
	require.NotNil(t, targets)
	assert.Equal(t, "t", targets.Shorthand)
	assert.Equal(t, "targets.yaml", targets.DefValue)

	output := cmd.Flags().Lookup("output")
	require.NotNil(t, output)
	assert.Equal(t, "o", output.Shorthand)
	assert.Equal(t, "inventory.ini", output.DefValue)
}

func TestApply_ClusterFlagRequired(t *testing.T) {
	cmd := Apply()

	flag := cmd.Flags().Lookup("cluster")
	require.NotNil(t, flag)

	_, required := flag.Annotations["cobra_annotation_bash_completion_one_required_flag"]
	assert.True(t, required, "cluster flag should be required")
}
