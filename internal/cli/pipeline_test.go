package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineStart(t *testing.T) {
	ws := t.TempDir()

	out, err := runCommand(t, ws, "pipeline", "start", "Content Engine", "-d", "August content batch")
	require.NoError(t, err)
	assert.Contains(t, out, "started with")
	assert.Contains(t, out, "content-strategy")
}

func TestPipelineStart_UnknownTemplate(t *testing.T) {
	_, err := runCommand(t, t.TempDir(), "pipeline", "start", "Moonshot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Moonshot")
}

func TestPipelineList(t *testing.T) {
	ws := t.TempDir()

	_, err := runCommand(t, ws, "pipeline", "start", "Growth Audit")
	require.NoError(t, err)

	out, err := runCommand(t, ws, "pipeline", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "growth-audit")
	assert.Contains(t, out, "STATUS")
}
