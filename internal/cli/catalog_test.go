package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiveworks/hive/internal/domain"
)

func TestCatalogSkills(t *testing.T) {
	out, err := runCommand(t, t.TempDir(), "catalog", "skills")
	require.NoError(t, err)
	assert.Contains(t, out, "copywriting")
	assert.Contains(t, out, "(foundation)")
}

func TestCatalogSkills_JSONOutput(t *testing.T) {
	out, err := runCommand(t, t.TempDir(), "-o", "json", "catalog", "skills")
	require.NoError(t, err)

	var skills []domain.Skill
	require.NoError(t, json.Unmarshal([]byte(out), &skills))
	assert.NotEmpty(t, skills)
}

func TestCatalogSquads(t *testing.T) {
	out, err := runCommand(t, t.TempDir(), "catalog", "squads")
	require.NoError(t, err)
	assert.Contains(t, out, "convert")
	assert.Contains(t, out, "measure")
}

func TestCatalogTemplates(t *testing.T) {
	out, err := runCommand(t, t.TempDir(), "catalog", "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "Conversion Sprint")
	assert.Contains(t, out, "Content Engine")
	// Weekly content production parses to a Monday morning schedule.
	assert.Contains(t, out, "0 9 * * 1")
}
