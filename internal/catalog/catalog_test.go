package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiveworks/hive/internal/domain"
	hiveerrors "github.com/hiveworks/hive/internal/errors"
)

func TestDefault_Valid(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, "brand-foundation", c.FoundationSkill().Name)
	assert.Empty(t, c.FoundationSkill().Squad)

	squads := c.Squads()
	assert.ElementsMatch(t, []string{"strategy", "creative", "convert", "activate", "measure"}, squads)

	for _, squad := range squads {
		assert.NotEmpty(t, c.SkillsInSquad(squad), "squad %s owns no skills", squad)
	}
}

func TestDefault_GraphSymmetry(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	// Every downstream edge must appear as the reverse upstream edge.
	for _, s := range c.Skills() {
		for _, down := range c.DownstreamOf(s.Name) {
			assert.Contains(t, c.UpstreamOf(down), s.Name,
				"edge %s -> %s missing reverse", s.Name, down)
		}
	}
}

func TestDefault_Templates(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for _, name := range []string{"Conversion Sprint", "Content Engine", "Launch Campaign", "Growth Audit"} {
		tmpl, ok := c.Template(name)
		require.True(t, ok, "missing template %s", name)
		assert.NotEmpty(t, tmpl.Steps)
		assert.NotEmpty(t, tmpl.Trigger)
	}

	sprint, _ := c.Template("Conversion Sprint")
	require.Len(t, sprint.Steps, 3)
	assert.Equal(t, "funnel-audit", sprint.Steps[0].Skill)
	assert.False(t, sprint.Steps[0].Parallel())
	assert.True(t, sprint.Steps[1].Parallel())
}

func TestDefault_CriteriaWeightsSumToOne(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for _, s := range c.Skills() {
		crit, ok := c.QualityCriteria(s.Name)
		if !ok {
			continue
		}
		var sum float64
		for _, d := range crit.Dimensions {
			sum += d.Weight
		}
		assert.InDelta(t, 1.0, sum, 0.01, "weights for %s", s.Name)
	}
}

func TestBuild_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		skills []domain.Skill
	}{
		{
			name: "no foundation skill",
			skills: []domain.Skill{
				{Name: "copywriting", Squad: "creative"},
			},
		},
		{
			name: "self referencing downstream",
			skills: []domain.Skill{
				{Name: "base"},
				{Name: "copywriting", Squad: "creative", Downstream: []string{"copywriting"}},
			},
		},
		{
			name: "unknown downstream skill",
			skills: []domain.Skill{
				{Name: "base"},
				{Name: "copywriting", Squad: "creative", Downstream: []string{"nope"}},
			},
		},
		{
			name: "duplicate skill",
			skills: []domain.Skill{
				{Name: "base"},
				{Name: "copywriting", Squad: "creative"},
				{Name: "copywriting", Squad: "creative"},
			},
		},
		{
			name: "two foundation skills",
			skills: []domain.Skill{
				{Name: "base"},
				{Name: "base2"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := build(tt.skills, nil, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, hiveerrors.ErrCatalogInvalid)
		})
	}
}

func TestBuild_TemplateUnknownSkill(t *testing.T) {
	skills := []domain.Skill{{Name: "base"}, {Name: "copywriting", Squad: "creative"}}
	templates := []domain.PipelineTemplate{
		{Name: "Broken", Steps: []domain.TemplateStep{{Skill: "ghost"}}},
	}

	_, err := build(skills, templates, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, hiveerrors.ErrCatalogInvalid)
	assert.Contains(t, err.Error(), "ghost")
}

func TestLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")

	yamlDoc := `
skills:
  - name: base
    description: foundation context
  - name: copywriting
    squad: creative
    downstream: [analytics]
  - name: analytics
    squad: measure
templates:
  - name: Mini
    default_priority: P2
    trigger: weekly mini run
    steps:
      - skill: copywriting
      - skill: analytics
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "base", c.FoundationSkill().Name)
	assert.Equal(t, []string{"analytics"}, c.DownstreamOf("copywriting"))
	assert.Equal(t, []string{"copywriting"}, c.UpstreamOf("analytics"))

	tmpl, ok := c.Template("Mini")
	require.True(t, ok)
	assert.Equal(t, "weekly mini run", tmpl.Trigger)

	// Criteria fall back to defaults for known skill names.
	_, ok = c.QualityCriteria("copywriting")
	assert.True(t, ok)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("skills: [oops"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, hiveerrors.ErrCatalogInvalid)
}
