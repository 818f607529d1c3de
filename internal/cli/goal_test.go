package cli

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiveworks/hive/internal/domain"
)

var goalIDPattern = regexp.MustCompile(`goal-\d{8}-[0-9a-f]{8}`)

func TestGoalCreate(t *testing.T) {
	ws := t.TempDir()

	out, err := runCommand(t, ws, "goal", "create", "Raise pricing page conversion", "-c", "optimization", "-p", "P1")
	require.NoError(t, err)
	assert.Contains(t, out, "created")
	assert.Contains(t, out, "optimization")
	assert.Regexp(t, goalIDPattern, out)
}

func TestGoalCreate_JSONOutput(t *testing.T) {
	ws := t.TempDir()

	out, err := runCommand(t, ws, "-o", "json", "goal", "create", "Ship launch teaser content", "-c", "content")
	require.NoError(t, err)

	var goal domain.Goal
	require.NoError(t, json.Unmarshal([]byte(out), &goal))
	assert.Regexp(t, goalIDPattern, goal.ID)
	assert.Equal(t, "Ship launch teaser content", goal.Description)
}

func TestGoalCreate_InvalidCategory(t *testing.T) {
	_, err := runCommand(t, t.TempDir(), "goal", "create", "something", "-c", "vibes")
	require.Error(t, err)
}

func TestGoalCreate_InvalidDeadline(t *testing.T) {
	_, err := runCommand(t, t.TempDir(), "goal", "create", "something", "--deadline", "next tuesday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestGoalList(t *testing.T) {
	ws := t.TempDir()

	_, err := runCommand(t, ws, "goal", "create", "Grow organic signups", "-c", "growth")
	require.NoError(t, err)

	out, err := runCommand(t, ws, "goal", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "growth")
	assert.Contains(t, out, "Grow organic signups")
}

func TestGoalPlanAndShow(t *testing.T) {
	ws := t.TempDir()

	out, err := runCommand(t, ws, "-o", "json", "goal", "create", "Raise trial conversion", "-c", "optimization")
	require.NoError(t, err)
	var goal domain.Goal
	require.NoError(t, json.Unmarshal([]byte(out), &goal))

	out, err = runCommand(t, ws, "goal", "plan", goal.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "started with")
	assert.Contains(t, out, "funnel-audit")

	out, err = runCommand(t, ws, "goal", "show", goal.ID)
	require.NoError(t, err)
	assert.Contains(t, out, goal.ID)
	assert.Contains(t, out, "Plan (")
}

func TestGoalAdvance_PhaseInProgress(t *testing.T) {
	ws := t.TempDir()

	out, err := runCommand(t, ws, "-o", "json", "goal", "create", "Raise trial conversion", "-c", "optimization")
	require.NoError(t, err)
	var goal domain.Goal
	require.NoError(t, json.Unmarshal([]byte(out), &goal))

	_, err = runCommand(t, ws, "goal", "plan", goal.ID)
	require.NoError(t, err)

	out, err = runCommand(t, ws, "goal", "advance", goal.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "still in progress")
}

func TestGoalShow_UnknownGoal(t *testing.T) {
	_, err := runCommand(t, t.TempDir(), "goal", "show", "goal-20260830-deadbeef")
	require.Error(t, err)
}
