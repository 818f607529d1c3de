package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/domain"
	"github.com/hiveworks/hive/internal/humanreview"
	"github.com/hiveworks/hive/internal/workspace"
)

// escalateTask seeds the workspace with a blocked task and a pending
// review item, the way the director leaves things after an escalation.
func escalateTask(t *testing.T, ws, taskID string) *domain.HumanReviewItem {
	t.Helper()

	store, err := workspace.NewFileStore(ws)
	require.NoError(t, err)
	ctx := context.Background()

	task := &domain.Task{
		ID:        taskID,
		CreatedAt: time.Now().UTC(),
		From:      "director",
		To:        "copywriting",
		Priority:  constants.PriorityP1,
		Status:    constants.TaskStatusBlocked,
		Goal:      "Rework the onboarding email series",
		Output:    domain.TaskOutput{Path: "outputs/creative/copywriting/" + taskID + ".md", Format: "markdown"},
		Next:      domain.TaskNext{Type: constants.NextDirectorReview},
	}
	require.NoError(t, store.SaveTask(ctx, task))

	mgr := humanreview.New(store)
	item, err := mgr.EscalateToHuman(ctx, task, &domain.Escalation{
		Reason:   constants.ReasonAgentLoop,
		Severity: constants.SeverityWarning,
		Message:  "copywriting task looping on revisions",
	})
	require.NoError(t, err)
	return item
}

func TestReviewPending(t *testing.T) {
	ws := t.TempDir()
	item := escalateTask(t, ws, "task-20260830-cli00001")

	out, err := runCommand(t, ws, "review", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, item.ID)
	assert.Contains(t, out, "agent_loop_detected")
}

func TestReviewPending_UrgencyFilter(t *testing.T) {
	ws := t.TempDir()
	item := escalateTask(t, ws, "task-20260830-cli00002")

	out, err := runCommand(t, ws, "review", "pending", "-u", "critical")
	require.NoError(t, err)
	assert.NotContains(t, out, item.ID)
}

func TestReviewFeedback_Approve(t *testing.T) {
	ws := t.TempDir()
	item := escalateTask(t, ws, "task-20260830-cli00003")

	out, err := runCommand(t, ws, "review", "feedback", item.ID, "-d", "approve")
	require.NoError(t, err)
	assert.Contains(t, out, "resolved: approve")
	assert.Contains(t, out, "task-20260830-cli00003")

	store, err := workspace.NewFileStore(ws)
	require.NoError(t, err)
	task, err := store.ReadTask(context.Background(), "task-20260830-cli00003")
	require.NoError(t, err)
	assert.Equal(t, constants.TaskStatusPending, task.Status)
}

func TestReviewFeedback_RequiresDecision(t *testing.T) {
	_, err := runCommand(t, t.TempDir(), "review", "feedback", "hr-task-x")
	require.Error(t, err)
}

func TestReviewStats(t *testing.T) {
	ws := t.TempDir()
	escalateTask(t, ws, "task-20260830-cli00004")

	out, err := runCommand(t, ws, "review", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "By status:")
	assert.Contains(t, out, "pending")
}
