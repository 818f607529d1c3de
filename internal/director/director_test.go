package director

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiveworks/hive/internal/budget"
	"github.com/hiveworks/hive/internal/catalog"
	"github.com/hiveworks/hive/internal/clock"
	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/domain"
	"github.com/hiveworks/hive/internal/errors"
	"github.com/hiveworks/hive/internal/humanreview"
	"github.com/hiveworks/hive/internal/review"
	"github.com/hiveworks/hive/internal/workspace"
)

const goodOutput = `# Funnel Audit

## Findings

The checkout funnel loses 38% of visitors between cart and payment.
Session recordings show the shipping-cost reveal is the main drop
trigger. Mobile completion trails desktop by 11 points.

## Recommendations

- Surface shipping costs on the product page.
- Collapse the two-step payment form into one.
- Add a progress indicator to the checkout flow.
`

type fixture struct {
	dir   *Director
	store *workspace.FileStore
	spent float64
}

type stubExecutor struct {
	output string
	cost   float64
	err    error
}

func (s *stubExecutor) ExecuteTask(_ context.Context, _ *domain.Task) (string, float64, error) {
	return s.output, s.cost, s.err
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := workspace.NewFileStore(t.TempDir())
	require.NoError(t, err)

	clk := clock.NewFixed(time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC))
	engine := budget.NewEngine(1000)

	f := &fixture{store: store}

	d, err := New(Config{
		Store:   store,
		Catalog: catalog.MustDefault(),
		Reviews: review.New(review.WithClock(clk)),
		Human:   humanreview.New(store, humanreview.WithClock(clk)),
		BudgetFn: func() domain.BudgetState {
			return engine.ComputeBudgetState(f.spent)
		},
		Clock: clk,
	})
	require.NoError(t, err)

	f.dir = d
	return f
}

func TestNewRequiresCollaborators(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConfigInvalid)
}

func TestCreateGoal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	goal, err := f.dir.CreateGoal(ctx, "Lift checkout conversion by 15%", constants.CategoryOptimization, constants.PriorityP1, nil)
	require.NoError(t, err)

	assert.Regexp(t, `^goal-\d{8}-[0-9a-f]{8}$`, goal.ID)
	assert.Equal(t, constants.CategoryOptimization, goal.Category)
	assert.Equal(t, constants.PriorityP1, goal.Priority)

	stored, err := f.store.ReadGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, goal.Description, stored.Description)
}

func TestCreateGoal_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dir.CreateGoal(ctx, "  ", constants.CategoryContent, constants.PriorityP2, nil)
	assert.ErrorIs(t, err, errors.ErrEmptyValue)

	_, err = f.dir.CreateGoal(ctx, "Grow the newsletter", constants.GoalCategory("vibes"), constants.PriorityP2, nil)
	assert.ErrorIs(t, err, errors.ErrConfigInvalid)

	_, err = f.dir.CreateGoal(ctx, "Grow the newsletter", constants.CategoryContent, constants.Priority("P9"), nil)
	assert.ErrorIs(t, err, errors.ErrConfigInvalid)
}

func TestCreateGoal_EmbedsRelevantLearnings(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	// Seven learnings for a routed skill plus one for an unrouted one.
	for i := range 7 {
		require.NoError(t, f.store.AppendLearning(ctx, &domain.Learning{
			Kind:      domain.LearningSuccess,
			Skill:     "funnel-audit",
			TaskID:    "task-20260801-0000000" + string(rune('0'+i)),
			Summary:   "audit finding",
			CreatedAt: time.Date(2026, 8, 1+i, 0, 0, 0, 0, time.UTC),
		}))
	}
	require.NoError(t, f.store.AppendLearning(ctx, &domain.Learning{
		Kind:    domain.LearningFailure,
		Skill:   "brand-foundation",
		Summary: "not routed for optimization",
	}))

	goal, err := f.dir.CreateGoal(ctx, "Improve trial signup flow", constants.CategoryOptimization, constants.PriorityP2, nil)
	require.NoError(t, err)

	require.NotNil(t, goal.Metadata)
	learnings, ok := goal.Metadata["recent_learnings"].([]domain.Learning)
	require.True(t, ok)
	require.Len(t, learnings, 5)
	for _, l := range learnings {
		assert.Equal(t, "funnel-audit", l.Skill)
	}
	// Newest first.
	assert.Equal(t, "task-20260801-00000006", learnings[0].TaskID)
}

func TestDecomposeGoal_PersistsPlan(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	goal, err := f.dir.CreateGoal(ctx, "Refresh the content program", constants.CategoryContent, constants.PriorityP2, nil)
	require.NoError(t, err)

	plan, err := f.dir.DecomposeGoal(ctx, goal)
	require.NoError(t, err)
	require.NotEmpty(t, plan.Phases)

	stored, err := f.store.ReadPlan(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.EstimatedTaskCount, stored.EstimatedTaskCount)
	assert.Len(t, stored.Phases, len(plan.Phases))
}

func TestPlanGoalTasks_FirstPhase(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	goal, err := f.dir.CreateGoal(ctx, "Lift checkout conversion", constants.CategoryOptimization, constants.PriorityP1, nil)
	require.NoError(t, err)

	run, tasks, err := f.dir.PlanGoalTasks(ctx, goal)
	require.NoError(t, err)

	// Optimization maps to Conversion Sprint; phase one is funnel-audit.
	require.Len(t, tasks, 1)
	assert.Equal(t, "funnel-audit", tasks[0].To)
	assert.Equal(t, constants.NextPipelineContinue, tasks[0].Next.Type)
	assert.Equal(t, run.ID, tasks[0].Next.PipelineID)
	assert.Equal(t, goal.ID, run.GoalID)

	stored, err := f.store.ReadTask(ctx, tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TaskStatusPending, stored.Status)

	storedRun, err := f.store.ReadRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, tasks[0].ID, storedRun.TaskIDs[0])
}

func TestStartPipeline(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	run, tasks, err := f.dir.StartPipeline(ctx, "Content Engine", "Publish a product deep-dive series", constants.PriorityP2)
	require.NoError(t, err)

	require.Len(t, tasks, 1)
	assert.Equal(t, "content-strategy", tasks[0].To)
	assert.Equal(t, "content-engine", run.PipelineID)
}

func TestStartPipeline_UnknownTemplate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, _, err := f.dir.StartPipeline(context.Background(), "Moonshot", "anything", constants.PriorityP2)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTemplateNotFound)
	assert.Contains(t, err.Error(), "Moonshot")
}

func TestAdvanceGoal_PhaseIncomplete(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	goal, err := f.dir.CreateGoal(ctx, "Lift checkout conversion", constants.CategoryOptimization, constants.PriorityP1, nil)
	require.NoError(t, err)
	_, _, err = f.dir.PlanGoalTasks(ctx, goal)
	require.NoError(t, err)

	tasks, complete, err := f.dir.AdvanceGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.False(t, complete)
	assert.Empty(t, tasks)
}

func TestAdvanceGoal_NextPhaseAndCompletion(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	goal, err := f.dir.CreateGoal(ctx, "Lift checkout conversion", constants.CategoryOptimization, constants.PriorityP1, nil)
	require.NoError(t, err)
	_, firstPhase, err := f.dir.PlanGoalTasks(ctx, goal)
	require.NoError(t, err)

	exec := &stubExecutor{output: goodOutput, cost: 0.5}
	for _, tk := range firstPhase {
		decision, _, rerr := f.dir.ExecuteAndReviewTask(ctx, tk.ID, exec)
		require.NoError(t, rerr)
		require.Equal(t, constants.VerdictApprove, decision.Verdict)
	}

	secondPhase, complete, err := f.dir.AdvanceGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.False(t, complete)
	require.Len(t, secondPhase, 2, "conversion sprint phase two runs page-cro and copywriting in parallel")

	var skills []string
	for _, tk := range secondPhase {
		skills = append(skills, tk.To)
		// Prior phase outputs feed the next phase.
		var inputPaths []string
		for _, in := range tk.Inputs {
			inputPaths = append(inputPaths, in.Path)
		}
		assert.Contains(t, inputPaths, firstPhase[0].Output.Path)
	}
	assert.ElementsMatch(t, []string{"page-cro", "copywriting"}, skills)

	for _, tk := range secondPhase {
		_, _, rerr := f.dir.ExecuteAndReviewTask(ctx, tk.ID, exec)
		require.NoError(t, rerr)
	}
	thirdPhase, complete, err := f.dir.AdvanceGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.False(t, complete)
	require.Len(t, thirdPhase, 1)
	assert.Equal(t, "analytics", thirdPhase[0].To)

	for _, tk := range thirdPhase {
		_, _, rerr := f.dir.ExecuteAndReviewTask(ctx, tk.ID, exec)
		require.NoError(t, rerr)
	}
	final, complete, err := f.dir.AdvanceGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.True(t, complete)
	assert.Empty(t, final)

	run, err := f.dir.runForGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RunStatusCompleted, run.Status)
	assert.NotNil(t, run.CompletedAt)
}

func TestEndToEnd_OptimizationGoalRevisionLoop(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	goal, err := f.dir.CreateGoal(ctx, "Lift checkout conversion by 15%", constants.CategoryOptimization, constants.PriorityP1, nil)
	require.NoError(t, err)

	_, tasks, err := f.dir.PlanGoalTasks(ctx, goal)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "funnel-audit", tasks[0].To)
	assert.Equal(t, constants.NextPipelineContinue, tasks[0].Next.Type)

	decision, cost, err := f.dir.ExecuteAndReviewTask(ctx, tasks[0].ID, &stubExecutor{output: "Looks fine to me"})
	require.NoError(t, err)

	assert.Equal(t, constants.VerdictRevise, decision.Verdict)
	assert.Equal(t, constants.ActionRevise, decision.Action)
	assert.Zero(t, cost, "structural-only review costs nothing")
	require.Len(t, decision.NextTasks, 1)
	assert.Equal(t, 1, decision.NextTasks[0].RevisionCount)

	original, err := f.store.ReadTask(ctx, tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TaskStatusRevision, original.Status)

	revision, err := f.store.ReadTask(ctx, decision.NextTasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TaskStatusPending, revision.Status)
	assert.Contains(t, revision.Tags, "revision")
}

func TestAdvanceGoal_AfterApprovedRevision(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	goal, err := f.dir.CreateGoal(ctx, "Lift checkout conversion", constants.CategoryOptimization, constants.PriorityP1, nil)
	require.NoError(t, err)
	run, tasks, err := f.dir.PlanGoalTasks(ctx, goal)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	// A weak first output forces a revision.
	decision, _, err := f.dir.ExecuteAndReviewTask(ctx, tasks[0].ID, &stubExecutor{output: "Looks fine to me"})
	require.NoError(t, err)
	require.Equal(t, constants.ActionRevise, decision.Action)
	require.Len(t, decision.NextTasks, 1)
	revision := decision.NextTasks[0]

	// The run tracks the revision instead of the superseded original.
	storedRun, err := f.store.ReadRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{revision.ID}, storedRun.TaskIDs)

	decision, _, err = f.dir.ExecuteAndReviewTask(ctx, revision.ID, &stubExecutor{output: goodOutput})
	require.NoError(t, err)
	require.Equal(t, constants.VerdictApprove, decision.Verdict)

	next, complete, err := f.dir.AdvanceGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.False(t, complete)
	require.Len(t, next, 2, "approving the revision unblocks phase two")

	var skills []string
	for _, tk := range next {
		skills = append(skills, tk.To)
	}
	assert.ElementsMatch(t, []string{"page-cro", "copywriting"}, skills)
}

func TestRejectReassignKeepsRunLive(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	goal, err := f.dir.CreateGoal(ctx, "Lift checkout conversion", constants.CategoryOptimization, constants.PriorityP1, nil)
	require.NoError(t, err)
	run, tasks, err := f.dir.PlanGoalTasks(ctx, goal)
	require.NoError(t, err)

	decision, _, err := f.dir.ExecuteAndReviewTask(ctx, tasks[0].ID, &stubExecutor{output: ""})
	require.NoError(t, err)
	require.Equal(t, constants.ActionRejectReassign, decision.Action)
	require.Len(t, decision.NextTasks, 1)

	reassigned := decision.NextTasks[0]
	assert.Equal(t, 1, reassigned.RevisionCount)
	assert.Contains(t, reassigned.Tags, "reassigned")
	assert.Contains(t, reassigned.Requirements, "previous attempt was rejected")

	original, err := f.store.ReadTask(ctx, tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TaskStatusFailed, original.Status)

	stored, err := f.store.ReadTask(ctx, reassigned.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TaskStatusPending, stored.Status)

	storedRun, err := f.store.ReadRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{reassigned.ID}, storedRun.TaskIDs)

	// The fresh attempt still advances the goal on approval.
	decision, _, err = f.dir.ExecuteAndReviewTask(ctx, reassigned.ID, &stubExecutor{output: goodOutput})
	require.NoError(t, err)
	require.Equal(t, constants.VerdictApprove, decision.Verdict)

	next, complete, err := f.dir.AdvanceGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.False(t, complete)
	require.Len(t, next, 2)
}

func TestExecuteAndReviewTask_BudgetBlocked(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.spent = 950 // 95% of 1000: critical, P0 only

	goal, err := f.dir.CreateGoal(ctx, "Lift checkout conversion", constants.CategoryOptimization, constants.PriorityP1, nil)
	require.NoError(t, err)
	_, tasks, err := f.dir.PlanGoalTasks(ctx, goal)
	require.NoError(t, err)

	_, _, err = f.dir.ExecuteAndReviewTask(ctx, tasks[0].ID, &stubExecutor{output: goodOutput})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrBudgetBlocked)
	assert.Contains(t, err.Error(), "critical")

	stored, err := f.store.ReadTask(ctx, tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TaskStatusPending, stored.Status, "blocked dispatch leaves the task untouched")
}

func TestExecuteAndReviewTask_ExecutorFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	goal, err := f.dir.CreateGoal(ctx, "Lift checkout conversion", constants.CategoryOptimization, constants.PriorityP0, nil)
	require.NoError(t, err)
	_, tasks, err := f.dir.PlanGoalTasks(ctx, goal)
	require.NoError(t, err)

	_, cost, err := f.dir.ExecuteAndReviewTask(ctx, tasks[0].ID, &stubExecutor{err: context.DeadlineExceeded, cost: 0.2})
	require.Error(t, err)
	assert.InDelta(t, 0.2, cost, 1e-9, "partial execution cost is still reported")

	stored, rerr := f.store.ReadTask(ctx, tasks[0].ID)
	require.NoError(t, rerr)
	assert.Equal(t, constants.TaskStatusFailed, stored.Status)
}

func TestReviewCompletedTask_ApprovePersistsReviewAndLearning(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	goal, err := f.dir.CreateGoal(ctx, "Lift checkout conversion", constants.CategoryOptimization, constants.PriorityP1, nil)
	require.NoError(t, err)
	_, tasks, err := f.dir.PlanGoalTasks(ctx, goal)
	require.NoError(t, err)

	_, _, err = f.dir.ExecuteAndReviewTask(ctx, tasks[0].ID, &stubExecutor{output: goodOutput})
	require.NoError(t, err)

	reviews, err := f.store.ListReviews(ctx, tasks[0].ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, constants.VerdictApprove, reviews[0].Verdict)

	learnings, err := f.store.ReadLearnings(ctx)
	require.NoError(t, err)
	require.Len(t, learnings, 1)
	assert.Equal(t, domain.LearningSuccess, learnings[0].Kind)
	assert.Equal(t, "funnel-audit", learnings[0].Skill)
}

func TestReviewCompletedTask_RevisionLimitEscalates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	goal, err := f.dir.CreateGoal(ctx, "Lift checkout conversion", constants.CategoryOptimization, constants.PriorityP1, nil)
	require.NoError(t, err)
	_, tasks, err := f.dir.PlanGoalTasks(ctx, goal)
	require.NoError(t, err)

	// Walk the revision loop to the limit.
	current := tasks[0]
	for i := 0; i < constants.MaxRevisions; i++ {
		decision, _, rerr := f.dir.ExecuteAndReviewTask(ctx, current.ID, &stubExecutor{output: "Looks fine to me"})
		require.NoError(t, rerr)
		require.Equal(t, constants.ActionRevise, decision.Action)
		require.Len(t, decision.NextTasks, 1)
		current = decision.NextTasks[0]
	}
	assert.Equal(t, constants.MaxRevisions, current.RevisionCount)

	decision, _, err := f.dir.ExecuteAndReviewTask(ctx, current.ID, &stubExecutor{output: "Looks fine to me"})
	require.NoError(t, err)
	assert.Equal(t, constants.ActionEscalateHuman, decision.Action)
	assert.Empty(t, decision.NextTasks)

	stored, err := f.store.ReadTask(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TaskStatusInReview, stored.Status)

	item, err := f.dir.human.ReviewByTaskID(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.ReasonAgentLoop, item.Reason)
	assert.Equal(t, constants.UrgencyHigh, item.Urgency)
}

func TestCascadingFailureEscalates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	goal, err := f.dir.CreateGoal(ctx, "Lift checkout conversion", constants.CategoryOptimization, constants.PriorityP1, nil)
	require.NoError(t, err)
	_, tasks, err := f.dir.PlanGoalTasks(ctx, goal)
	require.NoError(t, err)

	pipelineID := tasks[0].PipelineID
	require.NotEmpty(t, pipelineID)

	// Empty output rejects outright; three in a row trips the cascade.
	current := tasks[0]
	for i := 0; i < constants.CascadeFailureThreshold; i++ {
		decision, _, rerr := f.dir.ExecuteAndReviewTask(ctx, current.ID, &stubExecutor{output: ""})
		require.NoError(t, rerr)
		require.Equal(t, constants.ActionRejectReassign, decision.Action)
		require.Len(t, decision.NextTasks, 1)
		current = decision.NextTasks[0]
	}

	items, err := f.dir.human.PendingReviews(ctx, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, constants.ReasonCascadingFailure, items[0].Reason)
	assert.Equal(t, constants.UrgencyCritical, items[0].Urgency)
	assert.Contains(t, items[0].Message, pipelineID)
}

func TestFoundationSkillOutputPath(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	foundation := catalog.MustDefault().FoundationSkill()
	require.NotEmpty(t, foundation.Name)

	tk := &domain.Task{
		ID:        "task-20260830-f0000001",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
		From:      constants.DirectorName,
		To:        foundation.Name,
		Priority:  constants.PriorityP1,
		Status:    constants.TaskStatusPending,
		Goal:      "Establish the brand voice",
		Output:    domain.TaskOutput{Path: "outputs/foundation/brand-foundation/task-20260830-f0000001.md", Format: "markdown"},
	}
	require.NoError(t, f.store.SaveTask(ctx, tk))

	content := strings.Replace(goodOutput, "Funnel Audit", "Brand Foundation", 1)
	_, _, err := f.dir.ExecuteAndReviewTask(ctx, tk.ID, &stubExecutor{output: content})
	require.NoError(t, err)

	// The foundation skill writes the shared context document.
	got, err := f.store.ReadFoundationContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}
