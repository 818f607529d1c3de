// Package director is the top-level coordinator. It composes the
// router, decomposer, pipeline factory, review engine, escalation
// engine, and human review manager into goal lifecycle operations:
// create a goal, decompose it, plan and execute its tasks, review
// completed work, and advance to the next phase.
//
// The director computes every decision fully before applying side
// effects. Status transitions, review writes, and learning appends
// happen only once the decision object is final.
//
// Import rules:
//   - CAN import: every internal package except internal/cli
//   - MUST NOT import: internal/cli
package director

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hiveworks/hive/internal/catalog"
	"github.com/hiveworks/hive/internal/clock"
	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/ctxutil"
	"github.com/hiveworks/hive/internal/decompose"
	"github.com/hiveworks/hive/internal/domain"
	"github.com/hiveworks/hive/internal/errors"
	"github.com/hiveworks/hive/internal/humanreview"
	"github.com/hiveworks/hive/internal/pipeline"
	"github.com/hiveworks/hive/internal/router"
	"github.com/hiveworks/hive/internal/workspace"
)

// maxGoalLearnings caps the recent learnings embedded in goal metadata.
const maxGoalLearnings = 5

// Director owns the goal lifecycle. Safe for concurrent use as long as
// callers serialize per task id; the only internal mutable state is the
// per-pipeline failure counter, guarded by its own mutex.
type Director struct {
	store    *workspace.FileStore
	cat      catalog.Catalog
	router   *router.Router
	dec      *decompose.Decomposer
	factory  *pipeline.Factory
	reviews  ReviewEngine
	human    *humanreview.Manager
	budgetFn domain.BudgetProvider
	clk      clock.Clock
	log      zerolog.Logger

	mu       sync.Mutex
	failures map[string]int // consecutive review failures per pipeline
}

// ReviewEngine is the consumed slice of the review engine.
type ReviewEngine interface {
	EvaluateTaskSemantic(ctx context.Context, task *domain.Task, output string, existing []domain.Review, budget *domain.BudgetState) (*domain.Decision, float64)
	EvaluateTaskWithQuality(ctx context.Context, task *domain.Task, output string, existing []domain.Review, criteria domain.QualityCriteria, budget *domain.BudgetState) (*domain.Decision, float64)
	NewReview(task *domain.Task, decision *domain.Decision, sequence int) *domain.Review
}

// Executor runs one task's agent work and returns the raw output text
// plus the execution cost in dollars.
type Executor interface {
	ExecuteTask(ctx context.Context, t *domain.Task) (output string, cost float64, err error)
}

// Config assembles a Director from its collaborators.
type Config struct {
	Store    *workspace.FileStore
	Catalog  catalog.Catalog
	Reviews  ReviewEngine
	Human    *humanreview.Manager
	BudgetFn domain.BudgetProvider
	Clock    clock.Clock
	Logger   zerolog.Logger
}

// New creates a Director. The catalog is validated transitively through
// the router constructor.
func New(cfg Config) (*Director, error) {
	if cfg.Store == nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "director requires a workspace store")
	}
	if cfg.Catalog == nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "director requires a catalog")
	}
	if cfg.BudgetFn == nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "director requires a budget provider")
	}

	r, err := router.New(cfg.Catalog)
	if err != nil {
		return nil, err
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.System{}
	}

	return &Director{
		store:    cfg.Store,
		cat:      cfg.Catalog,
		router:   r,
		dec:      decompose.New(cfg.Catalog),
		factory:  pipeline.New(cfg.Catalog, clk),
		reviews:  cfg.Reviews,
		human:    cfg.Human,
		budgetFn: cfg.BudgetFn,
		clk:      clk,
		log:      cfg.Logger,
		failures: make(map[string]int),
	}, nil
}

// CreateGoal validates and persists a new goal. Up to five of the most
// recent learnings whose skill appears in the goal's routing are
// embedded in the goal's metadata so downstream agents see them.
func (d *Director) CreateGoal(ctx context.Context, description string, category constants.GoalCategory, priority constants.Priority, deadline *time.Time) (*domain.Goal, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, errors.Wrap(errors.ErrEmptyValue, "goal description")
	}
	if !category.Valid() {
		return nil, errors.Wrapf(errors.ErrConfigInvalid, "unknown goal category %q", category)
	}
	if !priority.Valid() {
		return nil, errors.Wrapf(errors.ErrConfigInvalid, "unknown priority %q", priority)
	}

	decision, err := d.router.RouteGoal(category)
	if err != nil {
		return nil, err
	}

	now := d.clk.Now().UTC()
	goal := &domain.Goal{
		ID:          newGoalID(now),
		Description: description,
		Category:    category,
		Priority:    priority,
		Deadline:    deadline,
		CreatedAt:   now,
	}

	learnings := d.relevantLearnings(ctx, router.SelectSkills(decision))
	if len(learnings) > 0 {
		goal.Metadata = map[string]any{"recent_learnings": learnings}
	}

	if err := d.store.SaveGoal(ctx, goal); err != nil {
		return nil, err
	}

	d.log.Info().
		Str("goal_id", goal.ID).
		Str("category", string(category)).
		Str("priority", string(priority)).
		Int("learnings", len(learnings)).
		Msg("goal created")

	return goal, nil
}

// relevantLearnings returns the most recent learnings whose skill is in
// the routed set, newest first. Journal read failures degrade to no
// learnings.
func (d *Director) relevantLearnings(ctx context.Context, skills []string) []domain.Learning {
	all, err := d.store.ReadLearnings(ctx)
	if err != nil {
		d.log.Warn().Err(err).Msg("learning journal unreadable, creating goal without learnings")
		return nil
	}

	routed := make(map[string]bool, len(skills))
	for _, s := range skills {
		routed[s] = true
	}

	var out []domain.Learning
	for i := len(all) - 1; i >= 0 && len(out) < maxGoalLearnings; i-- {
		if routed[all[i].Skill] {
			out = append(out, all[i])
		}
	}
	return out
}

// DecomposeGoal routes and decomposes a goal into an ordered plan, then
// persists the plan.
func (d *Director) DecomposeGoal(ctx context.Context, goal *domain.Goal) (*domain.GoalPlan, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	decision, err := d.router.RouteGoal(goal.Category)
	if err != nil {
		return nil, err
	}

	plan, err := d.dec.Decompose(goal, decision)
	if err != nil {
		return nil, err
	}

	if err := d.store.SavePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// PlanGoalTasks decomposes a goal, materializes a pipeline run for it,
// and persists the first phase's tasks. Later phases are created by
// AdvanceGoal once each phase completes.
func (d *Director) PlanGoalTasks(ctx context.Context, goal *domain.Goal) (*domain.PipelineRun, []*domain.Task, error) {
	plan, err := d.DecomposeGoal(ctx, goal)
	if err != nil {
		return nil, nil, err
	}

	def := d.factory.GoalPlanToDefinition(plan, goal)
	run := d.factory.CreateRun(def, goal.ID)

	tasks, err := d.factory.CreateTasksForStep(run, def, 0, goal.Description, goal.Priority, nil)
	if err != nil {
		return nil, nil, err
	}

	if err := d.persistRunAndTasks(ctx, run, tasks); err != nil {
		return nil, nil, err
	}

	d.log.Info().
		Str("goal_id", goal.ID).
		Str("run_id", run.ID).
		Int("tasks", len(tasks)).
		Msg("first phase planned")

	return run, tasks, nil
}

// StartPipeline instantiates a named template and persists the run and
// its first-step tasks. Unknown template names fail with a descriptive
// error.
func (d *Director) StartPipeline(ctx context.Context, templateName, description string, priority constants.Priority) (*domain.PipelineRun, []*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, nil, err
	}

	_, run, tasks, err := d.factory.Instantiate(templateName, description, "", priority)
	if err != nil {
		return nil, nil, err
	}

	if err := d.persistRunAndTasks(ctx, run, tasks); err != nil {
		return nil, nil, err
	}

	d.log.Info().
		Str("template", templateName).
		Str("run_id", run.ID).
		Int("tasks", len(tasks)).
		Msg("pipeline started")

	return run, tasks, nil
}

// AdvanceGoal checks whether the goal's current phase is complete and,
// if so, materializes the next phase's tasks or marks the run complete.
// It returns the new tasks and whether the goal finished. An incomplete
// phase returns no tasks and no error.
func (d *Director) AdvanceGoal(ctx context.Context, goalID string) ([]*domain.Task, bool, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, false, err
	}

	goal, err := d.store.ReadGoal(ctx, goalID)
	if err != nil {
		return nil, false, err
	}
	plan, err := d.store.ReadPlan(ctx, goalID)
	if err != nil {
		return nil, false, err
	}
	run, err := d.runForGoal(ctx, goalID)
	if err != nil {
		return nil, false, err
	}

	done, priorOutputs, err := d.phaseComplete(ctx, run)
	if err != nil {
		return nil, false, err
	}
	if !done {
		return nil, false, nil
	}

	def := d.factory.GoalPlanToDefinition(plan, goal)

	next := nextWorkStep(def, run.CurrentStepIndex)
	if next < 0 {
		now := d.clk.Now().UTC()
		run.Status = constants.RunStatusCompleted
		run.CompletedAt = &now
		if err := d.store.SaveRun(ctx, run); err != nil {
			return nil, false, err
		}
		d.log.Info().Str("goal_id", goalID).Str("run_id", run.ID).Msg("goal complete")
		return nil, true, nil
	}

	run.CurrentStepIndex = next
	tasks, err := d.factory.CreateTasksForStep(run, def, next, goal.Description, goal.Priority, priorOutputs)
	if err != nil {
		return nil, false, err
	}

	if err := d.persistRunAndTasks(ctx, run, tasks); err != nil {
		return nil, false, err
	}

	d.log.Info().
		Str("goal_id", goalID).
		Str("run_id", run.ID).
		Int("step", next).
		Int("tasks", len(tasks)).
		Msg("goal advanced")

	return tasks, false, nil
}

// phaseComplete reports whether every task registered on the run
// reached approved, and collects their output paths for the next phase.
// Superseded tasks are swapped out of the run when a revision or
// reassignment is synthesized, so only the live attempt counts. Any
// task still in flight means the phase is incomplete; failed and
// cancelled tasks also hold the phase, pending human direction.
func (d *Director) phaseComplete(ctx context.Context, run *domain.PipelineRun) (bool, []string, error) {
	var outputs []string
	for _, id := range run.TaskIDs {
		t, err := d.store.ReadTask(ctx, id)
		if err != nil {
			return false, nil, err
		}
		if t.Status != constants.TaskStatusApproved {
			return false, nil, nil
		}
		outputs = append(outputs, t.Output.Path)
	}
	return true, outputs, nil
}

// nextWorkStep returns the index of the next non-review step after
// current, or -1 when none remain. Review steps produce no tasks, so
// they are skipped during advancement.
func nextWorkStep(def *domain.PipelineDefinition, current int) int {
	for i := current + 1; i < len(def.Steps); i++ {
		if !def.Steps[i].Review {
			return i
		}
	}
	return -1
}

// runForGoal finds the run belonging to a goal.
func (d *Director) runForGoal(ctx context.Context, goalID string) (*domain.PipelineRun, error) {
	runs, err := d.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	for _, run := range runs {
		if run.GoalID == goalID {
			return run, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrGoalNotFound, "no pipeline run for goal %s", goalID)
}

func (d *Director) persistRunAndTasks(ctx context.Context, run *domain.PipelineRun, tasks []*domain.Task) error {
	for _, t := range tasks {
		if err := d.store.SaveTask(ctx, t); err != nil {
			return err
		}
	}
	return d.store.SaveRun(ctx, run)
}

// newGoalID builds a date-segmented goal id, e.g. goal-20260830-4f1a2b3c.
func newGoalID(now time.Time) string {
	return fmt.Sprintf("goal-%s-%s", now.Format("20060102"), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
