package director

import (
	"context"

	"github.com/hiveworks/hive/internal/budget"
	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/ctxutil"
	"github.com/hiveworks/hive/internal/domain"
	"github.com/hiveworks/hive/internal/errors"
	"github.com/hiveworks/hive/internal/task"
)

// ReviewCompletedTask reads a completed task's output, reviews it, and
// applies the decision: the status transition, the persisted review,
// any synthesized revision tasks, escalations, and learnings. Returns
// the decision and the review cost.
func (d *Director) ReviewCompletedTask(ctx context.Context, taskID string) (*domain.Decision, float64, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, 0, err
	}

	t, err := d.store.ReadTask(ctx, taskID)
	if err != nil {
		return nil, 0, err
	}

	output, err := d.readTaskOutput(ctx, t)
	if err != nil {
		return nil, 0, err
	}

	existing, err := d.store.ListReviews(ctx, t.ID)
	if err != nil {
		return nil, 0, err
	}

	state := d.budgetFn()
	decision, cost := d.evaluate(ctx, t, output, existing, &state)

	if err := d.applyDecision(ctx, t, decision, existing); err != nil {
		return nil, 0, err
	}
	return decision, cost, nil
}

// ExecuteAndReviewTask gates the task on budget admission, runs it
// through the executor, persists its output, then reviews it. The
// returned cost sums execution and review. A task refused by budget
// admission fails with ErrBudgetBlocked rather than silently running.
func (d *Director) ExecuteAndReviewTask(ctx context.Context, taskID string, exec Executor) (*domain.Decision, float64, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, 0, err
	}

	t, err := d.store.ReadTask(ctx, taskID)
	if err != nil {
		return nil, 0, err
	}

	state := d.budgetFn()
	if !budget.ShouldExecuteTask(t, state) {
		return nil, 0, errors.Wrapf(errors.ErrBudgetBlocked,
			"task %s priority %s at budget level %s", t.ID, t.Priority, state.Level)
	}

	if err := d.transitionAndSave(ctx, t, constants.TaskStatusInProgress, "dispatched to agent"); err != nil {
		return nil, 0, err
	}

	output, execCost, err := exec.ExecuteTask(ctx, t)
	if err != nil {
		if terr := d.transitionAndSave(ctx, t, constants.TaskStatusFailed, "agent execution failed"); terr != nil {
			d.log.Error().Err(terr).Str("task_id", t.ID).Msg("failed task could not be marked failed")
		}
		d.recordFailure(ctx, t)
		return nil, execCost, errors.Wrapf(err, "executing task %s", t.ID)
	}

	if err := d.writeTaskOutput(ctx, t, output); err != nil {
		return nil, execCost, err
	}
	if err := d.transitionAndSave(ctx, t, constants.TaskStatusCompleted, "agent output received"); err != nil {
		return nil, execCost, err
	}

	existing, err := d.store.ListReviews(ctx, t.ID)
	if err != nil {
		return nil, execCost, err
	}

	state = d.budgetFn()
	decision, reviewCost := d.evaluate(ctx, t, output, existing, &state)

	if err := d.applyDecision(ctx, t, decision, existing); err != nil {
		return nil, execCost + reviewCost, err
	}
	return decision, execCost + reviewCost, nil
}

// evaluate picks the criteria-driven path when the catalog has judging
// criteria for the skill, otherwise the plain semantic path.
func (d *Director) evaluate(ctx context.Context, t *domain.Task, output string, existing []domain.Review, state *domain.BudgetState) (*domain.Decision, float64) {
	if criteria, ok := d.cat.QualityCriteria(t.To); ok {
		return d.reviews.EvaluateTaskWithQuality(ctx, t, output, existing, criteria, state)
	}
	return d.reviews.EvaluateTaskSemantic(ctx, t, output, existing, state)
}

// applyDecision performs the side effects of a fully computed decision:
// the status transition, persisted review, synthesized tasks, human
// escalation, and learning.
func (d *Director) applyDecision(ctx context.Context, t *domain.Task, decision *domain.Decision, existing []domain.Review) error {
	switch decision.Action {
	case constants.ActionApprove, constants.ActionPipelineNext, constants.ActionGoalComplete:
		if err := d.transitionAndSave(ctx, t, constants.TaskStatusApproved, "review approved"); err != nil {
			return err
		}
		d.resetFailures(t.PipelineID)

	case constants.ActionRevise:
		if err := d.transitionAndSave(ctx, t, constants.TaskStatusRevision, "review requested revision"); err != nil {
			return err
		}
		if err := d.saveSuccessors(ctx, t, decision.NextTasks); err != nil {
			return err
		}

	case constants.ActionRejectReassign:
		if err := d.transitionAndSave(ctx, t, constants.TaskStatusFailed, "review rejected output"); err != nil {
			return err
		}
		if err := d.saveSuccessors(ctx, t, decision.NextTasks); err != nil {
			return err
		}
		d.recordFailure(ctx, t)

	case constants.ActionEscalateHuman:
		if err := d.transitionAndSave(ctx, t, constants.TaskStatusInReview, "escalated to human"); err != nil {
			return err
		}
		if d.human != nil && decision.Escalation != nil {
			if _, err := d.human.EscalateToHuman(ctx, t, decision.Escalation); err != nil {
				return err
			}
		}
	}

	review := d.reviews.NewReview(t, decision, len(existing))
	if err := d.store.SaveReview(ctx, review); err != nil {
		return err
	}

	if decision.Learning != nil {
		if err := d.store.AppendLearning(ctx, decision.Learning); err != nil {
			d.log.Warn().Err(err).Str("task_id", t.ID).Msg("learning append failed")
		}
	}

	d.log.Info().
		Str("task_id", t.ID).
		Str("verdict", string(decision.Verdict)).
		Str("action", string(decision.Action)).
		Msg("review applied")

	return nil
}

// saveSuccessors persists synthesized follow-up tasks and re-points the
// owning run at them, so phase completion tracks the live attempt
// rather than the superseded one.
func (d *Director) saveSuccessors(ctx context.Context, superseded *domain.Task, successors []*domain.Task) error {
	for _, next := range successors {
		if err := d.store.SaveTask(ctx, next); err != nil {
			return err
		}
		if err := d.registerSuccessor(ctx, superseded.ID, next); err != nil {
			return err
		}
	}
	return nil
}

// registerSuccessor swaps the superseded task id for the successor's in
// the run's task list, appending when the superseded id is absent.
func (d *Director) registerSuccessor(ctx context.Context, supersededID string, next *domain.Task) error {
	if next.PipelineID == "" {
		return nil
	}
	run, err := d.store.ReadRun(ctx, next.PipelineID)
	if err != nil {
		return err
	}
	replaced := false
	for i, id := range run.TaskIDs {
		if id == supersededID {
			run.TaskIDs[i] = next.ID
			replaced = true
			break
		}
	}
	if !replaced {
		run.TaskIDs = append(run.TaskIDs, next.ID)
	}
	return d.store.SaveRun(ctx, run)
}

// recordFailure bumps the pipeline's consecutive failure counter and
// escalates to a human once it crosses the cascade threshold. Approvals
// reset the counter; the count deliberately survives revisions.
func (d *Director) recordFailure(ctx context.Context, t *domain.Task) {
	if t.PipelineID == "" {
		return
	}

	d.mu.Lock()
	d.failures[t.PipelineID]++
	count := d.failures[t.PipelineID]
	d.mu.Unlock()

	esc := budget.CheckCascadingFailure(count, t.PipelineID)
	if esc == nil || d.human == nil {
		return
	}
	if _, err := d.human.EscalateToHuman(ctx, t, esc); err != nil {
		d.log.Error().Err(err).Str("pipeline_id", t.PipelineID).Msg("cascade escalation failed")
	}
}

func (d *Director) resetFailures(pipelineID string) {
	if pipelineID == "" {
		return
	}
	d.mu.Lock()
	delete(d.failures, pipelineID)
	d.mu.Unlock()
}

// readTaskOutput resolves the task's output location. The foundation
// skill writes the shared context document rather than a squad output.
func (d *Director) readTaskOutput(ctx context.Context, t *domain.Task) (string, error) {
	if d.isFoundation(t.To) {
		return d.store.ReadFoundationContext(ctx)
	}
	return d.store.ReadOutput(ctx, t.Output.Path)
}

func (d *Director) writeTaskOutput(ctx context.Context, t *domain.Task, output string) error {
	if d.isFoundation(t.To) {
		return d.store.WriteFoundationContext(ctx, output)
	}
	return d.store.WriteOutput(ctx, t.Output.Path, output)
}

func (d *Director) isFoundation(skillName string) bool {
	skill, ok := d.cat.Skill(skillName)
	return ok && skill.Squad == ""
}

func (d *Director) transitionAndSave(ctx context.Context, t *domain.Task, to constants.TaskStatus, reason string) error {
	if err := task.Transition(ctx, t, to, reason); err != nil {
		return err
	}
	return d.store.SaveTask(ctx, t)
}
