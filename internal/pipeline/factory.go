// Package pipeline compiles catalog templates and goal plans into
// schedulable pipeline definitions, and materializes the concrete
// tasks for each step of a run.
package pipeline

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hiveworks/hive/internal/catalog"
	"github.com/hiveworks/hive/internal/clock"
	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/domain"
	hiveerrors "github.com/hiveworks/hive/internal/errors"
)

// Factory compiles pipelines and materializes their tasks. It never
// mutates the catalog and never persists anything itself.
type Factory struct {
	cat catalog.Catalog
	clk clock.Clock
}

// New creates a Factory backed by the given catalog. A nil clk falls
// back to the system clock.
func New(cat catalog.Catalog, clk clock.Clock) *Factory {
	if clk == nil {
		clk = clock.System{}
	}
	return &Factory{cat: cat, clk: clk}
}

// TemplateToDefinition compiles a catalog template into an immutable
// pipeline definition. Step names carry over when present, otherwise
// they are derived from the step position.
func (f *Factory) TemplateToDefinition(tmpl domain.PipelineTemplate) *domain.PipelineDefinition {
	def := &domain.PipelineDefinition{
		ID:              slug(tmpl.Name),
		Name:            tmpl.Name,
		Trigger:         tmpl.Trigger,
		Schedule:        ParseTrigger(tmpl.Trigger),
		DefaultPriority: tmpl.DefaultPriority,
		Steps:           make([]domain.PipelineStep, 0, len(tmpl.Steps)),
	}
	for i, step := range tmpl.Steps {
		compiled := domain.PipelineStep{
			Name:     fmt.Sprintf("%s step %d", tmpl.Name, i+1),
			Skills:   append([]string(nil), step.SkillSet()...),
			Parallel: step.Parallel(),
			Review:   step.Review,
		}
		def.Steps = append(def.Steps, compiled)
	}
	return def
}

// GoalPlanToDefinition compiles a goal plan into a pipeline definition.
// Plan-derived pipelines are always manual: they run once for their
// goal and are never rescheduled.
func (f *Factory) GoalPlanToDefinition(plan *domain.GoalPlan, goal *domain.Goal) *domain.PipelineDefinition {
	def := &domain.PipelineDefinition{
		ID:              slug(goal.ID + " plan"),
		Name:            goal.Description,
		Trigger:         ScheduleManual,
		Schedule:        ScheduleManual,
		DefaultPriority: goal.Priority,
		Steps:           make([]domain.PipelineStep, 0, len(plan.Phases)),
	}
	for _, phase := range plan.Phases {
		def.Steps = append(def.Steps, domain.PipelineStep{
			Name:     phase.Name,
			Skills:   append([]string(nil), phase.Skills...),
			Parallel: phase.Parallel,
		})
	}
	return def
}

// CreateRun starts a fresh run of a definition. The run begins pending
// at step zero with no tasks materialized yet.
func (f *Factory) CreateRun(def *domain.PipelineDefinition, goalID string) *domain.PipelineRun {
	return &domain.PipelineRun{
		ID:               def.ID + "-" + shortID(),
		PipelineID:       def.ID,
		GoalID:           goalID,
		StartedAt:        f.clk.Now().UTC(),
		Status:           constants.RunStatusPending,
		CurrentStepIndex: 0,
		TaskIDs:          []string{},
	}
}

// CreateTasksForStep materializes tasks for one step of a run.
//
// A review step yields no tasks. A sequential step yields one task, a
// parallel step one per skill. Every task starts pending from the
// director with a fresh revision counter. Tasks on the final step ask
// for a director review; earlier steps continue the pipeline. The ids
// of the new tasks are appended to run.TaskIDs.
func (f *Factory) CreateTasksForStep(run *domain.PipelineRun, def *domain.PipelineDefinition, stepIndex int, goalText string, priority constants.Priority, inputPaths []string) ([]*domain.Task, error) {
	if stepIndex < 0 || stepIndex >= len(def.Steps) {
		return nil, fmt.Errorf("pipeline %s has no step %d", def.ID, stepIndex)
	}
	step := def.Steps[stepIndex]
	if step.Review {
		return nil, nil
	}
	if !priority.Valid() {
		priority = def.DefaultPriority
	}

	next := domain.TaskNext{Type: constants.NextPipelineContinue, PipelineID: run.ID}
	if stepIndex == len(def.Steps)-1 {
		next = domain.TaskNext{Type: constants.NextDirectorReview}
	}

	inputs := []domain.TaskInput{{
		Path:        path.Join(constants.ContextDir, constants.FoundationContextFile),
		Description: "Shared brand foundation context",
	}}
	for _, p := range inputPaths {
		inputs = append(inputs, domain.TaskInput{
			Path:        p,
			Description: "Output from a prior pipeline step",
		})
	}

	now := f.clk.Now().UTC()
	tasks := make([]*domain.Task, 0, len(step.Skills))
	for _, skillName := range step.Skills {
		skill, ok := f.cat.Skill(skillName)
		if !ok {
			return nil, hiveerrors.Wrapf(hiveerrors.ErrSkillNotFound, "pipeline %s step %d references %q", def.ID, stepIndex, skillName)
		}
		taskID := newTaskID(now)
		task := &domain.Task{
			ID:            taskID,
			CreatedAt:     now,
			UpdatedAt:     now,
			From:          constants.DirectorName,
			To:            skill.Name,
			Priority:      priority,
			Status:        constants.TaskStatusPending,
			RevisionCount: 0,
			GoalID:        run.GoalID,
			PipelineID:    run.ID,
			Goal:          goalText,
			Inputs:        append([]domain.TaskInput(nil), inputs...),
			Output: domain.TaskOutput{
				Path:   outputPath(skill, taskID),
				Format: "markdown",
			},
			Next: next,
		}
		tasks = append(tasks, task)
		run.TaskIDs = append(run.TaskIDs, taskID)
	}
	return tasks, nil
}

// Instantiate compiles a named template, starts a run for it, and
// materializes the tasks for step zero. Later steps are materialized
// by the director as the run advances.
func (f *Factory) Instantiate(templateName, goalText, goalID string, priority constants.Priority) (*domain.PipelineDefinition, *domain.PipelineRun, []*domain.Task, error) {
	tmpl, ok := f.cat.Template(templateName)
	if !ok {
		return nil, nil, nil, hiveerrors.Wrapf(hiveerrors.ErrTemplateNotFound, "no pipeline template named %q", templateName)
	}
	def := f.TemplateToDefinition(tmpl)
	run := f.CreateRun(def, goalID)
	tasks, err := f.CreateTasksForStep(run, def, 0, goalText, priority, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return def, run, tasks, nil
}

// outputPath builds the workspace-relative output location for a task.
// Foundation skills have no squad and write under the foundation
// segment instead.
func outputPath(skill domain.Skill, taskID string) string {
	squad := skill.Squad
	if squad == "" {
		squad = constants.FoundationSquadSegment
	}
	return path.Join(constants.OutputsDir, squad, skill.Name, taskID+".md")
}

// newTaskID returns a date-segmented task id, e.g. task-20260830-4f1a2b3c.
func newTaskID(now time.Time) string {
	return "task-" + now.Format("20060102") + "-" + shortID()
}

// shortID returns the first eight hex characters of a fresh UUID.
func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// slug lowercases a name and collapses runs of non-alphanumerics into
// single hyphens, e.g. "Conversion Sprint" -> "conversion-sprint".
func slug(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
