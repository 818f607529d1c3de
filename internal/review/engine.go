// Package review judges task outputs and produces side-effect-free
// decisions: a verdict, the director-level action, synthesized revision
// tasks, escalations, and learnings. The director applies decisions;
// this package never persists or transitions anything itself.
package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hiveworks/hive/internal/clock"
	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/domain"
	"github.com/hiveworks/hive/internal/quality"
)

// Engine evaluates task outputs. Without a model client it judges
// structurally only; with one, a semantic pass refines the structural
// findings. Every model failure degrades to the structural result.
type Engine struct {
	client domain.ModelClient
	scorer *quality.Scorer
	clk    clock.Clock
	log    zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithModelClient enables the semantic review pass.
func WithModelClient(client domain.ModelClient) Option {
	return func(e *Engine) { e.client = client }
}

// WithScorer enables criteria-driven verdicts via the quality scorer.
func WithScorer(scorer *quality.Scorer) Option {
	return func(e *Engine) { e.scorer = scorer }
}

// WithClock overrides the clock used for timestamps.
func WithClock(clk clock.Clock) Option {
	return func(e *Engine) { e.clk = clk }
}

// WithLogger sets the engine's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an Engine. Without options it reviews structurally only.
func New(opts ...Option) *Engine {
	e := &Engine{
		clk: clock.System{},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EvaluateTask judges output structurally and returns the complete
// decision. It is a pure function of its inputs.
func (e *Engine) EvaluateTask(task *domain.Task, output string, existing []domain.Review) *domain.Decision {
	findings := structuralFindings(output)
	return e.decide(task, findings, existing)
}

// structuralFindings runs the fixed text checks over an output.
func structuralFindings(output string) []domain.Finding {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return []domain.Finding{{
			Section:     "output",
			Severity:    domain.SeverityFindingCritical,
			Description: "output is empty",
		}}
	}
	if len(trimmed) < 100 {
		return []domain.Finding{{
			Section:     "output",
			Severity:    domain.SeverityFindingMajor,
			Description: "output is suspiciously short",
		}}
	}

	var findings []domain.Finding
	if !hasHeading(trimmed) {
		findings = append(findings, domain.Finding{
			Section:     "structure",
			Severity:    domain.SeverityFindingMinor,
			Description: "output has no markdown headings",
		})
	}
	if nonEmptyLines(trimmed) < 3 {
		findings = append(findings, domain.Finding{
			Section:     "structure",
			Severity:    domain.SeverityFindingMajor,
			Description: "output lacks sufficient depth",
		})
	}
	return findings
}

// decide converts findings into a verdict, action, and consequences.
func (e *Engine) decide(task *domain.Task, findings []domain.Finding, existing []domain.Review) *domain.Decision {
	return e.buildDecision(task, verdictFromFindings(findings), findings, existing)
}

// buildDecision attaches the action and its consequences (revision
// task, escalation, learning) to a verdict. The quality-criteria path
// supplies a verdict of its own; the structural path derives it from
// the finding severities.
func (e *Engine) buildDecision(task *domain.Task, verdict constants.Verdict, findings []domain.Finding, existing []domain.Review) *domain.Decision {
	decision := &domain.Decision{
		Verdict:  verdict,
		Action:   determineAction(verdict, task),
		Findings: findings,
	}
	for _, f := range findings {
		if f.Severity == domain.SeverityFindingMajor {
			decision.RevisionRequests = append(decision.RevisionRequests, f.Description)
		}
	}

	switch decision.Action {
	case constants.ActionRevise:
		if len(decision.RevisionRequests) == 0 {
			decision.RevisionRequests = []string{"raise overall quality above the approval threshold"}
		}
		decision.NextTasks = []*domain.Task{e.synthesizeRevision(task, decision.RevisionRequests)}
	case constants.ActionRejectReassign:
		decision.NextTasks = []*domain.Task{e.synthesizeReassignment(task, rejectionRequests(findings))}
	case constants.ActionEscalateHuman:
		decision.Escalation = &domain.Escalation{
			Reason:   constants.ReasonAgentLoop,
			Severity: constants.SeverityWarning,
			Message:  fmt.Sprintf("task %s hit the revision limit after %d passes", task.ID, task.RevisionCount),
			Context: map[string]any{
				"task_id":        task.ID,
				"skill":          task.To,
				"revision_count": task.RevisionCount,
			},
		}
	case constants.ActionApprove, constants.ActionGoalComplete, constants.ActionPipelineNext:
		decision.Learning = &domain.Learning{
			Kind:      domain.LearningSuccess,
			Skill:     task.To,
			TaskID:    task.ID,
			GoalID:    task.GoalID,
			Summary:   fmt.Sprintf("%s output approved after %d reviews", task.To, len(existing)),
			CreatedAt: e.clk.Now().UTC(),
		}
	}

	decision.Summary = summarize(task, decision)
	return decision
}

// verdictFromFindings applies the fixed severity rules: any critical
// rejects, any major revises, anything else approves.
func verdictFromFindings(findings []domain.Finding) constants.Verdict {
	verdict := constants.VerdictApprove
	for _, f := range findings {
		switch f.Severity {
		case domain.SeverityFindingCritical:
			return constants.VerdictReject
		case domain.SeverityFindingMajor:
			verdict = constants.VerdictRevise
		}
	}
	return verdict
}

// determineAction maps a verdict plus the task's next directive and
// revision budget to the director-level action.
func determineAction(verdict constants.Verdict, task *domain.Task) constants.Action {
	switch verdict {
	case constants.VerdictApprove:
		switch task.Next.Type {
		case constants.NextPipelineContinue:
			return constants.ActionPipelineNext
		case constants.NextComplete, constants.NextDirectorReview:
			return constants.ActionGoalComplete
		default:
			return constants.ActionApprove
		}
	case constants.VerdictRevise:
		if task.RevisionCount < constants.MaxRevisions {
			return constants.ActionRevise
		}
		return constants.ActionEscalateHuman
	default: // REJECT
		if task.RevisionCount < constants.MaxRevisions {
			return constants.ActionRejectReassign
		}
		return constants.ActionEscalateHuman
	}
}

// synthesizeRevision builds the successor task for a revise decision.
// The revision keeps the original's assignment and destination but
// carries the prior output as an input and the revision requests as
// leading requirements.
func (e *Engine) synthesizeRevision(task *domain.Task, requests []string) *domain.Task {
	var reqs strings.Builder
	reqs.WriteString("Revise the previous output. Required changes:\n")
	for _, r := range requests {
		reqs.WriteString("- " + r + "\n")
	}
	if task.Requirements != "" {
		reqs.WriteString("\nOriginal requirements:\n")
		reqs.WriteString(task.Requirements)
	}

	revision := e.newSuccessor(task)
	revision.Inputs = append(revision.Inputs, domain.TaskInput{
		Path:        task.Output.Path,
		Description: "Previous output to revise",
	})
	revision.Requirements = reqs.String()
	revision.Tags = append(revision.Tags, "revision")
	revision.Metadata["revision_of"] = task.ID
	return revision
}

// synthesizeReassignment builds the fresh attempt for a reject
// decision. Unlike a revision it does not carry the rejected output
// forward; the skill starts over against the listed issues.
func (e *Engine) synthesizeReassignment(task *domain.Task, requests []string) *domain.Task {
	var reqs strings.Builder
	reqs.WriteString("The previous attempt was rejected. Address every issue:\n")
	for _, r := range requests {
		reqs.WriteString("- " + r + "\n")
	}
	if task.Requirements != "" {
		reqs.WriteString("\nOriginal requirements:\n")
		reqs.WriteString(task.Requirements)
	}

	reassigned := e.newSuccessor(task)
	reassigned.Requirements = reqs.String()
	reassigned.Tags = append(reassigned.Tags, "reassigned")
	reassigned.Metadata["reassigned_from"] = task.ID
	return reassigned
}

// newSuccessor clones the assignment fields every synthesized follow-up
// inherits from the task it supersedes. revisionCount+1 keeps both the
// revise and reject loops bounded by the same limit.
func (e *Engine) newSuccessor(task *domain.Task) *domain.Task {
	now := e.clk.Now().UTC()
	return &domain.Task{
		ID:            newTaskID(now),
		CreatedAt:     now,
		UpdatedAt:     now,
		From:          constants.DirectorName,
		To:            task.To,
		Priority:      task.Priority,
		Deadline:      task.Deadline,
		Status:        constants.TaskStatusPending,
		RevisionCount: task.RevisionCount + 1,
		GoalID:        task.GoalID,
		PipelineID:    task.PipelineID,
		Goal:          task.Goal,
		Inputs:        append([]domain.TaskInput(nil), task.Inputs...),
		Output:        task.Output,
		Next:          task.Next,
		Tags:          append([]string(nil), task.Tags...),
		Metadata: map[string]any{
			"original_task_id": originalTaskID(task),
		},
	}
}

// rejectionRequests turns critical and major findings into the
// required-changes list for a reassigned attempt.
func rejectionRequests(findings []domain.Finding) []string {
	var requests []string
	for _, f := range findings {
		if f.Severity == domain.SeverityFindingCritical || f.Severity == domain.SeverityFindingMajor {
			requests = append(requests, f.Description)
		}
	}
	if len(requests) == 0 {
		requests = []string{"produce a deliverable that meets the original requirements"}
	}
	return requests
}

// originalTaskID walks back to the first task in a revision chain.
func originalTaskID(task *domain.Task) string {
	if orig, ok := task.Metadata["original_task_id"].(string); ok && orig != "" {
		return orig
	}
	return task.ID
}

func summarize(task *domain.Task, d *domain.Decision) string {
	return fmt.Sprintf("%s for %s output of task %s (%d findings)",
		d.Action, task.To, task.ID, len(d.Findings))
}

// NewReview materializes a persistable review record from a decision.
func (e *Engine) NewReview(task *domain.Task, decision *domain.Decision, sequence int) *domain.Review {
	return &domain.Review{
		ID:               fmt.Sprintf("%s/%d", task.ID, sequence),
		TaskID:           task.ID,
		Sequence:         sequence,
		CreatedAt:        e.clk.Now().UTC(),
		Reviewer:         constants.DirectorName,
		Author:           task.To,
		Verdict:          decision.Verdict,
		Findings:         decision.Findings,
		RevisionRequests: decision.RevisionRequests,
		Summary:          decision.Summary,
	}
}

func hasHeading(output string) bool {
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			return true
		}
	}
	return false
}

func nonEmptyLines(output string) int {
	count := 0
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

// newTaskID returns a date-segmented task id for synthesized tasks.
func newTaskID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "task-" + now.Format("20060102") + "-" + suffix
}
