// Package humanreview manages the human escalation queue: raising
// review items from escalations, querying the pending queue, and
// applying operator feedback back onto the underlying tasks.
package humanreview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hiveworks/hive/internal/clock"
	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/domain"
	hiveerrors "github.com/hiveworks/hive/internal/errors"
	"github.com/hiveworks/hive/internal/task"
)

// Store is the persistence surface the manager needs. The workspace
// package implements it.
type Store interface {
	// SaveHumanReview writes or overwrites a review item.
	SaveHumanReview(ctx context.Context, item *domain.HumanReviewItem) error

	// ReadHumanReview loads one review item by id.
	ReadHumanReview(ctx context.Context, id string) (*domain.HumanReviewItem, error)

	// ListHumanReviews loads every review item.
	ListHumanReviews(ctx context.Context) ([]*domain.HumanReviewItem, error)

	// ReadTask loads one task by id.
	ReadTask(ctx context.Context, id string) (*domain.Task, error)

	// SaveTask writes or overwrites a task.
	SaveTask(ctx context.Context, t *domain.Task) error

	// ReadRun loads a pipeline run by id.
	ReadRun(ctx context.Context, id string) (*domain.PipelineRun, error)

	// SaveRun writes or overwrites a pipeline run.
	SaveRun(ctx context.Context, run *domain.PipelineRun) error

	// AppendLearning appends one entry to the learning journal.
	AppendLearning(ctx context.Context, l *domain.Learning) error
}

// Resolution is the outcome of submitted feedback: the resolved item
// plus any tasks the caller must re-enqueue.
type Resolution struct {
	// Item is the resolved review item.
	Item *domain.HumanReviewItem

	// ResumedTasks are tasks to hand back to the queue: the unblocked
	// original on approval, a synthesized revision on revise, nothing
	// on reject or cancel.
	ResumedTasks []*domain.Task
}

// Manager owns the human review queue.
type Manager struct {
	store Store
	clk   clock.Clock
	log   zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the clock used for timestamps.
func WithClock(clk clock.Clock) Option {
	return func(m *Manager) { m.clk = clk }
}

// WithLogger sets the manager's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// New creates a Manager over the given store.
func New(store Store, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		clk:   clock.System{},
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EscalateToHuman raises a review item for a task and persists it. The
// escalation's reason, message, and context are preserved verbatim;
// urgency follows the escalation severity.
func (m *Manager) EscalateToHuman(ctx context.Context, t *domain.Task, esc *domain.Escalation) (*domain.HumanReviewItem, error) {
	item := &domain.HumanReviewItem{
		ID:         "hr-" + t.ID,
		TaskID:     t.ID,
		GoalID:     t.GoalID,
		PipelineID: t.PipelineID,
		Skill:      t.To,
		Urgency:    urgencyFor(esc.Severity),
		CreatedAt:  m.clk.Now().UTC(),
		Status:     constants.ReviewItemPending,
		Reason:     esc.Reason,
		Message:    esc.Message,
		Context:    esc.Context,
	}
	if err := m.store.SaveHumanReview(ctx, item); err != nil {
		return nil, hiveerrors.Wrapf(err, "escalating task %s", t.ID)
	}
	m.log.Info().Str("task_id", t.ID).Str("urgency", string(item.Urgency)).
		Str("reason", string(esc.Reason)).Msg("task escalated to human review")
	return item, nil
}

// PendingReviews returns pending items, optionally narrowed by filter.
func (m *Manager) PendingReviews(ctx context.Context, filter *domain.ReviewFilter) ([]*domain.HumanReviewItem, error) {
	items, err := m.store.ListHumanReviews(ctx)
	if err != nil {
		return nil, err
	}
	var pending []*domain.HumanReviewItem
	for _, item := range items {
		if item.Status != constants.ReviewItemPending {
			continue
		}
		if filter != nil {
			if filter.Urgency != "" && item.Urgency != filter.Urgency {
				continue
			}
			if filter.Skill != "" && item.Skill != filter.Skill {
				continue
			}
			if filter.GoalID != "" && item.GoalID != filter.GoalID {
				continue
			}
		}
		pending = append(pending, item)
	}
	return pending, nil
}

// ReviewByTaskID returns the review item raised for a task.
func (m *Manager) ReviewByTaskID(ctx context.Context, taskID string) (*domain.HumanReviewItem, error) {
	items, err := m.store.ListHumanReviews(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.TaskID == taskID {
			return item, nil
		}
	}
	return nil, hiveerrors.Wrapf(hiveerrors.ErrReviewItemNotFound, "no review item for task %s", taskID)
}

// Stats aggregates the queue by status and urgency. The average
// resolution time covers resolved items only and is nil when nothing
// has resolved.
func (m *Manager) Stats(ctx context.Context) (*domain.ReviewStats, error) {
	items, err := m.store.ListHumanReviews(ctx)
	if err != nil {
		return nil, err
	}
	stats := &domain.ReviewStats{
		ByStatus:  make(map[constants.ReviewItemStatus]int),
		ByUrgency: make(map[constants.Urgency]int),
	}
	var total time.Duration
	resolved := 0
	for _, item := range items {
		stats.ByStatus[item.Status]++
		stats.ByUrgency[item.Urgency]++
		if item.ResolvedAt != nil {
			total += item.ResolvedAt.Sub(item.CreatedAt)
			resolved++
		}
	}
	if resolved > 0 {
		avg := total / time.Duration(resolved)
		stats.AvgResolution = &avg
	}
	return stats, nil
}

// SubmitFeedback resolves a review item with the operator's decision
// and applies the consequences to the underlying task.
func (m *Manager) SubmitFeedback(ctx context.Context, itemID string, feedback domain.HumanFeedback) (*Resolution, error) {
	item, err := m.store.ReadHumanReview(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status != constants.ReviewItemPending && item.Status != constants.ReviewItemInReview {
		return nil, hiveerrors.Wrapf(hiveerrors.ErrReviewAlreadyResolved, "item %s is %s", itemID, item.Status)
	}

	t, err := m.store.ReadTask(ctx, item.TaskID)
	if err != nil {
		return nil, err
	}

	resolution := &Resolution{Item: item}
	now := m.clk.Now().UTC()

	switch feedback.Decision {
	case constants.DecisionApprove, constants.DecisionOverrideApprove:
		// Blocked tasks resume execution; tasks parked in review get
		// their output approved outright.
		target, reason := constants.TaskStatusPending, "human approval, resuming"
		if t.Status == constants.TaskStatusInReview {
			target, reason = constants.TaskStatusApproved, "human approval of output"
		}
		if err := task.Transition(ctx, t, target, reason); err != nil {
			return nil, err
		}
		if err := m.store.SaveTask(ctx, t); err != nil {
			return nil, err
		}
		resolution.ResumedTasks = []*domain.Task{t}
		m.appendLearning(ctx, &domain.Learning{
			Kind:      domain.LearningSuccess,
			Skill:     t.To,
			TaskID:    t.ID,
			GoalID:    t.GoalID,
			Summary:   fmt.Sprintf("human %s resumed %s task", feedback.Decision, t.To),
			CreatedAt: now,
		})

	case constants.DecisionRevise:
		if strings.TrimSpace(feedback.RevisionInstructions) == "" {
			return nil, hiveerrors.Wrapf(hiveerrors.ErrRevisionInstructionsRequired, "item %s", itemID)
		}
		revision := m.synthesizeHumanRevision(t, feedback.RevisionInstructions)
		if err := task.Transition(ctx, t, constants.TaskStatusFailed, "superseded by human-requested revision"); err != nil {
			return nil, err
		}
		if err := m.store.SaveTask(ctx, t); err != nil {
			return nil, err
		}
		if err := m.store.SaveTask(ctx, revision); err != nil {
			return nil, err
		}
		if err := m.registerSuccessor(ctx, t.ID, revision); err != nil {
			return nil, err
		}
		resolution.ResumedTasks = []*domain.Task{revision}

	case constants.DecisionReject, constants.DecisionCancel:
		if err := task.Transition(ctx, t, constants.TaskStatusFailed, "human "+string(feedback.Decision)); err != nil {
			return nil, err
		}
		if err := m.store.SaveTask(ctx, t); err != nil {
			return nil, err
		}
		kind := domain.LearningFailure
		if feedback.Decision == constants.DecisionCancel {
			kind = domain.LearningCancellation
		}
		m.appendLearning(ctx, &domain.Learning{
			Kind:      kind,
			Skill:     t.To,
			TaskID:    t.ID,
			GoalID:    t.GoalID,
			Summary:   fmt.Sprintf("human %s ended %s task", feedback.Decision, t.To),
			CreatedAt: now,
		})

	default:
		return nil, fmt.Errorf("unknown human decision %q", feedback.Decision)
	}

	fb := feedback
	fb.SubmittedAt = now
	item.Feedback = &fb
	item.Status = constants.ReviewItemResolved
	item.ResolvedAt = &now
	if err := m.store.SaveHumanReview(ctx, item); err != nil {
		return nil, err
	}
	return resolution, nil
}

// synthesizeHumanRevision builds the successor task for a human revise
// decision.
func (m *Manager) synthesizeHumanRevision(t *domain.Task, instructions string) *domain.Task {
	now := m.clk.Now().UTC()

	var reqs strings.Builder
	reqs.WriteString("HUMAN REVISION REQUESTED\n")
	reqs.WriteString(instructions + "\n")
	if t.Requirements != "" {
		reqs.WriteString("\nOriginal requirements:\n")
		reqs.WriteString(t.Requirements)
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return &domain.Task{
		ID:            "task-" + now.Format("20060102") + "-" + suffix,
		CreatedAt:     now,
		UpdatedAt:     now,
		From:          constants.DirectorName,
		To:            t.To,
		Priority:      t.Priority,
		Deadline:      t.Deadline,
		Status:        constants.TaskStatusPending,
		RevisionCount: t.RevisionCount + 1,
		GoalID:        t.GoalID,
		PipelineID:    t.PipelineID,
		Goal:          t.Goal,
		Inputs: append(append([]domain.TaskInput(nil), t.Inputs...), domain.TaskInput{
			Path:        t.Output.Path,
			Description: "Previous output to revise",
		}),
		Requirements: reqs.String(),
		Output:       t.Output,
		Next:         t.Next,
		Tags:         append(append([]string(nil), t.Tags...), "human-requested", "revision"),
		Metadata: map[string]any{
			"revision_of": t.ID,
		},
	}
}

// registerSuccessor swaps the failed original for its human-requested
// revision in the owning run, so goal advancement waits on the
// revision instead of the superseded task.
func (m *Manager) registerSuccessor(ctx context.Context, supersededID string, next *domain.Task) error {
	if next.PipelineID == "" {
		return nil
	}
	run, err := m.store.ReadRun(ctx, next.PipelineID)
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
	return m.store.SaveRun(ctx, run)
}

// appendLearning records a journal entry; failures are logged, never
// fatal to the feedback flow.
func (m *Manager) appendLearning(ctx context.Context, l *domain.Learning) {
	if err := m.store.AppendLearning(ctx, l); err != nil {
		m.log.Warn().Err(err).Str("task_id", l.TaskID).Msg("learning append failed")
	}
}

func urgencyFor(severity constants.Severity) constants.Urgency {
	switch severity {
	case constants.SeverityCritical:
		return constants.UrgencyCritical
	case constants.SeverityWarning:
		return constants.UrgencyHigh
	default:
		return constants.UrgencyNormal
	}
}
