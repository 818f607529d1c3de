// Package budget implements the escalation engine: spend-based
// admission control plus the revision-exhaustion and cascading-failure
// escalation checks.
//
// Budget exhaustion is not an error. It is an admission-control
// decision the caller must check before dispatch; the director raises
// an explicit error when asked to execute a task the budget blocks.
package budget

import (
	"fmt"
	"strings"

	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/domain"
)

// Budget level thresholds as percent of total budget. Inclusive lower
// bounds: spend at exactly a boundary lands in the higher tier.
const (
	warningThreshold   = 80.0
	throttleThreshold  = 90.0
	criticalThreshold  = 95.0
	exhaustedThreshold = 100.0
)

// Engine computes budget state and escalation signals for a fixed
// monthly budget. The engine itself is stateless; spend is supplied on
// every call and nothing is cached.
type Engine struct {
	totalBudget float64
}

// NewEngine creates an escalation engine for the given monthly budget
// in USD.
func NewEngine(totalBudget float64) *Engine {
	return &Engine{totalBudget: totalBudget}
}

// TotalBudget returns the configured monthly budget.
func (e *Engine) TotalBudget() float64 {
	return e.totalBudget
}

// ComputeBudgetState derives the admission-control state from current
// spend. Level is strictly determined by percent used; a zero total
// budget reads as zero percent.
func (e *Engine) ComputeBudgetState(spent float64) domain.BudgetState {
	var percent float64
	if e.totalBudget > 0 {
		percent = spent / e.totalBudget * 100
	}

	state := domain.BudgetState{
		TotalBudget: e.totalBudget,
		Spent:       spent,
		PercentUsed: percent,
	}

	switch {
	case percent >= exhaustedThreshold:
		state.Level = constants.BudgetExhausted
		state.AllowedPriorities = []constants.Priority{}
	case percent >= criticalThreshold:
		state.Level = constants.BudgetCritical
		state.AllowedPriorities = []constants.Priority{constants.PriorityP0}
		state.ModelOverride = constants.TierHaiku
	case percent >= throttleThreshold:
		state.Level = constants.BudgetThrottle
		state.AllowedPriorities = []constants.Priority{constants.PriorityP0, constants.PriorityP1}
	case percent >= warningThreshold:
		state.Level = constants.BudgetWarning
		state.AllowedPriorities = []constants.Priority{
			constants.PriorityP0, constants.PriorityP1, constants.PriorityP2,
		}
	default:
		state.Level = constants.BudgetNormal
		state.AllowedPriorities = append([]constants.Priority(nil), constants.AllPriorities...)
	}

	return state
}

// ShouldExecuteTask reports whether the task's priority is admitted
// under the given budget state.
func ShouldExecuteTask(t *domain.Task, state domain.BudgetState) bool {
	return state.Allows(t.Priority)
}

// CheckBudgetEscalation returns an escalation when the budget level
// warrants one, or nil at normal. Critical and exhausted levels are
// critical severity; warning and throttle are warnings.
func CheckBudgetEscalation(state domain.BudgetState) *domain.Escalation {
	if state.Level == constants.BudgetNormal {
		return nil
	}

	severity := constants.SeverityWarning
	if state.Level == constants.BudgetCritical || state.Level == constants.BudgetExhausted {
		severity = constants.SeverityCritical
	}

	allowed := "NONE"
	if len(state.AllowedPriorities) > 0 {
		parts := make([]string, len(state.AllowedPriorities))
		for i, p := range state.AllowedPriorities {
			parts[i] = string(p)
		}
		allowed = strings.Join(parts, ", ")
	}

	return &domain.Escalation{
		Reason:   constants.ReasonBudgetThreshold,
		Severity: severity,
		Message: fmt.Sprintf("budget at %.1f%% (%s): allowed priorities %s",
			state.PercentUsed, state.Level, allowed),
		Context: map[string]any{
			"percent_used": state.PercentUsed,
			"level":        string(state.Level),
			"spent":        state.Spent,
			"total_budget": state.TotalBudget,
		},
	}
}

// CheckRevisionEscalation returns an agent-loop escalation when the
// task has exhausted its revision budget, or nil while revisions
// remain.
func CheckRevisionEscalation(t *domain.Task) *domain.Escalation {
	if t.RevisionCount < constants.MaxRevisions {
		return nil
	}
	return &domain.Escalation{
		Reason:   constants.ReasonAgentLoop,
		Severity: constants.SeverityWarning,
		Message: fmt.Sprintf("task %s for %s reached %d revisions without approval",
			t.ID, t.To, t.RevisionCount),
		Context: map[string]any{
			"task_id":        t.ID,
			"skill":          t.To,
			"revision_count": t.RevisionCount,
		},
	}
}

// CheckCascadingFailure returns a critical escalation once a pipeline
// accumulates the threshold of consecutive failures, or nil below it.
// Counting consecutive failures (and resetting on success) belongs to
// the caller; this only applies the threshold.
func CheckCascadingFailure(failedCount int, pipelineID string) *domain.Escalation {
	if failedCount < constants.CascadeFailureThreshold {
		return nil
	}
	return &domain.Escalation{
		Reason:   constants.ReasonCascadingFailure,
		Severity: constants.SeverityCritical,
		Message: fmt.Sprintf("pipeline %s has %d consecutive task failures",
			pipelineID, failedCount),
		Context: map[string]any{
			"pipeline_id":  pipelineID,
			"failed_count": failedCount,
		},
	}
}
