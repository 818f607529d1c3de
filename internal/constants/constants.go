// Package constants provides shared constant values for the hive
// orchestration system. It holds the closed enumerations used across
// packages (statuses, priorities, verdicts, budget levels) so that
// internal/domain and the rest of the tree agree on wire values.
//
// This package MUST NOT import any other internal packages.
package constants

// Priority represents a task or goal priority tier.
type Priority string

// Priority tiers, highest first. Budget throttling shrinks the allowed
// set from the bottom up (P3 is shed first).
const (
	// PriorityP0 is reserved for urgent, revenue-critical work.
	PriorityP0 Priority = "P0"

	// PriorityP1 is high-priority planned work.
	PriorityP1 Priority = "P1"

	// PriorityP2 is normal scheduled work.
	PriorityP2 Priority = "P2"

	// PriorityP3 is background or experimental work.
	PriorityP3 Priority = "P3"
)

// AllPriorities lists every priority tier from highest to lowest.
//
//nolint:gochecknoglobals // Read-only lookup table
var AllPriorities = []Priority{PriorityP0, PriorityP1, PriorityP2, PriorityP3}

// Valid returns true if the priority is a known tier.
func (p Priority) Valid() bool {
	switch p {
	case PriorityP0, PriorityP1, PriorityP2, PriorityP3:
		return true
	default:
		return false
	}
}

// GoalCategory classifies an operator goal and determines routing.
type GoalCategory string

// Goal categories form a closed enum; routing and decomposition are
// keyed entirely off these values.
const (
	// CategoryLaunch covers product and campaign launches.
	CategoryLaunch GoalCategory = "launch"

	// CategoryContent covers content production goals.
	CategoryContent GoalCategory = "content"

	// CategoryOptimization covers conversion optimization goals.
	CategoryOptimization GoalCategory = "optimization"

	// CategoryGrowth covers acquisition and growth goals.
	CategoryGrowth GoalCategory = "growth"

	// CategoryRetention covers lifecycle and retention goals.
	CategoryRetention GoalCategory = "retention"

	// CategoryAnalysis covers measurement and reporting goals.
	CategoryAnalysis GoalCategory = "analysis"
)

// AllGoalCategories lists every goal category.
//
//nolint:gochecknoglobals // Read-only lookup table
var AllGoalCategories = []GoalCategory{
	CategoryLaunch,
	CategoryContent,
	CategoryOptimization,
	CategoryGrowth,
	CategoryRetention,
	CategoryAnalysis,
}

// Valid returns true if the category is a known value.
func (c GoalCategory) Valid() bool {
	switch c {
	case CategoryLaunch, CategoryContent, CategoryOptimization,
		CategoryGrowth, CategoryRetention, CategoryAnalysis:
		return true
	default:
		return false
	}
}

// Verdict is the review engine's judgment of one task output.
type Verdict string

// Review verdicts.
const (
	// VerdictApprove accepts the output as-is.
	VerdictApprove Verdict = "APPROVE"

	// VerdictRevise sends the output back with revision requests.
	VerdictRevise Verdict = "REVISE"

	// VerdictReject discards the output entirely.
	VerdictReject Verdict = "REJECT"
)

// Action is the director-level consequence of a verdict.
type Action string

// Director actions derived from verdict plus task context.
const (
	// ActionApprove accepts the task; no pipeline consequence.
	ActionApprove Action = "approve"

	// ActionRevise schedules a synthesized revision task.
	ActionRevise Action = "revise"

	// ActionRejectReassign rejects the output and reassigns the work.
	ActionRejectReassign Action = "reject_reassign"

	// ActionEscalateHuman hands the task to the human review queue.
	ActionEscalateHuman Action = "escalate_human"

	// ActionPipelineNext advances the owning pipeline to its next step.
	ActionPipelineNext Action = "pipeline_next"

	// ActionGoalComplete marks the owning goal complete.
	ActionGoalComplete Action = "goal_complete"
)

// NextType is the directive attached to a task describing what happens
// after its output is approved.
type NextType string

// Task "next" directives form a closed tagged variant.
const (
	// NextAgent routes the approved output to another skill directly.
	NextAgent NextType = "agent"

	// NextPipelineContinue advances the referenced pipeline run.
	NextPipelineContinue NextType = "pipeline_continue"

	// NextDirectorReview sends the output to the director for final review.
	NextDirectorReview NextType = "director_review"

	// NextComplete ends the task's chain.
	NextComplete NextType = "complete"
)

// BudgetLevel is the discretized spend-based admission-control state.
type BudgetLevel string

// Budget levels in strictly increasing severity.
const (
	// BudgetNormal allows all priorities.
	BudgetNormal BudgetLevel = "normal"

	// BudgetWarning allows P0 through P2.
	BudgetWarning BudgetLevel = "warning"

	// BudgetThrottle allows P0 and P1 only.
	BudgetThrottle BudgetLevel = "throttle"

	// BudgetCritical allows P0 only and forces the cheapest model tier.
	BudgetCritical BudgetLevel = "critical"

	// BudgetExhausted allows nothing.
	BudgetExhausted BudgetLevel = "exhausted"
)

// Severity classifies an escalation.
type Severity string

// Escalation severities.
const (
	// SeverityWarning marks a recoverable condition.
	SeverityWarning Severity = "warning"

	// SeverityCritical marks a condition requiring immediate attention.
	SeverityCritical Severity = "critical"
)

// Urgency classifies a human review item.
type Urgency string

// Human review urgencies.
const (
	// UrgencyCritical demands immediate human attention.
	UrgencyCritical Urgency = "critical"

	// UrgencyHigh should be handled within the working day.
	UrgencyHigh Urgency = "high"

	// UrgencyNormal is routine review work.
	UrgencyNormal Urgency = "normal"
)

// EscalationReason tags why an escalation was raised.
type EscalationReason string

// Escalation reasons.
const (
	// ReasonBudgetThreshold fires when spend crosses a budget threshold.
	ReasonBudgetThreshold EscalationReason = "budget_threshold"

	// ReasonAgentLoop fires when a task exhausts its revision budget.
	ReasonAgentLoop EscalationReason = "agent_loop_detected"

	// ReasonCascadingFailure fires on repeated consecutive pipeline failures.
	ReasonCascadingFailure EscalationReason = "cascading_failure"
)

// HumanDecision is the operator's resolution of an escalated item.
type HumanDecision string

// Human feedback decisions.
const (
	// DecisionApprove resumes the task as-is.
	DecisionApprove HumanDecision = "approve"

	// DecisionOverrideApprove resumes the task overriding the director.
	DecisionOverrideApprove HumanDecision = "override_approve"

	// DecisionRevise fails the task and synthesizes a human-directed revision.
	DecisionRevise HumanDecision = "revise"

	// DecisionReject fails the task permanently.
	DecisionReject HumanDecision = "reject"

	// DecisionCancel cancels the work.
	DecisionCancel HumanDecision = "cancel"
)

// MaxRevisions is the number of revision passes a task may consume
// before the review engine escalates to a human.
const MaxRevisions = 3

// CascadeFailureThreshold is the number of consecutive failed tasks in
// one pipeline that triggers a cascading-failure escalation.
const CascadeFailureThreshold = 3

// DirectorName identifies the coordinator as task originator and reviewer.
const DirectorName = "director"

// MeasureSquad is the squad every routing decision must end with.
const MeasureSquad = "measure"
