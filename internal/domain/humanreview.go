package domain

import (
	"time"

	"github.com/hiveworks/hive/internal/constants"
)

// HumanReviewItem is an escalated task awaiting operator resolution.
type HumanReviewItem struct {
	// ID is derived from the task id ("hr-<taskID>").
	ID string `json:"id"`

	// TaskID is the escalated task.
	TaskID string `json:"task_id"`

	// GoalID links the item to the owning goal, if any.
	GoalID string `json:"goal_id,omitempty"`

	// PipelineID links the item to the owning pipeline run, if any.
	PipelineID string `json:"pipeline_id,omitempty"`

	// Skill is the task's assigned skill.
	Skill string `json:"skill"`

	// Urgency is derived from the escalation severity.
	Urgency constants.Urgency `json:"urgency"`

	// CreatedAt is when the item was raised.
	CreatedAt time.Time `json:"created_at"`

	// Status is the item lifecycle state.
	Status constants.ReviewItemStatus `json:"status"`

	// Reason is the escalation reason, preserved verbatim.
	Reason constants.EscalationReason `json:"reason"`

	// Message is the escalation message, preserved verbatim.
	Message string `json:"message"`

	// Context is the escalation context, preserved verbatim.
	Context map[string]any `json:"context,omitempty"`

	// Feedback is nil until the item is resolved; it is settable once.
	Feedback *HumanFeedback `json:"feedback,omitempty"`

	// ResolvedAt is set when the item resolves.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// HumanFeedback is the operator's resolution of a review item.
type HumanFeedback struct {
	// Decision is the chosen resolution.
	Decision constants.HumanDecision `json:"decision"`

	// Notes carries optional free-text commentary.
	Notes string `json:"notes,omitempty"`

	// RevisionInstructions is required when Decision is revise.
	RevisionInstructions string `json:"revision_instructions,omitempty"`

	// SubmittedAt is when the feedback was recorded.
	SubmittedAt time.Time `json:"submitted_at"`
}

// ReviewFilter narrows pending human review queries. Zero values match
// everything.
type ReviewFilter struct {
	// Urgency filters by item urgency when non-empty.
	Urgency constants.Urgency

	// Skill filters by task skill when non-empty.
	Skill string

	// GoalID filters by owning goal when non-empty.
	GoalID string
}

// ReviewStats aggregates the human review queue.
type ReviewStats struct {
	// ByStatus counts items per lifecycle status.
	ByStatus map[constants.ReviewItemStatus]int `json:"by_status"`

	// ByUrgency counts items per urgency.
	ByUrgency map[constants.Urgency]int `json:"by_urgency"`

	// AvgResolution is the average time from creation to resolution over
	// resolved items, nil when nothing has resolved yet.
	AvgResolution *time.Duration `json:"avg_resolution,omitempty"`
}
