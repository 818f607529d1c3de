package domain

import (
	"time"

	"github.com/hiveworks/hive/internal/constants"
)

// Goal is an operator-submitted objective. Goals are immutable once
// written except for metadata enrichment at creation time.
type Goal struct {
	// ID is the unique identifier for the goal.
	// Format: goal-YYYYMMDD-xxxxxxxx
	ID string `json:"id"`

	// Description is the natural-language objective text. It may contain
	// colons, markdown, and "---" sequences; storage must round-trip it
	// exactly.
	Description string `json:"description"`

	// Category classifies the goal and drives routing.
	Category constants.GoalCategory `json:"category"`

	// Priority is the goal's priority tier (P0..P3).
	Priority constants.Priority `json:"priority"`

	// Deadline is an optional completion deadline.
	Deadline *time.Time `json:"deadline,omitempty"`

	// CreatedAt is when the goal was created.
	CreatedAt time.Time `json:"created_at"`

	// Metadata stores enrichment data, including recent learnings
	// relevant to the goal's routed skills.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// GoalPlan is the ordered decomposition of a goal into phases. It is
// derived on demand and is not authoritative storage.
type GoalPlan struct {
	// GoalID links the plan to its goal.
	GoalID string `json:"goal_id"`

	// Phases is the ordered list of execution phases.
	Phases []PlanPhase `json:"phases"`

	// EstimatedTaskCount is the sum of phase skill counts.
	EstimatedTaskCount int `json:"estimated_task_count"`
}

// PlanPhase is one phase of a goal plan.
type PlanPhase struct {
	// Name is a short phase label (PLAN, CREATE, MEASURE, ...).
	Name string `json:"name"`

	// Description explains what the phase accomplishes.
	Description string `json:"description"`

	// Skills are the skills active in this phase.
	Skills []string `json:"skills"`

	// Parallel is true when the phase's skills may run concurrently.
	Parallel bool `json:"parallel"`

	// DependsOnPhase is the index of the prerequisite phase, or nil for
	// phase zero. Every non-initial phase depends on its immediate
	// predecessor.
	DependsOnPhase *int `json:"depends_on_phase"`
}

// RoutingDecision is the squad router's answer for a goal category.
type RoutingDecision struct {
	// Routes is the ordered list of squad routes. The last route always
	// targets the measure squad.
	Routes []SquadRoute `json:"routes"`

	// MeasureSquadFinal records the enforced invariant that the decision
	// ends with the measure squad.
	MeasureSquadFinal bool `json:"measure_squad_final"`
}

// SquadRoute is one squad's contribution to a routing decision.
type SquadRoute struct {
	// Squad is the routed squad name.
	Squad string `json:"squad"`

	// Skills is the non-empty set of skills the squad contributes.
	Skills []string `json:"skills"`

	// Reason explains why the squad was routed.
	Reason string `json:"reason"`
}
