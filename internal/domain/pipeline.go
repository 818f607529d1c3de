package domain

import (
	"time"

	"github.com/hiveworks/hive/internal/constants"
)

// PipelineDefinition is a compiled, schedulable pipeline. Definitions
// are compiled once per template (or per goal plan) and never mutated.
type PipelineDefinition struct {
	// ID is a stable identifier derived from the source name
	// (lower-cased, hyphenated).
	ID string `json:"id"`

	// Name is the human-readable pipeline name.
	Name string `json:"name"`

	// Steps is the ordered list of compiled steps.
	Steps []PipelineStep `json:"steps"`

	// Trigger is the original free-text trigger description.
	Trigger string `json:"trigger"`

	// Schedule is the parsed trigger: a cron expression, or "manual".
	Schedule string `json:"schedule"`

	// DefaultPriority applies when an instantiation supplies none.
	DefaultPriority constants.Priority `json:"default_priority"`
}

// PipelineStep is one compiled step of a pipeline definition.
type PipelineStep struct {
	// Name labels the step.
	Name string `json:"name"`

	// Skills holds one skill for a sequential step, several for a
	// parallel step, and none for a review step.
	Skills []string `json:"skills,omitempty"`

	// Parallel is true when Skills may run concurrently.
	Parallel bool `json:"parallel"`

	// Review marks a director-review step that materializes no tasks.
	Review bool `json:"review,omitempty"`
}

// PipelineRun is one instantiation of a pipeline definition.
type PipelineRun struct {
	// ID is the run identifier, prefixed by the definition id.
	ID string `json:"id"`

	// PipelineID is the owning definition id.
	PipelineID string `json:"pipeline_id"`

	// GoalID links the run to a goal when the pipeline was compiled from
	// a goal plan.
	GoalID string `json:"goal_id,omitempty"`

	// StartedAt is when the run was created.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is set when the run finishes.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Status is the run lifecycle state; starts pending.
	Status constants.PipelineRunStatus `json:"status"`

	// CurrentStepIndex is the zero-based active step; starts 0.
	CurrentStepIndex int `json:"current_step_index"`

	// TaskIDs accumulates every task materialized for this run.
	TaskIDs []string `json:"task_ids"`
}
