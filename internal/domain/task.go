// Package domain provides shared domain types for the hive orchestration
// system. These types are used across all internal packages to ensure
// consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case.
package domain

import (
	"time"

	"github.com/hiveworks/hive/internal/constants"
)

// Task is a single unit of skill work in the hive system. Tasks are
// materialized by the pipeline factory or synthesized by the review
// engine, and mutated only through state-machine-checked transitions.
//
// Example JSON representation:
//
//	{
//	    "id": "task-20260830-4f1a2b3c",
//	    "from": "director",
//	    "to": "page-cro",
//	    "priority": "P1",
//	    "status": "pending",
//	    "revision_count": 0,
//	    "goal": "Raise trial signup conversion on the pricing page",
//	    "next": {"type": "pipeline_continue", "pipeline_id": "conversion-sprint-9a8b7c6d"},
//	    ...
//	}
type Task struct {
	// ID is the unique identifier for the task.
	// Format: task-YYYYMMDD-xxxxxxxx
	ID string `json:"id"`

	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the task was last modified.
	UpdatedAt time.Time `json:"updated_at"`

	// From names the originator, normally "director".
	From string `json:"from"`

	// To names the skill assigned to execute the task.
	To string `json:"to"`

	// Priority is the task's priority tier (P0..P3).
	Priority constants.Priority `json:"priority"`

	// Deadline is an optional completion deadline.
	Deadline *time.Time `json:"deadline,omitempty"`

	// Status is the current state in the task lifecycle.
	Status constants.TaskStatus `json:"status"`

	// RevisionCount is the number of revision passes consumed so far.
	// It only ever increases.
	RevisionCount int `json:"revision_count"`

	// GoalID links the task to its owning goal, if any.
	GoalID string `json:"goal_id,omitempty"`

	// PipelineID links the task to its owning pipeline run, if any.
	PipelineID string `json:"pipeline_id,omitempty"`

	// Goal is the goal text handed to the skill.
	Goal string `json:"goal"`

	// Inputs are the ordered input references for the skill.
	Inputs []TaskInput `json:"inputs"`

	// Requirements is free-text requirements for the output.
	Requirements string `json:"requirements,omitempty"`

	// Output describes where and how the skill must write its result.
	Output TaskOutput `json:"output"`

	// Next describes what happens after the output is approved.
	Next TaskNext `json:"next"`

	// Tags carry free-form labels ("revision", "human-requested", ...).
	Tags []string `json:"tags,omitempty"`

	// Metadata stores arbitrary key-value data associated with the task.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Transitions is the audit trail of every status change.
	Transitions []Transition `json:"transitions,omitempty"`
}

// TaskInput is a single ordered input reference for a task.
type TaskInput struct {
	// Path locates the input within the workspace.
	Path string `json:"path"`

	// Description tells the skill what the input is for.
	Description string `json:"description"`
}

// TaskOutput describes the expected output artifact of a task.
type TaskOutput struct {
	// Path is the workspace-relative location the skill must write to.
	Path string `json:"path"`

	// Format is the expected output format (normally "markdown").
	Format string `json:"format"`
}

// TaskNext is a closed tagged variant describing the post-approval
// directive for a task. Type selects the variant; PipelineID is only
// meaningful for pipeline_continue.
type TaskNext struct {
	// Type is one of agent, pipeline_continue, director_review, complete.
	Type constants.NextType `json:"type"`

	// PipelineID carries the pipeline run to advance when Type is
	// pipeline_continue.
	PipelineID string `json:"pipeline_id,omitempty"`

	// Skill carries the downstream skill when Type is agent.
	Skill string `json:"skill,omitempty"`
}

// Transition records one status change on a task.
type Transition struct {
	// FromStatus is the status before the change.
	FromStatus constants.TaskStatus `json:"from_status"`

	// ToStatus is the status after the change.
	ToStatus constants.TaskStatus `json:"to_status"`

	// Timestamp is when the change was applied.
	Timestamp time.Time `json:"timestamp"`

	// Reason is an optional explanation for the change.
	Reason string `json:"reason,omitempty"`
}

// HasTag returns true if the task carries the given tag.
func (t *Task) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the task, safe to mutate independently.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	out := *t
	out.Inputs = append([]TaskInput(nil), t.Inputs...)
	out.Tags = append([]string(nil), t.Tags...)
	out.Transitions = append([]Transition(nil), t.Transitions...)
	if t.Deadline != nil {
		d := *t.Deadline
		out.Deadline = &d
	}
	if t.Metadata != nil {
		out.Metadata = make(map[string]any, len(t.Metadata))
		for k, v := range t.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}
