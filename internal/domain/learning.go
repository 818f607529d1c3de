package domain

import "time"

// LearningKind classifies a learning journal entry.
type LearningKind string

// Learning kinds.
const (
	// LearningSuccess records an approved outcome worth repeating.
	LearningSuccess LearningKind = "success"

	// LearningFailure records a failed outcome worth avoiding.
	LearningFailure LearningKind = "failure"

	// LearningCancellation records cancelled work.
	LearningCancellation LearningKind = "cancellation"
)

// Learning is one append-only journal entry. Recent learnings relevant
// to a goal's routed skills are embedded into the goal's metadata at
// creation time.
type Learning struct {
	// Kind classifies the entry.
	Kind LearningKind `json:"kind"`

	// Skill is the skill the learning concerns.
	Skill string `json:"skill"`

	// TaskID is the originating task, if any.
	TaskID string `json:"task_id,omitempty"`

	// GoalID is the originating goal, if any.
	GoalID string `json:"goal_id,omitempty"`

	// Summary is the one-line lesson.
	Summary string `json:"summary"`

	// CreatedAt is when the entry was appended.
	CreatedAt time.Time `json:"created_at"`
}
