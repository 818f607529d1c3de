package domain

import (
	"time"

	"github.com/hiveworks/hive/internal/constants"
)

// Review is one immutable review pass over a task's output.
type Review struct {
	// ID is taskID plus the zero-based sequence index ("task-x/0").
	ID string `json:"id"`

	// TaskID is the reviewed task.
	TaskID string `json:"task_id"`

	// Sequence is the count of prior reviews for the task.
	Sequence int `json:"sequence"`

	// CreatedAt is when the review was produced.
	CreatedAt time.Time `json:"created_at"`

	// Reviewer is always "director".
	Reviewer string `json:"reviewer"`

	// Author is the skill whose output was reviewed.
	Author string `json:"author"`

	// Verdict is the review judgment (APPROVE/REVISE/REJECT).
	Verdict constants.Verdict `json:"verdict"`

	// Findings are the individual issues discovered.
	Findings []Finding `json:"findings,omitempty"`

	// RevisionRequests are the required changes when Verdict is REVISE.
	RevisionRequests []string `json:"revision_requests,omitempty"`

	// Summary is a one-line description of the outcome.
	Summary string `json:"summary"`
}

// FindingSeverity grades a single review finding.
type FindingSeverity string

// Finding severities in decreasing order of impact.
const (
	// SeverityFindingCritical blocks approval outright.
	SeverityFindingCritical FindingSeverity = "critical"

	// SeverityFindingMajor forces a revision request.
	SeverityFindingMajor FindingSeverity = "major"

	// SeverityFindingMinor is noted but does not gate the verdict.
	SeverityFindingMinor FindingSeverity = "minor"

	// SeverityFindingSuggestion is purely advisory.
	SeverityFindingSuggestion FindingSeverity = "suggestion"
)

// Valid returns true if the severity is one of the accepted grades.
// Model responses carrying any other severity are silently discarded.
func (s FindingSeverity) Valid() bool {
	switch s {
	case SeverityFindingCritical, SeverityFindingMajor,
		SeverityFindingMinor, SeverityFindingSuggestion:
		return true
	default:
		return false
	}
}

// Finding is one issue discovered during review.
type Finding struct {
	// Section locates the issue within the output.
	Section string `json:"section"`

	// Severity grades the issue.
	Severity FindingSeverity `json:"severity"`

	// Description explains the issue.
	Description string `json:"description"`
}

// Decision is the review engine's complete, side-effect-free output for
// one task review pass. The director applies it afterwards.
type Decision struct {
	// Verdict is the judgment of the output.
	Verdict constants.Verdict `json:"verdict"`

	// Action is the director-level consequence.
	Action constants.Action `json:"action"`

	// Findings are the merged review findings.
	Findings []Finding `json:"findings,omitempty"`

	// RevisionRequests are the required changes on REVISE.
	RevisionRequests []string `json:"revision_requests,omitempty"`

	// NextTasks are synthesized follow-up tasks (revision tasks).
	NextTasks []*Task `json:"next_tasks,omitempty"`

	// Escalation is non-nil when the decision requires a human.
	Escalation *Escalation `json:"escalation,omitempty"`

	// Learning is non-nil when the decision should append a learning.
	Learning *Learning `json:"learning,omitempty"`

	// Summary is a one-line description of the decision.
	Summary string `json:"summary"`
}

// QualityScore is the per-dimension quality assessment of one output.
type QualityScore struct {
	// TaskID is the scored task.
	TaskID string `json:"task_id"`

	// Skill is the author skill whose criteria were applied.
	Skill string `json:"skill"`

	// Dimensions are the individual dimension scores.
	Dimensions []DimensionScore `json:"dimensions"`

	// OverallScore is the weighted average, clamped to [0,10].
	OverallScore float64 `json:"overall_score"`

	// ScoredAt is when the score was computed.
	ScoredAt time.Time `json:"scored_at"`

	// ScoredBy records the scoring method: "structural" or "semantic".
	ScoredBy string `json:"scored_by"`
}

// DimensionScore is one dimension's score within a QualityScore.
type DimensionScore struct {
	// Tag identifies the dimension.
	Tag string `json:"tag"`

	// Score is the dimension score, clamped to [0,10].
	Score float64 `json:"score"`

	// Weight is the dimension's share of the overall score.
	Weight float64 `json:"weight"`

	// Rationale explains the score.
	Rationale string `json:"rationale,omitempty"`
}
