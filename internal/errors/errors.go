// Package errors provides centralized error handling for hive.
//
// This package defines sentinel errors used for programmatic error
// categorization throughout the application. All error types can be
// checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
var (
	// ErrCatalogInvalid indicates the skill catalog failed validation
	// (missing foundation skill, dangling references, empty squads).
	ErrCatalogInvalid = errors.New("catalog validation failed")

	// ErrSkillNotFound indicates a referenced skill is not registered.
	ErrSkillNotFound = errors.New("skill not found")

	// ErrSquadNotFound indicates a referenced squad is not registered.
	ErrSquadNotFound = errors.New("squad not found")

	// ErrTemplateNotFound indicates an unknown pipeline template name.
	ErrTemplateNotFound = errors.New("pipeline template not found")

	// ErrUnknownCategory indicates a goal category outside the closed enum.
	ErrUnknownCategory = errors.New("unknown goal category")

	// ErrInvalidPriority indicates a priority outside P0..P3.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrInvalidTransition indicates an illegal task status transition.
	ErrInvalidTransition = errors.New("invalid task transition")

	// ErrRouteMissingMeasure indicates a routing decision whose last
	// route does not target the measure squad.
	ErrRouteMissingMeasure = errors.New("routing decision must end with the measure squad")

	// ErrBudgetBlocked indicates a task was refused by budget admission
	// control. Callers must check ShouldExecuteTask before dispatch.
	ErrBudgetBlocked = errors.New("task blocked by budget")

	// ErrReviewAlreadyResolved indicates feedback was submitted to a
	// human review item that is already resolved or expired.
	ErrReviewAlreadyResolved = errors.New("human review item already resolved")

	// ErrRevisionInstructionsRequired indicates a "revise" human decision
	// arrived without revision instructions.
	ErrRevisionInstructionsRequired = errors.New("revision instructions required")

	// ErrReviewItemNotFound indicates an unknown human review item id.
	ErrReviewItemNotFound = errors.New("human review item not found")

	// ErrTaskNotFound indicates a task id with no stored document.
	ErrTaskNotFound = errors.New("task not found")

	// ErrGoalNotFound indicates a goal id with no stored document.
	ErrGoalNotFound = errors.New("goal not found")

	// ErrOutputNotFound indicates a task output that has not been written.
	ErrOutputNotFound = errors.New("task output not found")

	// ErrStoreCorrupted indicates a state file that could not be decoded.
	ErrStoreCorrupted = errors.New("store file corrupted")

	// ErrLockTimeout indicates a file lock could not be acquired within
	// the timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrEmptyValue indicates a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrInvalidID indicates an identifier unsafe to use as a path
	// segment in the workspace store.
	ErrInvalidID = errors.New("invalid identifier")

	// ErrValueOutOfRange indicates a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrConfigNil indicates a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalid indicates an invalid configuration value.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrModelInvocation indicates the model client call failed. Review
	// and scoring paths catch this and degrade; it never escapes them.
	ErrModelInvocation = errors.New("model invocation failed")

	// ErrModelResponseMalformed indicates the model returned a payload
	// that could not be parsed as the expected JSON shape.
	ErrModelResponseMalformed = errors.New("model response malformed")

	// ErrQueueStopped indicates an enqueue on a stopped queue.
	ErrQueueStopped = errors.New("queue is stopped")

	// ErrTaskInFlight indicates a task was re-submitted while a prior
	// delivery is still being processed.
	ErrTaskInFlight = errors.New("task already in flight")

	// ErrScheduleInvalid indicates a cron schedule that failed to parse.
	ErrScheduleInvalid = errors.New("invalid schedule")
)
