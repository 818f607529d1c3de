package constants

// TaskStatus represents the state of a task in the hive state machine.
// Status values use snake_case for JSON serialization compatibility.
type TaskStatus string

// Task status constants define the valid states a task can be in.
// The legal transitions between them live in internal/task.
const (
	// TaskStatusPending indicates a task is queued but not yet picked up.
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusAssigned indicates a task has been handed to a skill
	// but execution has not started.
	TaskStatusAssigned TaskStatus = "assigned"

	// TaskStatusInProgress indicates the skill is actively executing the task.
	TaskStatusInProgress TaskStatus = "in_progress"

	// TaskStatusCompleted indicates the skill finished and produced output,
	// which has not yet been judged.
	TaskStatusCompleted TaskStatus = "completed"

	// TaskStatusInReview indicates the director is judging the task output.
	TaskStatusInReview TaskStatus = "in_review"

	// TaskStatusRevision indicates the output was sent back for rework.
	TaskStatusRevision TaskStatus = "revision"

	// TaskStatusBlocked indicates the task is held, typically by budget
	// admission control or a skipped dependency.
	TaskStatusBlocked TaskStatus = "blocked"

	// TaskStatusDeferred indicates the task was intentionally postponed.
	TaskStatusDeferred TaskStatus = "deferred"

	// TaskStatusApproved indicates the output passed review. Terminal.
	TaskStatusApproved TaskStatus = "approved"

	// TaskStatusFailed indicates the task failed permanently. Terminal.
	TaskStatusFailed TaskStatus = "failed"

	// TaskStatusCancelled indicates the task was cancelled. Terminal.
	TaskStatusCancelled TaskStatus = "cancelled"
)

// AllTaskStatuses lists every known task status.
//
//nolint:gochecknoglobals // Read-only lookup table
var AllTaskStatuses = []TaskStatus{
	TaskStatusPending,
	TaskStatusAssigned,
	TaskStatusInProgress,
	TaskStatusCompleted,
	TaskStatusInReview,
	TaskStatusRevision,
	TaskStatusBlocked,
	TaskStatusDeferred,
	TaskStatusApproved,
	TaskStatusFailed,
	TaskStatusCancelled,
}

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusAssigned, TaskStatusInProgress,
		TaskStatusCompleted, TaskStatusInReview, TaskStatusRevision,
		TaskStatusBlocked, TaskStatusDeferred, TaskStatusApproved,
		TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// ReviewItemStatus represents the state of a human review item.
type ReviewItemStatus string

// Human review item lifecycle states.
const (
	// ReviewItemPending indicates the item awaits human attention.
	ReviewItemPending ReviewItemStatus = "pending"

	// ReviewItemInReview indicates a human has picked up the item.
	ReviewItemInReview ReviewItemStatus = "in_review"

	// ReviewItemResolved indicates feedback was submitted. Terminal.
	ReviewItemResolved ReviewItemStatus = "resolved"

	// ReviewItemExpired indicates the item aged out unresolved. Terminal.
	ReviewItemExpired ReviewItemStatus = "expired"
)

// PipelineRunStatus represents the state of a pipeline run.
type PipelineRunStatus string

// Pipeline run lifecycle states.
const (
	// RunStatusPending indicates the run was created but no step has finished.
	RunStatusPending PipelineRunStatus = "pending"

	// RunStatusRunning indicates at least one step is in flight.
	RunStatusRunning PipelineRunStatus = "running"

	// RunStatusCompleted indicates every step finished.
	RunStatusCompleted PipelineRunStatus = "completed"

	// RunStatusFailed indicates the run stopped on a failed step.
	RunStatusFailed PipelineRunStatus = "failed"
)
