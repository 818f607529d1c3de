// Package task implements the hive task state machine. It enforces
// valid status transitions and maintains an audit trail of status
// changes. Every component that mutates task status goes through
// ValidateTransition or Transition.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, std lib
//   - MUST NOT import: internal/workspace, internal/ai, internal/cli
package task

import (
	"context"
	"fmt"
	"time"

	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/domain"
	hiveerrors "github.com/hiveworks/hive/internal/errors"
)

// ValidTransitions defines all allowed state transitions in the task
// lifecycle. Format: from_status -> []to_statuses.
//
// Representative paths:
//
//	pending → in_progress → completed → approved       (happy path)
//	completed → revision → in_progress → completed     (revision loop)
//	pending ↔ blocked, pending ↔ deferred              (budget gating)
//
// failed is reachable from every non-terminal status; approved, failed
// and cancelled are terminal and absent as keys.
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[constants.TaskStatus][]constants.TaskStatus{
	constants.TaskStatusPending: {
		constants.TaskStatusAssigned,
		constants.TaskStatusInProgress,
		constants.TaskStatusBlocked,
		constants.TaskStatusDeferred,
		constants.TaskStatusCancelled,
		constants.TaskStatusFailed,
	},
	constants.TaskStatusAssigned: {
		constants.TaskStatusInProgress,
		constants.TaskStatusBlocked,
		constants.TaskStatusDeferred,
		constants.TaskStatusCancelled,
		constants.TaskStatusFailed,
	},
	constants.TaskStatusInProgress: {
		constants.TaskStatusCompleted,
		constants.TaskStatusBlocked,
		constants.TaskStatusFailed,
		constants.TaskStatusCancelled,
	},
	constants.TaskStatusCompleted: {
		constants.TaskStatusInReview,
		constants.TaskStatusApproved,
		constants.TaskStatusRevision,
		constants.TaskStatusFailed,
	},
	constants.TaskStatusInReview: {
		constants.TaskStatusApproved,
		constants.TaskStatusRevision,
		constants.TaskStatusFailed,
		constants.TaskStatusCancelled,
	},
	constants.TaskStatusRevision: {
		constants.TaskStatusInProgress,
		constants.TaskStatusFailed,
		constants.TaskStatusCancelled,
	},
	constants.TaskStatusBlocked: {
		constants.TaskStatusPending,
		constants.TaskStatusCancelled,
		constants.TaskStatusFailed,
	},
	constants.TaskStatusDeferred: {
		constants.TaskStatusPending,
		constants.TaskStatusCancelled,
		constants.TaskStatusFailed,
	},
}

// terminalStatuses defines states where no further transitions are
// allowed. Terminal states are those NOT present as keys in
// ValidTransitions; duplicated here for O(1) lookup.
//
//nolint:gochecknoglobals // Read-only lookup table
var terminalStatuses = map[constants.TaskStatus]bool{
	constants.TaskStatusApproved:  true,
	constants.TaskStatusFailed:    true,
	constants.TaskStatusCancelled: true,
}

// IsTerminalStatus returns true for states where no further transitions
// are allowed. Terminal states: approved, failed, cancelled.
func IsTerminalStatus(status constants.TaskStatus) bool {
	return terminalStatuses[status]
}

// IsValidTransition checks if a transition from one status to another
// is allowed. Same-status transitions are treated as a no-op success.
func IsValidTransition(from, to constants.TaskStatus) bool {
	if from == to {
		return true
	}
	validTargets, exists := ValidTransitions[from]
	if !exists {
		return false // Terminal state or unknown state
	}
	for _, target := range validTargets {
		if target == to {
			return true
		}
	}
	return false
}

// ValidateTransition fails with an error identifying the task and the
// illegal (from, to) pair when the transition is not allowed. A
// same-status transition is a no-op success.
func ValidateTransition(taskID string, from, to constants.TaskStatus) error {
	if from == to {
		return nil
	}
	if IsTerminalStatus(from) {
		return fmt.Errorf("%w: task %s: %s is terminal, cannot move to %s",
			hiveerrors.ErrInvalidTransition, taskID, from, to)
	}
	if !IsValidTransition(from, to) {
		return fmt.Errorf("%w: task %s: %s -> %s",
			hiveerrors.ErrInvalidTransition, taskID, from, to)
	}
	return nil
}

// GetValidTargetStatuses returns all valid target statuses for a given
// status. Returns nil for terminal states or unknown statuses.
func GetValidTargetStatuses(from constants.TaskStatus) []constants.TaskStatus {
	targets, exists := ValidTransitions[from]
	if !exists {
		return nil
	}
	result := make([]constants.TaskStatus, len(targets))
	copy(result, targets)
	return result
}

// Transition validates and applies a state transition to the task. It
// records the transition in the task's history and updates timestamps.
// The caller is responsible for persisting the updated task.
//
// A same-status transition returns nil without touching the task.
func Transition(ctx context.Context, t *domain.Task, to constants.TaskStatus, reason string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if t == nil {
		return fmt.Errorf("%w: task is nil", hiveerrors.ErrInvalidTransition)
	}

	from := t.Status
	if from == to {
		return nil
	}
	if err := ValidateTransition(t.ID, from, to); err != nil {
		return err
	}

	now := time.Now().UTC()
	t.Transitions = append(t.Transitions, domain.Transition{
		FromStatus: from,
		ToStatus:   to,
		Timestamp:  now,
		Reason:     reason,
	})
	t.Status = to
	t.UpdatedAt = now

	return nil
}
