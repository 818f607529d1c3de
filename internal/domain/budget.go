package domain

import "github.com/hiveworks/hive/internal/constants"

// BudgetState is the admission-control state derived from current
// spend. It is recomputed on demand from a live spend counter and is
// never persisted.
type BudgetState struct {
	// TotalBudget is the monthly budget in USD.
	TotalBudget float64 `json:"total_budget"`

	// Spent is the spend so far in USD.
	Spent float64 `json:"spent"`

	// PercentUsed is Spent/TotalBudget*100, or 0 for a zero budget.
	PercentUsed float64 `json:"percent_used"`

	// Level is the discretized budget level.
	Level constants.BudgetLevel `json:"level"`

	// AllowedPriorities lists the priority tiers still admitted.
	AllowedPriorities []constants.Priority `json:"allowed_priorities"`

	// ModelOverride forces a cheaper model tier when set (critical level
	// forces haiku). Empty means no override.
	ModelOverride constants.ModelTier `json:"model_override,omitempty"`
}

// Allows reports whether the given priority is admitted under this state.
func (s *BudgetState) Allows(p constants.Priority) bool {
	for _, allowed := range s.AllowedPriorities {
		if allowed == p {
			return true
		}
	}
	return false
}

// BudgetProvider returns the current budget state. The cost-tracking
// collaborator supplies it; the core never caches the result.
type BudgetProvider func() BudgetState

// Escalation is a structured signal that a human decision is required.
type Escalation struct {
	// Reason tags why the escalation was raised.
	Reason constants.EscalationReason `json:"reason"`

	// Severity is warning or critical.
	Severity constants.Severity `json:"severity"`

	// Message is the human-readable explanation.
	Message string `json:"message"`

	// Context carries structured detail (task id, skill, counts, ...).
	Context map[string]any `json:"context,omitempty"`
}
