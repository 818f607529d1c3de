package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/domain"
)

func TestComputeBudgetState_Levels(t *testing.T) {
	e := NewEngine(1000)

	tests := []struct {
		name       string
		spent      float64
		wantLevel  constants.BudgetLevel
		wantAllow  []constants.Priority
		wantTier   constants.ModelTier
	}{
		{"fresh budget", 0, constants.BudgetNormal,
			[]constants.Priority{"P0", "P1", "P2", "P3"}, ""},
		{"one below warning", 799, constants.BudgetNormal,
			[]constants.Priority{"P0", "P1", "P2", "P3"}, ""},
		{"exactly warning", 800, constants.BudgetWarning,
			[]constants.Priority{"P0", "P1", "P2"}, ""},
		{"one below throttle", 899, constants.BudgetWarning,
			[]constants.Priority{"P0", "P1", "P2"}, ""},
		{"exactly throttle", 900, constants.BudgetThrottle,
			[]constants.Priority{"P0", "P1"}, ""},
		{"one below critical", 949, constants.BudgetThrottle,
			[]constants.Priority{"P0", "P1"}, ""},
		{"exactly critical", 950, constants.BudgetCritical,
			[]constants.Priority{"P0"}, constants.TierHaiku},
		{"one below exhausted", 999, constants.BudgetCritical,
			[]constants.Priority{"P0"}, constants.TierHaiku},
		{"exactly exhausted", 1000, constants.BudgetExhausted,
			[]constants.Priority{}, ""},
		{"overspent", 1500, constants.BudgetExhausted,
			[]constants.Priority{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := e.ComputeBudgetState(tt.spent)
			assert.Equal(t, tt.wantLevel, state.Level)
			assert.Equal(t, tt.wantAllow, state.AllowedPriorities)
			assert.Equal(t, tt.wantTier, state.ModelOverride)
		})
	}
}

func TestComputeBudgetState_Monotonic(t *testing.T) {
	e := NewEngine(1000)

	rank := map[constants.BudgetLevel]int{
		constants.BudgetNormal:    0,
		constants.BudgetWarning:   1,
		constants.BudgetThrottle:  2,
		constants.BudgetCritical:  3,
		constants.BudgetExhausted: 4,
	}

	prev := -1
	for spent := 0.0; spent <= 1200; spent += 1 {
		state := e.ComputeBudgetState(spent)
		cur, ok := rank[state.Level]
		require.True(t, ok)
		require.GreaterOrEqual(t, cur, prev, "level regressed at spent=%.0f", spent)
		prev = cur
	}
}

func TestComputeBudgetState_ZeroBudget(t *testing.T) {
	e := NewEngine(0)
	state := e.ComputeBudgetState(500)
	assert.Zero(t, state.PercentUsed)
	assert.Equal(t, constants.BudgetNormal, state.Level)
}

func TestShouldExecuteTask(t *testing.T) {
	e := NewEngine(1000)
	state := e.ComputeBudgetState(950)

	require.Equal(t, constants.BudgetCritical, state.Level)
	assert.Equal(t, constants.TierHaiku, state.ModelOverride)

	p0 := &domain.Task{ID: "t", Priority: constants.PriorityP0}
	p1 := &domain.Task{ID: "t", Priority: constants.PriorityP1}

	assert.True(t, ShouldExecuteTask(p0, state))
	assert.False(t, ShouldExecuteTask(p1, state))
}

func TestCheckBudgetEscalation(t *testing.T) {
	e := NewEngine(1000)

	assert.Nil(t, CheckBudgetEscalation(e.ComputeBudgetState(100)))

	warn := CheckBudgetEscalation(e.ComputeBudgetState(850))
	require.NotNil(t, warn)
	assert.Equal(t, constants.SeverityWarning, warn.Severity)
	assert.Equal(t, constants.ReasonBudgetThreshold, warn.Reason)
	assert.Contains(t, warn.Message, "85.0%")
	assert.Contains(t, warn.Message, "P0, P1, P2")

	crit := CheckBudgetEscalation(e.ComputeBudgetState(970))
	require.NotNil(t, crit)
	assert.Equal(t, constants.SeverityCritical, crit.Severity)

	out := CheckBudgetEscalation(e.ComputeBudgetState(1100))
	require.NotNil(t, out)
	assert.Equal(t, constants.SeverityCritical, out.Severity)
	assert.Contains(t, out.Message, "NONE")
}

func TestCheckRevisionEscalation(t *testing.T) {
	tk := &domain.Task{ID: "task-9", To: "copywriting"}

	for count := 0; count < constants.MaxRevisions; count++ {
		tk.RevisionCount = count
		assert.Nil(t, CheckRevisionEscalation(tk), "count=%d", count)
	}

	tk.RevisionCount = constants.MaxRevisions
	esc := CheckRevisionEscalation(tk)
	require.NotNil(t, esc)
	assert.Equal(t, constants.ReasonAgentLoop, esc.Reason)
	assert.Equal(t, constants.SeverityWarning, esc.Severity)
	assert.Equal(t, "task-9", esc.Context["task_id"])
	assert.Equal(t, "copywriting", esc.Context["skill"])
}

func TestCheckCascadingFailure(t *testing.T) {
	assert.Nil(t, CheckCascadingFailure(0, "pipe-1"))
	assert.Nil(t, CheckCascadingFailure(2, "pipe-1"))

	esc := CheckCascadingFailure(3, "pipe-1")
	require.NotNil(t, esc)
	assert.Equal(t, constants.ReasonCascadingFailure, esc.Reason)
	assert.Equal(t, constants.SeverityCritical, esc.Severity)
	assert.Contains(t, esc.Message, "pipe-1")
}
