// Package agent executes skill tasks against the model client. A
// Runner turns a task into one model call: skill persona as the system
// prompt, goal plus requirements plus gathered inputs as the user
// message, model tier picked from priority and budget state.
//
// Import rules:
//   - CAN import: internal/budget, internal/catalog, internal/constants,
//     internal/domain, internal/errors, internal/workspace
//   - MUST NOT import: internal/director, internal/cli
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hiveworks/hive/internal/catalog"
	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/domain"
	"github.com/hiveworks/hive/internal/errors"
	"github.com/hiveworks/hive/internal/workspace"
)

const executionMaxTokens = 4096

// Runner executes tasks through the model client and reports the call
// cost at the tier's token rates.
type Runner struct {
	client   domain.ModelClient
	store    *workspace.FileStore
	cat      catalog.Catalog
	budgetFn domain.BudgetProvider
	log      zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// New creates a Runner. All collaborators are required.
func New(client domain.ModelClient, store *workspace.FileStore, cat catalog.Catalog, budgetFn domain.BudgetProvider, opts ...Option) (*Runner, error) {
	if client == nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "agent runner requires a model client")
	}
	if store == nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "agent runner requires a workspace store")
	}
	if cat == nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "agent runner requires a catalog")
	}
	if budgetFn == nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "agent runner requires a budget provider")
	}

	r := &Runner{
		client:   client,
		store:    store,
		cat:      cat,
		budgetFn: budgetFn,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// ExecuteTask runs one task's skill work. The returned cost is the
// USD cost of the model call, zero when the call never happened.
func (r *Runner) ExecuteTask(ctx context.Context, t *domain.Task) (string, float64, error) {
	skill, ok := r.cat.Skill(t.To)
	if !ok {
		return "", 0, errors.Wrapf(errors.ErrSkillNotFound, "task %s assigned to %q", t.ID, t.To)
	}

	state := r.budgetFn()
	tier := tierFor(t.Priority)
	if state.ModelOverride != "" {
		tier = state.ModelOverride
	}

	resp, err := r.client.CreateMessage(ctx, domain.MessageRequest{
		Tier:      tier,
		System:    systemPrompt(skill),
		Prompt:    r.userPrompt(ctx, t),
		MaxTokens: executionMaxTokens,
	})
	if err != nil {
		return "", 0, errors.Wrapf(err, "executing task %s with skill %s", t.ID, t.To)
	}

	cost := constants.TierRates[tier].Cost(resp.InputTokens, resp.OutputTokens)
	r.log.Debug().
		Str("task_id", t.ID).
		Str("skill", t.To).
		Str("tier", string(tier)).
		Float64("cost", cost).
		Msg("task executed")
	return resp.Content, cost, nil
}

// tierFor maps a priority to the default execution tier. Budget state
// may still override the result downward.
func tierFor(p constants.Priority) constants.ModelTier {
	switch p {
	case constants.PriorityP0:
		return constants.TierOpus
	case constants.PriorityP3:
		return constants.TierHaiku
	default:
		return constants.TierSonnet
	}
}

func systemPrompt(skill domain.Skill) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the %q skill of a marketing operations team.\n", skill.Name)
	fmt.Fprintf(&b, "Specialty: %s\n", skill.Description)
	if skill.Squad != "" {
		fmt.Fprintf(&b, "Squad: %s\n", skill.Squad)
	}
	b.WriteString("Produce the requested deliverable as well-structured markdown with headings and concrete, actionable recommendations.")
	return b.String()
}

// userPrompt assembles the task message. Unreadable inputs are noted
// inline rather than failing the run, so a missing upstream document
// degrades the context instead of blocking execution.
func (r *Runner) userPrompt(ctx context.Context, t *domain.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Goal: %s\n\n", t.Goal)
	if t.Requirements != "" {
		fmt.Fprintf(&b, "Requirements:\n%s\n\n", t.Requirements)
	}

	for _, in := range t.Inputs {
		content, err := r.store.ReadOutput(ctx, in.Path)
		if err != nil {
			r.log.Warn().Err(err).Str("task_id", t.ID).Str("input", in.Path).Msg("input unavailable")
			fmt.Fprintf(&b, "Input (%s): unavailable\n\n", in.Description)
			continue
		}
		fmt.Fprintf(&b, "Input (%s):\n%s\n\n", in.Description, content)
	}

	fmt.Fprintf(&b, "Write the %s deliverable now.", t.To)
	return b.String()
}
