package review

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/domain"
	"github.com/hiveworks/hive/internal/quality"
)

const reviewMaxTokens = 1024

// EvaluateTaskSemantic judges output structurally, then refines the
// findings with a model pass when one is possible. It short-circuits
// with the structural decision and zero cost when the structural pass
// found a critical issue or no client is configured, and degrades the
// same way on any model or parse failure. The returned cost is the USD
// cost of the model call at the resolved tier.
func (e *Engine) EvaluateTaskSemantic(ctx context.Context, task *domain.Task, output string, existing []domain.Review, budget *domain.BudgetState) (*domain.Decision, float64) {
	structural := structuralFindings(output)
	if e.client == nil || hasCritical(structural) {
		return e.decide(task, structural, existing), 0
	}

	tier := resolveTier(budget)
	resp, err := e.client.CreateMessage(ctx, domain.MessageRequest{
		Tier:      tier,
		System:    reviewSystemPrompt,
		Prompt:    reviewPrompt(task, output),
		MaxTokens: reviewMaxTokens,
	})
	if err != nil {
		e.log.Warn().Err(err).Str("task_id", task.ID).
			Msg("semantic review failed, using structural findings")
		return e.decide(task, structural, existing), 0
	}

	semantic, err := parseFindings(resp.Content)
	if err != nil {
		e.log.Warn().Err(err).Str("task_id", task.ID).
			Msg("semantic review response unparseable, using structural findings")
		return e.decide(task, structural, existing), 0
	}

	merged := mergeFindings(structural, semantic)
	cost := constants.TierRates[tier].Cost(resp.InputTokens, resp.OutputTokens)
	return e.decide(task, merged, existing), cost
}

// EvaluateTaskWithQuality derives the verdict and findings from the
// quality scorer using the skill's criteria. Without a scorer it falls
// back to EvaluateTaskSemantic. Structural criticals still
// short-circuit before any model call.
func (e *Engine) EvaluateTaskWithQuality(ctx context.Context, task *domain.Task, output string, existing []domain.Review, criteria domain.QualityCriteria, budget *domain.BudgetState) (*domain.Decision, float64) {
	if e.scorer == nil {
		return e.EvaluateTaskSemantic(ctx, task, output, existing, budget)
	}

	structural := structuralFindings(output)
	if hasCritical(structural) {
		return e.decide(task, structural, existing), 0
	}

	// The criteria thresholds, not the finding severities, carry the
	// verdict on this path.
	score, cost := e.scorer.ScoreSemantic(ctx, task, output, criteria, resolveTier(budget))
	verdict := quality.ScoreToVerdict(score, criteria)
	findings := mergeFindings(structural, quality.ScoreToFindings(score))
	return e.buildDecision(task, verdict, findings, existing), cost
}

// resolveTier picks the review model tier: the budget override when
// one is in force, otherwise the most capable tier.
func resolveTier(budget *domain.BudgetState) constants.ModelTier {
	if budget != nil && budget.ModelOverride != "" {
		return budget.ModelOverride
	}
	return constants.TierOpus
}

// rawFinding mirrors the JSON shape the review prompt requests.
type rawFinding struct {
	Section     string `json:"section"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// parseFindings decodes a model response into findings. Entries with a
// severity outside the whitelist are silently discarded.
func parseFindings(content string) ([]domain.Finding, error) {
	var raw []rawFinding
	if err := json.Unmarshal([]byte(quality.StripCodeFence(content)), &raw); err != nil {
		return nil, err
	}
	findings := make([]domain.Finding, 0, len(raw))
	for _, r := range raw {
		severity := domain.FindingSeverity(strings.ToLower(r.Severity))
		if !severity.Valid() {
			continue
		}
		findings = append(findings, domain.Finding{
			Section:     r.Section,
			Severity:    severity,
			Description: r.Description,
		})
	}
	return findings, nil
}

// mergeFindings combines structural and semantic findings, dropping
// semantic duplicates of a (section, description) pair the structural
// pass already produced.
func mergeFindings(structural, semantic []domain.Finding) []domain.Finding {
	merged := append([]domain.Finding(nil), structural...)
	seen := make(map[string]struct{}, len(structural))
	for _, f := range structural {
		seen[findingKey(f)] = struct{}{}
	}
	for _, f := range semantic {
		if _, dup := seen[findingKey(f)]; dup {
			continue
		}
		seen[findingKey(f)] = struct{}{}
		merged = append(merged, f)
	}
	return merged
}

func findingKey(f domain.Finding) string {
	return strings.ToLower(f.Section) + "\x00" + strings.ToLower(f.Description)
}

func hasCritical(findings []domain.Finding) bool {
	for _, f := range findings {
		if f.Severity == domain.SeverityFindingCritical {
			return true
		}
	}
	return false
}

func reviewPrompt(task *domain.Task, output string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review this %s deliverable for the goal: %s\n\n", task.To, task.Goal)
	b.WriteString("Respond with a JSON array of findings, each {\"section\": \"...\", \"severity\": \"critical|major|minor|suggestion\", \"description\": \"...\"}. An empty array means the deliverable is sound. No prose outside the JSON.\n\n")
	b.WriteString("Deliverable:\n")
	b.WriteString(output)
	return b.String()
}

const reviewSystemPrompt = "You are a rigorous marketing director reviewing a specialist's deliverable. You respond only with the requested JSON."
