// Package quality scores task outputs against a skill's weighted
// quality dimensions. Scoring is structural (text heuristics) by
// default and semantic (model-judged) when a model client is
// configured; semantic failures always degrade to the structural
// result at zero cost.
package quality

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hiveworks/hive/internal/clock"
	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/domain"
)

// Scoring method labels recorded on QualityScore.ScoredBy.
const (
	ScoredStructural = "structural"
	ScoredSemantic   = "semantic"
)

const semanticMaxTokens = 1024

// Scorer computes per-dimension quality scores for task outputs.
type Scorer struct {
	client domain.ModelClient
	clk    clock.Clock
	log    zerolog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithModelClient enables semantic scoring through the given client.
func WithModelClient(client domain.ModelClient) Option {
	return func(s *Scorer) { s.client = client }
}

// WithClock overrides the clock used for score timestamps.
func WithClock(clk clock.Clock) Option {
	return func(s *Scorer) { s.clk = clk }
}

// WithLogger sets the scorer's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Scorer) { s.log = log }
}

// NewScorer creates a Scorer. Without options it scores structurally
// only, with the system clock and no logging.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		clk: clock.System{},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScoreStructural scores output against criteria using text heuristics
// alone. It never fails and attributes no cost.
func (s *Scorer) ScoreStructural(task *domain.Task, output string, criteria domain.QualityCriteria) *domain.QualityScore {
	score := &domain.QualityScore{
		TaskID:   task.ID,
		Skill:    task.To,
		ScoredAt: s.clk.Now().UTC(),
		ScoredBy: ScoredStructural,
	}
	for _, dim := range criteria.Dimensions {
		value := structuralScore(dim.Tag, output)
		score.Dimensions = append(score.Dimensions, domain.DimensionScore{
			Tag:    dim.Tag,
			Score:  value,
			Weight: dim.Weight,
		})
	}
	score.OverallScore = overall(score.Dimensions)
	return score
}

// ScoreSemantic scores output by asking the model to judge each
// dimension. On any client or parse failure it returns the structural
// score with zero cost. The returned cost is the USD cost of the model
// call at the given tier.
func (s *Scorer) ScoreSemantic(ctx context.Context, task *domain.Task, output string, criteria domain.QualityCriteria, tier constants.ModelTier) (*domain.QualityScore, float64) {
	if s.client == nil {
		return s.ScoreStructural(task, output, criteria), 0
	}

	resp, err := s.client.CreateMessage(ctx, domain.MessageRequest{
		Tier:      tier,
		System:    scoringSystemPrompt,
		Prompt:    scoringPrompt(task, output, criteria),
		MaxTokens: semanticMaxTokens,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("task_id", task.ID).
			Msg("semantic scoring failed, using structural score")
		return s.ScoreStructural(task, output, criteria), 0
	}

	parsed, err := parseDimensionScores(resp.Content)
	if err != nil {
		s.log.Warn().Err(err).Str("task_id", task.ID).
			Msg("semantic score response unparseable, using structural score")
		return s.ScoreStructural(task, output, criteria), 0
	}

	score := &domain.QualityScore{
		TaskID:   task.ID,
		Skill:    task.To,
		ScoredAt: s.clk.Now().UTC(),
		ScoredBy: ScoredSemantic,
	}
	for _, dim := range criteria.Dimensions {
		value, rationale := 5.0, ""
		if got, ok := parsed[dim.Tag]; ok {
			value = clamp(got.Score)
			rationale = got.Rationale
		}
		score.Dimensions = append(score.Dimensions, domain.DimensionScore{
			Tag:       dim.Tag,
			Score:     value,
			Weight:    dim.Weight,
			Rationale: rationale,
		})
	}
	score.OverallScore = overall(score.Dimensions)

	cost := constants.TierRates[tier].Cost(resp.InputTokens, resp.OutputTokens)
	return score, cost
}

// ScoreToVerdict converts a quality score to a verdict under the
// skill's thresholds. A dimension below its own floor blocks approval;
// a dimension below both its floor and the reject threshold forces a
// rejection outright.
func ScoreToVerdict(score *domain.QualityScore, criteria domain.QualityCriteria) constants.Verdict {
	floors := make(map[string]float64, len(criteria.Dimensions))
	for _, dim := range criteria.Dimensions {
		floors[dim.Tag] = dim.MinScore
	}

	belowFloor := false
	for _, dim := range score.Dimensions {
		floor, ok := floors[dim.Tag]
		if !ok {
			continue
		}
		if dim.Score < floor {
			belowFloor = true
			if dim.Score < criteria.RejectBelow {
				return constants.VerdictReject
			}
		}
	}

	switch {
	case score.OverallScore < criteria.RejectBelow:
		return constants.VerdictReject
	case score.OverallScore >= criteria.ApproveAbove && !belowFloor:
		return constants.VerdictApprove
	default:
		return constants.VerdictRevise
	}
}

// ScoreToFindings converts weak dimensions into review findings: a
// score under 4 is major, under 6 minor, and 6 or above is clean.
func ScoreToFindings(score *domain.QualityScore) []domain.Finding {
	var findings []domain.Finding
	for _, dim := range score.Dimensions {
		var severity domain.FindingSeverity
		switch {
		case dim.Score < 4:
			severity = domain.SeverityFindingMajor
		case dim.Score < 6:
			severity = domain.SeverityFindingMinor
		default:
			continue
		}
		desc := fmt.Sprintf("%s scored %.1f/10", dim.Tag, dim.Score)
		if dim.Rationale != "" {
			desc += ": " + dim.Rationale
		}
		findings = append(findings, domain.Finding{
			Section:     dim.Tag,
			Severity:    severity,
			Description: desc,
		})
	}
	return findings
}

// overall is the weighted average of the dimension scores, clamped.
func overall(dims []domain.DimensionScore) float64 {
	var sum, weight float64
	for _, dim := range dims {
		sum += dim.Score * dim.Weight
		weight += dim.Weight
	}
	if weight == 0 {
		return 0
	}
	return clamp(sum / weight)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 10:
		return 10
	default:
		return v
	}
}

func scoringPrompt(task *domain.Task, output string, criteria domain.QualityCriteria) string {
	tags := make([]string, 0, len(criteria.Dimensions))
	for _, dim := range criteria.Dimensions {
		tags = append(tags, dim.Tag)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Judge the following %s deliverable against these dimensions: %s.\n\n", task.To, strings.Join(tags, ", "))
	fmt.Fprintf(&b, "Goal: %s\n\n", task.Goal)
	b.WriteString("Respond with a single JSON object keyed by dimension name, each value an object {\"score\": <0-10>, \"rationale\": \"<one sentence>\"}. No prose outside the JSON.\n\n")
	b.WriteString("Deliverable:\n")
	b.WriteString(output)
	return b.String()
}

const scoringSystemPrompt = "You are a strict marketing quality reviewer. You respond only with the requested JSON."
