package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiveworks/hive/internal/catalog"
	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/domain"
	"github.com/hiveworks/hive/internal/quality"
	"github.com/hiveworks/hive/internal/testutil"
)

func TestEvaluateTaskSemantic_NoClientShortCircuits(t *testing.T) {
	t.Parallel()

	engine := New()
	decision, cost := engine.EvaluateTaskSemantic(context.Background(), pipelineTask(), goodOutput, nil, nil)
	assert.Equal(t, constants.VerdictApprove, decision.Verdict)
	assert.Zero(t, cost)
}

func TestEvaluateTaskSemantic_CriticalStructuralShortCircuits(t *testing.T) {
	t.Parallel()

	client := &testutil.StubModelClient{}
	engine := New(WithModelClient(client))

	decision, cost := engine.EvaluateTaskSemantic(context.Background(), pipelineTask(), "", nil, nil)
	assert.Equal(t, constants.VerdictReject, decision.Verdict)
	assert.Zero(t, cost)
	assert.Zero(t, client.Calls(), "no model call for critically broken output")
}

func TestEvaluateTaskSemantic_MergesFindings(t *testing.T) {
	t.Parallel()

	client := &testutil.StubModelClient{
		Responses: []*domain.MessageResponse{testutil.TextResponse(`[
			{"section": "Recommendations", "severity": "major", "description": "no expected impact stated"},
			{"section": "Findings", "severity": "suggestion", "description": "cite the analytics source"},
			{"section": "Findings", "severity": "blocker", "description": "unknown severity is dropped"}
		]`, 2000, 300)},
	}
	engine := New(WithModelClient(client))

	decision, cost := engine.EvaluateTaskSemantic(context.Background(), pipelineTask(), goodOutput, nil, nil)
	assert.Equal(t, constants.VerdictRevise, decision.Verdict)
	require.Len(t, decision.Findings, 2, "whitelist drops the unknown severity")
	assert.Equal(t, []string{"no expected impact stated"}, decision.RevisionRequests)
	require.Len(t, decision.NextTasks, 1)

	// Opus by default: 2000 in + 300 out.
	assert.InDelta(t, 2000*15.0/1e6+300*75.0/1e6, cost, 1e-9)

	require.Len(t, client.Requests, 1)
	assert.Equal(t, constants.TierOpus, client.Requests[0].Tier)
}

func TestEvaluateTaskSemantic_BudgetOverrideTier(t *testing.T) {
	t.Parallel()

	client := &testutil.StubModelClient{
		Responses: []*domain.MessageResponse{testutil.TextResponse(`[]`, 1000, 10)},
	}
	engine := New(WithModelClient(client))
	budget := &domain.BudgetState{ModelOverride: constants.TierHaiku}

	decision, cost := engine.EvaluateTaskSemantic(context.Background(), pipelineTask(), goodOutput, nil, budget)
	assert.Equal(t, constants.VerdictApprove, decision.Verdict)
	require.Len(t, client.Requests, 1)
	assert.Equal(t, constants.TierHaiku, client.Requests[0].Tier)
	assert.InDelta(t, 1000*0.8/1e6+10*4.0/1e6, cost, 1e-9)
}

func TestEvaluateTaskSemantic_DegradesOnClientError(t *testing.T) {
	t.Parallel()

	client := &testutil.StubModelClient{Err: testutil.ErrMockModelCall}
	engine := New(WithModelClient(client))

	decision, cost := engine.EvaluateTaskSemantic(context.Background(), pipelineTask(), goodOutput, nil, nil)
	assert.Equal(t, constants.VerdictApprove, decision.Verdict)
	assert.Zero(t, cost)
}

func TestEvaluateTaskSemantic_DegradesOnMalformedJSON(t *testing.T) {
	t.Parallel()

	client := &testutil.StubModelClient{
		Responses: []*domain.MessageResponse{testutil.TextResponse("The deliverable looks good.", 900, 40)},
	}
	engine := New(WithModelClient(client))

	decision, cost := engine.EvaluateTaskSemantic(context.Background(), pipelineTask(), goodOutput, nil, nil)
	assert.Equal(t, constants.VerdictApprove, decision.Verdict)
	assert.Zero(t, cost, "degraded call attributes no cost")
}

func TestMergeFindings_StructuralWinsOnCollision(t *testing.T) {
	t.Parallel()

	structural := []domain.Finding{
		{Section: "structure", Severity: domain.SeverityFindingMajor, Description: "output lacks sufficient depth"},
	}
	semantic := []domain.Finding{
		{Section: "Structure", Severity: domain.SeverityFindingMinor, Description: "Output lacks sufficient depth"},
		{Section: "Findings", Severity: domain.SeverityFindingMinor, Description: "no baseline cited"},
	}

	merged := mergeFindings(structural, semantic)
	require.Len(t, merged, 2)
	assert.Equal(t, domain.SeverityFindingMajor, merged[0].Severity)
	assert.Equal(t, "no baseline cited", merged[1].Description)
}

func TestParseFindings(t *testing.T) {
	t.Parallel()

	findings, err := parseFindings("```json\n" + `[{"section":"a","severity":"CRITICAL","description":"x"}]` + "\n```")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, domain.SeverityFindingCritical, findings[0].Severity)

	_, err = parseFindings("not json")
	require.Error(t, err)
}

func TestEvaluateTaskWithQuality(t *testing.T) {
	t.Parallel()

	criteria, ok := catalog.MustDefault().QualityCriteria("page-cro")
	require.True(t, ok)

	t.Run("scorer verdict drives the action", func(t *testing.T) {
		t.Parallel()
		client := &testutil.StubModelClient{
			Responses: []*domain.MessageResponse{testutil.TextResponse(
				`{"completeness":{"score":9},"clarity":{"score":8},"actionability":{"score":9},"data_driven":{"score":8},"brand_alignment":{"score":8}}`,
				1000, 100)},
		}
		scorer := quality.NewScorer(quality.WithModelClient(client))
		engine := New(WithScorer(scorer))

		decision, cost := engine.EvaluateTaskWithQuality(context.Background(), pipelineTask(), goodOutput, nil, criteria, nil)
		assert.Equal(t, constants.VerdictApprove, decision.Verdict)
		assert.Equal(t, constants.ActionPipelineNext, decision.Action)
		assert.Positive(t, cost)
	})

	t.Run("low scores force revision with synthesized task", func(t *testing.T) {
		t.Parallel()
		client := &testutil.StubModelClient{
			Responses: []*domain.MessageResponse{testutil.TextResponse(
				`{"completeness":{"score":6},"clarity":{"score":6},"actionability":{"score":6},"data_driven":{"score":6},"brand_alignment":{"score":6}}`,
				1000, 100)},
		}
		scorer := quality.NewScorer(quality.WithModelClient(client))
		engine := New(WithScorer(scorer))

		decision, _ := engine.EvaluateTaskWithQuality(context.Background(), pipelineTask(), goodOutput, nil, criteria, nil)
		assert.Equal(t, constants.VerdictRevise, decision.Verdict)
		assert.Equal(t, constants.ActionRevise, decision.Action)
		require.Len(t, decision.NextTasks, 1)
		assert.NotEmpty(t, decision.RevisionRequests)
	})

	t.Run("critical structural finding skips scoring", func(t *testing.T) {
		t.Parallel()
		client := &testutil.StubModelClient{}
		scorer := quality.NewScorer(quality.WithModelClient(client))
		engine := New(WithScorer(scorer))

		decision, cost := engine.EvaluateTaskWithQuality(context.Background(), pipelineTask(), "", nil, criteria, nil)
		assert.Equal(t, constants.VerdictReject, decision.Verdict)
		assert.Zero(t, cost)
		assert.Zero(t, client.Calls())
	})

	t.Run("no scorer falls back to semantic path", func(t *testing.T) {
		t.Parallel()
		engine := New()
		decision, cost := engine.EvaluateTaskWithQuality(context.Background(), pipelineTask(), goodOutput, nil, criteria, nil)
		assert.Equal(t, constants.VerdictApprove, decision.Verdict)
		assert.Zero(t, cost)
	})
}
