package quality

import (
	"encoding/json"
	"strings"
)

// dimensionResult is one dimension's judgment in a model response.
type dimensionResult struct {
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

// parseDimensionScores decodes a model response into per-dimension
// results. The response may be wrapped in a markdown code fence.
func parseDimensionScores(content string) (map[string]dimensionResult, error) {
	var parsed map[string]dimensionResult
	if err := json.Unmarshal([]byte(StripCodeFence(content)), &parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

// StripCodeFence removes a surrounding markdown code fence, with or
// without a language tag, returning the inner text unchanged otherwise.
func StripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
