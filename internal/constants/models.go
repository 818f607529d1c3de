package constants

// ModelTier names an abstract model capability tier. The ai package maps
// tiers to concrete provider model identifiers; the budget engine may
// force a cheaper tier via BudgetState.ModelOverride.
type ModelTier string

// Model tiers from most to least capable.
const (
	// TierOpus is the most capable, most expensive tier.
	TierOpus ModelTier = "opus"

	// TierSonnet is the balanced default tier.
	TierSonnet ModelTier = "sonnet"

	// TierHaiku is the cheapest tier, forced under critical budget.
	TierHaiku ModelTier = "haiku"
)

// Valid returns true if the tier is a known value.
func (t ModelTier) Valid() bool {
	switch t {
	case TierOpus, TierSonnet, TierHaiku:
		return true
	default:
		return false
	}
}

// TokenRate holds per-token USD rates for one model tier.
type TokenRate struct {
	// Input is the cost in USD per input token.
	Input float64

	// Output is the cost in USD per output token.
	Output float64
}

// Cost returns the USD cost of a call with the given token counts.
func (r TokenRate) Cost(inputTokens, outputTokens int64) float64 {
	return float64(inputTokens)*r.Input + float64(outputTokens)*r.Output
}

// TierRates maps each model tier to its per-token rates.
// Cost prediction is deliberately linear: tokens times rate, nothing more.
//
//nolint:gochecknoglobals // Read-only lookup table
var TierRates = map[ModelTier]TokenRate{
	TierOpus:   {Input: 15.0 / 1e6, Output: 75.0 / 1e6},
	TierSonnet: {Input: 3.0 / 1e6, Output: 15.0 / 1e6},
	TierHaiku:  {Input: 0.8 / 1e6, Output: 4.0 / 1e6},
}
