package ai

import "strings"

// Tier names a class of model by cost and reasoning quality.
type Tier string

const (
	// TierReasoning is used where judgement matters: classification, rewriting.
	TierReasoning Tier = "reasoning"
	// TierFast is used for cheap extraction.
	TierFast Tier = "fast"
)

// Models maps tiers to provider model identifiers.
type Models map[Tier]string

// DefaultAnthropicModels returns the tier mapping used with the Anthropic provider.
func DefaultAnthropicModels() Models {
	return Models{
		TierReasoning: "claude-3-5-sonnet-20240620",
		TierFast:      "claude-3-haiku-20240307",
	}
}

// DefaultGeminiModels returns the tier mapping used with the Gemini provider.
func DefaultGeminiModels() Models {
	return Models{
		TierReasoning: "gemini-2.5-pro",
		TierFast:      "gemini-2.5-flash",
	}
}

// Get returns the model for tier, falling back to the reasoning tier and then
// the fast tier when the requested one is not configured.
func (m Models) Get(tier Tier) string {
	for _, t := range []Tier{tier, TierReasoning, TierFast} {
		if model := strings.TrimSpace(m[t]); model != "" {
			return model
		}
	}
	return ""
}

// Merge returns a copy of m with the non-empty entries of overrides applied.
func (m Models) Merge(overrides Models) Models {
	merged := make(Models, len(m)+len(overrides))
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range overrides {
		if strings.TrimSpace(v) != "" {
			merged[k] = strings.TrimSpace(v)
		}
	}
	return merged
}
