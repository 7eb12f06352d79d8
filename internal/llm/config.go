// Package llm wraps the text-generation provider behind a small Client
// interface with model tiers, retries and quota detection.
package llm

import "maps"

// ModelTier selects a model by the kind of task rather than by name.
type ModelTier string

const (
	// TierLite is for short free-text tasks such as rationales
	TierLite ModelTier = "lite"
	// TierStandard is for structured extraction
	TierStandard ModelTier = "standard"
	// TierAdvanced is for bullet rewriting
	TierAdvanced ModelTier = "advanced"
)

// tierFallback is consulted in order when a tier has no model of its own.
var tierFallback = []ModelTier{TierStandard, TierLite}

// Provider names a text-generation backend.
type Provider string

// ProviderGemini is the only supported provider.
const ProviderGemini Provider = "gemini"

// DefaultTemperature keeps extraction and rewriting output stable.
const DefaultTemperature float32 = 0.1

// Config selects the provider, the model per tier and the retry policy.
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
	Retry       RetryConfig
}

// DefaultConfig uses Gemini flash for extraction and rewriting and
// flash-lite for rationales.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-flash",
		},
		Temperature: DefaultTemperature,
		Retry:       DefaultRetryConfig(),
	}
}

// GetModel returns the model for tier, or for the first fallback tier that
// has one. It returns "" when no tier is configured.
func (c *Config) GetModel(tier ModelTier) string {
	if model := c.Models[tier]; model != "" {
		return model
	}
	for _, t := range tierFallback {
		if model := c.Models[t]; model != "" {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of c with model assigned to tier.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	next := *c
	next.Models = maps.Clone(c.Models)
	if next.Models == nil {
		next.Models = make(map[ModelTier]string, 1)
	}
	next.Models[tier] = model
	return &next
}

func (c *Config) temperature() float32 {
	if c.Temperature <= 0 {
		return DefaultTemperature
	}
	return c.Temperature
}
