package model

import (
	"slices"
	"strings"

	ai "github.com/spetersoncode/assistant"
)

// ChatModel represents a chat model from any provider.
type ChatModel struct {
	id       string
	provider ai.Provider
	pricing  ChatPricing
}

// String returns the API identifier for this model.
func (m ChatModel) String() string { return m.id }

// Provider returns which provider this model belongs to.
func (m ChatModel) Provider() ai.Provider { return m.provider }

// Pricing returns the pricing for this model.
func (m ChatModel) Pricing() ChatPricing { return m.pricing }

// Cost returns the USD cost of usage on this model.
func (m ChatModel) Cost(usage ai.Usage) float64 { return m.pricing.Cost(usage) }

// Model pricing last verified: December 14, 2025
var (
	ClaudeOpus45   = ChatModel{id: "claude-opus-4-5", provider: ai.ProviderAnthropic, pricing: ChatPricing{InputPerMillion: 5.00, OutputPerMillion: 25.00}}
	ClaudeSonnet45 = ChatModel{id: "claude-sonnet-4-5", provider: ai.ProviderAnthropic, pricing: ChatPricing{InputPerMillion: 3.00, OutputPerMillion: 15.00}}
	ClaudeHaiku45  = ChatModel{id: "claude-haiku-4-5", provider: ai.ProviderAnthropic, pricing: ChatPricing{InputPerMillion: 1.00, OutputPerMillion: 5.00}}

	GPT4o     = ChatModel{id: "gpt-4o", provider: ai.ProviderOpenAI, pricing: ChatPricing{InputPerMillion: 2.50, OutputPerMillion: 10.00}}
	GPT4oMini = ChatModel{id: "gpt-4o-mini", provider: ai.ProviderOpenAI, pricing: ChatPricing{InputPerMillion: 0.15, OutputPerMillion: 0.60}}
	GPT41     = ChatModel{id: "gpt-4.1", provider: ai.ProviderOpenAI, pricing: ChatPricing{InputPerMillion: 2.00, OutputPerMillion: 8.00}}
	GPT41Mini = ChatModel{id: "gpt-4.1-mini", provider: ai.ProviderOpenAI, pricing: ChatPricing{InputPerMillion: 0.40, OutputPerMillion: 1.60}}
	GPT5      = ChatModel{id: "gpt-5", provider: ai.ProviderOpenAI, pricing: ChatPricing{InputPerMillion: 1.25, OutputPerMillion: 10.00}}
	GPT5Mini  = ChatModel{id: "gpt-5-mini", provider: ai.ProviderOpenAI, pricing: ChatPricing{InputPerMillion: 0.25, OutputPerMillion: 1.00}}

	Gemini25Pro       = ChatModel{id: "gemini-2.5-pro", provider: ai.ProviderGoogle, pricing: ChatPricing{InputPerMillion: 1.25, OutputPerMillion: 10.00}}
	Gemini25Flash     = ChatModel{id: "gemini-2.5-flash", provider: ai.ProviderGoogle, pricing: ChatPricing{InputPerMillion: 0.15, OutputPerMillion: 0.60}}
	Gemini25FlashLite = ChatModel{id: "gemini-2.5-flash-lite", provider: ai.ProviderGoogle, pricing: ChatPricing{InputPerMillion: 0.075, OutputPerMillion: 0.30}}
)

var catalog = []ChatModel{
	ClaudeOpus45, ClaudeSonnet45, ClaudeHaiku45,
	GPT4o, GPT4oMini, GPT41, GPT41Mini, GPT5, GPT5Mini,
	Gemini25Pro, Gemini25Flash, Gemini25FlashLite,
}

// Lookup finds a model by API ID. Dated snapshots such as
// "claude-sonnet-4-5-20250929" resolve to their alias.
func Lookup(id string) (ChatModel, bool) {
	if i := slices.IndexFunc(catalog, func(m ChatModel) bool { return m.id == id }); i >= 0 {
		return catalog[i], true
	}
	var best ChatModel
	for _, m := range catalog {
		if strings.HasPrefix(id, m.id+"-") && len(m.id) > len(best.id) && isSnapshotSuffix(id[len(m.id)+1:]) {
			best = m
		}
	}
	return best, best.id != ""
}

// isSnapshotSuffix reports whether s looks like a date stamp
// ("20250929" or "2025-09-29").
func isSnapshotSuffix(s string) bool {
	digits := strings.ReplaceAll(s, "-", "")
	if len(digits) != 8 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// EstimateCost prices usage for the model ID. It returns false for models
// outside the catalog.
func EstimateCost(id string, usage ai.Usage) (float64, bool) {
	m, ok := Lookup(id)
	if !ok {
		return 0, false
	}
	return m.Cost(usage), true
}

// Models returns the catalog for provider, or every model if provider is empty.
func Models(provider ai.Provider) []ChatModel {
	var out []ChatModel
	for _, m := range catalog {
		if provider == "" || m.provider == provider {
			out = append(out, m)
		}
	}
	return out
}
