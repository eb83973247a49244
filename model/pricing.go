package model

import ai "github.com/spetersoncode/assistant"

// ChatPricing contains pricing per million tokens (USD) for chat models.
type ChatPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// Cost returns the USD cost of usage at these prices.
func (p ChatPricing) Cost(usage ai.Usage) float64 {
	return float64(usage.InputTokens)/1_000_000*p.InputPerMillion +
		float64(usage.OutputTokens)/1_000_000*p.OutputPerMillion
}
