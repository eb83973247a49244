// Package model is the catalog of chat models the assistant knows how to
// price.
//
// The catalog is keyed by API model ID. Unknown IDs are allowed everywhere
// (ASSISTANT_MODEL is passed through to the provider), they simply have no
// cost estimate:
//
//	if cost, ok := model.EstimateCost(c.Model(), usage); ok {
//	    log.Info("turn cost", "cost_usd", cost)
//	}
package model
