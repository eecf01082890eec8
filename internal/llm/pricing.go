package llm

import "strings"

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of one or more calls totalling the given tokens.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// LookupCost returns pricing for a model ID, or nil if unknown. Dated
// snapshots ("claude-haiku-4-5-20251001") and OpenRouter vendor prefixes
// fall back to the base model when no exact entry exists.
func LookupCost(modelID string) *ModelCost {
	for _, id := range costCandidates(modelID) {
		if c, ok := modelCosts[id]; ok {
			return &c
		}
	}
	return nil
}

func costCandidates(modelID string) []string {
	ids := []string{modelID}
	if i := strings.LastIndex(modelID, "-"); i > 0 && isDate(modelID[i+1:]) {
		ids = append(ids, modelID[:i])
	}
	if i := strings.Index(modelID, "/"); i > 0 {
		ids = append(ids, costCandidates(modelID[i+1:])...)
	}
	return ids
}

func isDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Prices for the models the practice providers default to, plus the
// usual alternates. OpenRouter-specific rates override the vendor rate.
var modelCosts = map[string]ModelCost{
	"claude-haiku":      {1, 5},
	"claude-haiku-4-5":  {1, 5},
	"claude-3-5-haiku":  {0.8, 4},
	"claude-sonnet-4-5": {3, 15},
	"claude-sonnet-4-0": {3, 15},
	"claude-opus-4-5":   {5, 25},

	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-5":        {1.25, 10},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},

	"gemma-3-4b-it":         {0, 0},
	"gemma-3-12b-it":        {0, 0},
	"gemma-3-27b-it":        {0, 0},
	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},

	"google/gemma-3-27b-it": {0.09, 0.17},
}
