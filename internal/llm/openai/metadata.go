package openai

import "strings"

var contextLengths = map[string]int{
	"gpt-4o":              128000,
	"gpt-4o-mini":         128000,
	"gpt-4-turbo":         128000,
	"gpt-4-turbo-preview": 128000,
	"gpt-4":               8192,
	"gpt-3.5-turbo":       16385,
	"gpt-3.5-turbo-16k":   16385,
}

// Input cost per 1K tokens.
var costs = map[string]float64{
	"gpt-4o":              0.0025,
	"gpt-4o-mini":         0.00015,
	"gpt-4-turbo":         0.01,
	"gpt-4-turbo-preview": 0.01,
	"gpt-4":               0.03,
	"gpt-3.5-turbo":       0.0005,
	"gpt-3.5-turbo-16k":   0.001,
}

var descriptions = map[string]string{
	"gpt-4o":              "Most advanced GPT-4 model with vision capabilities",
	"gpt-4o-mini":         "Fast and cost-effective GPT-4 model",
	"gpt-4-turbo":         "Latest GPT-4 Turbo with enhanced performance",
	"gpt-4-turbo-preview": "Preview version of GPT-4 Turbo",
	"gpt-4":               "Original GPT-4 model with advanced reasoning",
	"gpt-3.5-turbo":       "Fast and efficient conversational AI",
	"gpt-3.5-turbo-16k":   "GPT-3.5 with extended 16K context window",
}

func contextLength(modelID string) int {
	if n, ok := contextLengths[modelID]; ok {
		return n
	}
	return 4096
}

func cost(modelID string) float64 {
	if c, ok := costs[modelID]; ok {
		return c
	}
	return 0.002
}

func capabilities(modelID string) []string {
	lower := strings.ToLower(modelID)
	if strings.Contains(lower, "gpt-4") {
		if strings.Contains(lower, "vision") || strings.Contains(lower, "gpt-4o") {
			return []string{"chat", "reasoning", "code", "analysis", "vision", "multimodal"}
		}
		return []string{"chat", "reasoning", "code", "analysis", "complex-tasks"}
	}
	return []string{"chat", "reasoning", "code"}
}

func description(modelID string) string {
	if d, ok := descriptions[modelID]; ok {
		return d
	}
	return "OpenAI " + modelID + " language model"
}
