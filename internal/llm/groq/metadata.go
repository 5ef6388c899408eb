package groq

import "strings"

// The Groq listing endpoint carries no pricing or capability flags, so
// the descriptors are filled from these tables.

var contextLengths = map[string]int{
	"llama-3.1-8b-instant":         131072,
	"llama-3.1-70b-versatile":      131072,
	"llama-3.2-1b-preview":         131072,
	"llama-3.2-3b-preview":         131072,
	"llama-3.2-11b-text-preview":   131072,
	"llama-3.2-90b-text-preview":   131072,
	"llama-3.2-11b-vision-preview": 131072,
	"mixtral-8x7b-32768":           32768,
	"gemma-7b-it":                  8192,
	"gemma2-9b-it":                 8192,
}

var costs = map[string]float64{
	"llama-3.1-8b-instant":         0.00005,
	"llama-3.1-70b-versatile":      0.0002,
	"llama-3.2-1b-preview":         0.00004,
	"llama-3.2-3b-preview":         0.00006,
	"llama-3.2-11b-text-preview":   0.00018,
	"llama-3.2-90b-text-preview":   0.0009,
	"llama-3.2-11b-vision-preview": 0.00018,
	"mixtral-8x7b-32768":           0.0001,
	"gemma-7b-it":                  0.00007,
	"gemma2-9b-it":                 0.00002,
}

var descriptions = map[string]string{
	"llama-3.1-8b-instant":         "Ultra-fast Llama 3.1 8B model optimized for speed and efficiency",
	"llama-3.1-70b-versatile":      "Powerful Llama 3.1 70B model for complex reasoning and analysis",
	"llama-3.2-1b-preview":         "Compact Llama 3.2 1B model for lightweight applications",
	"llama-3.2-3b-preview":         "Efficient Llama 3.2 3B model balancing speed and capability",
	"llama-3.2-11b-text-preview":   "Advanced Llama 3.2 11B model for text processing",
	"llama-3.2-90b-text-preview":   "Most powerful Llama 3.2 90B model for complex tasks",
	"llama-3.2-11b-vision-preview": "Multimodal Llama 3.2 11B with vision capabilities",
	"mixtral-8x7b-32768":           "Mixtral 8x7B mixture of experts model with 32K context",
	"gemma-7b-it":                  "Google's Gemma 7B instruction-tuned model",
	"gemma2-9b-it":                 "Google's Gemma 2 9B instruction-tuned model",
}

func contextLength(modelID string) int {
	if n, ok := contextLengths[modelID]; ok {
		return n
	}
	return 8192
}

func cost(modelID string) float64 {
	if c, ok := costs[modelID]; ok {
		return c
	}
	return 0.0001
}

func capabilities(modelID string) []string {
	lower := strings.ToLower(modelID)
	switch {
	case strings.Contains(lower, "vision"):
		return []string{"chat", "reasoning", "vision", "multimodal"}
	case strings.Contains(modelID, "70b") || strings.Contains(modelID, "90b"):
		return []string{"chat", "reasoning", "code", "analysis", "complex-tasks"}
	case strings.Contains(lower, "mixtral"):
		return []string{"chat", "reasoning", "multilingual", "expert-mix"}
	default:
		return []string{"chat", "reasoning", "code"}
	}
}

func description(modelID string) string {
	if d, ok := descriptions[modelID]; ok {
		return d
	}
	return "Groq " + modelID + " language model"
}
