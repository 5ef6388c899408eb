package llm

import "strings"

// nonChatModels are upstream IDs that never serve chat completions.
var nonChatModels = map[string]struct{}{
	"whisper-large-v3":           {},
	"whisper-large-v3-turbo":     {},
	"distil-whisper-large-v3-en": {},
	"whisper-1":                  {},
	"tts-1":                      {},
	"tts-1-hd":                   {},
	"dall-e-2":                   {},
	"dall-e-3":                   {},
	"text-embedding-ada-002":     {},
	"text-embedding-3-small":     {},
	"text-embedding-3-large":     {},
}

var nonChatKeywords = []string{"whisper", "tts", "dall-e", "embedding", "moderation"}

// IsChatModel reports whether modelID serves chat completions. Audio,
// image, embedding and moderation models are excluded from catalogs
// and from auto-selection.
func IsChatModel(modelID string) bool {
	lower := strings.ToLower(modelID)
	if _, ok := nonChatModels[lower]; !ok {
		for _, kw := range nonChatKeywords {
			if strings.Contains(lower, kw) {
				return false
			}
		}
		return true
	}
	return false
}

// DefaultModelPreference is the ordered list consulted when a request
// does not name a model. The first entry present in the live catalog
// wins; otherwise the first chat-capable model does.
var DefaultModelPreference = []string{
	"llama-3.1-8b-instant",
	"gpt-3.5-turbo",
	"llama-3.1-70b-versatile",
	"gpt-4o-mini",
}
