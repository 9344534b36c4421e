package services

import (
	"log"
	"sync"
)

// ─── Active LLM config ────────────────────────────────────────────────────────

var (
	llmMu       sync.RWMutex
	llmProvider = "gemini"
	llmModel    = "gemini-2.5-pro"
)

// SetLLM updates the active provider and model at runtime.
func SetLLM(provider, model string) {
	llmMu.Lock()
	defer llmMu.Unlock()
	llmProvider = provider
	llmModel = model
	log.Printf("[LLM] Provider set to %s / %s", provider, model)
}

// GetLLM returns the currently configured provider and model.
func GetLLM() (provider, model string) {
	llmMu.RLock()
	defer llmMu.RUnlock()
	return llmProvider, llmModel
}

// AskLLM is the single call-site for all LLM usage in the backend. It routes
// to Gemini, OpenAI, or Claude based on the active provider, using the given
// API key (callers rotate keys through a KeyPool). Returns the raw text,
// total tokens used, and any transport/API error.
func AskLLM(apiKey, sysPrompt, userPrompt string) (string, int, error) {
	provider, model := GetLLM()

	switch provider {
	case "openai":
		return AskOpenAI(apiKey, model, sysPrompt, userPrompt)
	case "anthropic":
		return AskClaude(apiKey, model, sysPrompt, userPrompt)
	default:
		// gemini (default)
		return AskGemini(apiKey, model, sysPrompt, userPrompt)
	}
}
