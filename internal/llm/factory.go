package llm

import (
	"fmt"
	"strings"
)

// NewClient creates a raw chat client for cfg.Provider.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return newOpenAIClient(cfg)
	case ProviderAnthropic:
		return newAnthropicClient(cfg)
	case ProviderGemini:
		return newGeminiClient(cfg)
	case ProviderOllama:
		return newOllamaClient(cfg)
	case ProviderRuleBased, "":
		return NewRuleBasedClient(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// DetectProvider picks a provider from available credentials in the order openai,
// gemini, ollama, rule-based. apiKey reports the stored key for a provider.
func DetectProvider(apiKey func(provider string) string, ollamaURL string) string {
	switch {
	case apiKey(ProviderOpenAI) != "":
		return ProviderOpenAI
	case apiKey(ProviderGemini) != "":
		return ProviderGemini
	case ollamaURL != "":
		return ProviderOllama
	default:
		return ProviderRuleBased
	}
}

// KeyedProviders lists the providers that authenticate with an API key.
func KeyedProviders() []string {
	return []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini}
}

// RequiresKey reports whether provider authenticates with an API key.
func RequiresKey(provider string) bool {
	for _, p := range KeyedProviders() {
		if p == provider {
			return true
		}
	}
	return false
}
