package llm

import (
	"context"
	"time"
)

// Provider names accepted in configuration.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
	ProviderRuleBased = "rulebased"
)

// Role is the author of a chat message.
type Role string

// Chat roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Response is a provider's answer to a chat.
type Response struct {
	Content  string
	Provider string
	// Confidence is the provider's fixed trust level in [0,1].
	Confidence float64
	TokensUsed int
}

// Client defines the interface for chat providers.
type Client interface {
	Chat(ctx context.Context, messages []Message) (Response, error)
	Provider() string
}

// Config holds provider selection and tuning.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// lastUserMessage returns the content of the final user turn, or "" when there is none.
func lastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// systemPrompt joins every system message.
func systemPrompt(messages []Message) string {
	var out string
	for _, m := range messages {
		if m.Role != RoleSystem {
			continue
		}
		if out != "" {
			out += "\n\n"
		}
		out += m.Content
	}
	return out
}
