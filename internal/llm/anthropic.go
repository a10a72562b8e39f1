package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const anthropicBaseURL = "https://api.anthropic.com/v1"

// anthropicClient implements the Client interface for the Anthropic messages API.
type anthropicClient struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
}

// newAnthropicClient creates a new Anthropic API client.
func newAnthropicClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	return &anthropicClient{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(orDefault(cfg.BaseURL, anthropicBaseURL), "/"),
		model:       orDefault(cfg.Model, "claude-3-5-sonnet-latest"),
		temperature: orDefault(cfg.Temperature, 0.7),
		maxTokens:   orDefault(cfg.MaxTokens, 500),
		httpClient:  newHTTPClient(cfg.Timeout),
	}, nil
}

func (c *anthropicClient) Provider() string { return ProviderAnthropic }

// Chat sends the conversation to Anthropic. System messages travel in the dedicated
// system field.
func (c *anthropicClient) Chat(ctx context.Context, messages []Message) (Response, error) {
	turns := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role != RoleSystem {
			turns = append(turns, m)
		}
	}

	requestBody := map[string]any{
		"model":       c.model,
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
		"messages":    turns,
	}
	if system := systemPrompt(messages); system != "" {
		requestBody["system"] = system
	}

	var response anthropicResponse
	err := postJSON(ctx, c.httpClient, c.baseURL+"/messages", map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": "2023-06-01",
	}, requestBody, &response)
	if err != nil {
		return Response{}, fmt.Errorf("anthropic: %w", err)
	}

	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return Response{}, fmt.Errorf("anthropic: no content in response")
	}

	return Response{
		Content:    strings.TrimSpace(text.String()),
		Provider:   ProviderAnthropic,
		Confidence: 0.95,
		TokensUsed: response.Usage.InputTokens + response.Usage.OutputTokens,
	}, nil
}

// anthropicResponse represents the Anthropic API response structure.
type anthropicResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}
