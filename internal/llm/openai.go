package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const openAIBaseURL = "https://api.openai.com/v1"

// openAIClient implements the Client interface for the OpenAI chat completions API.
type openAIClient struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
}

// newOpenAIClient creates a new OpenAI API client.
func newOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	return &openAIClient{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(orDefault(cfg.BaseURL, openAIBaseURL), "/"),
		model:       orDefault(cfg.Model, "gpt-4-turbo-preview"),
		temperature: orDefault(cfg.Temperature, 0.7),
		maxTokens:   orDefault(cfg.MaxTokens, 500),
		httpClient:  newHTTPClient(cfg.Timeout),
	}, nil
}

func (c *openAIClient) Provider() string { return ProviderOpenAI }

// Chat sends the conversation to OpenAI.
func (c *openAIClient) Chat(ctx context.Context, messages []Message) (Response, error) {
	requestBody := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}

	var response openAIResponse
	err := postJSON(ctx, c.httpClient, c.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + c.apiKey}, requestBody, &response)
	if err != nil {
		return Response{}, fmt.Errorf("openai: %w", err)
	}

	if len(response.Choices) == 0 {
		return Response{}, fmt.Errorf("openai: no completion choices returned")
	}

	return Response{
		Content:    strings.TrimSpace(response.Choices[0].Message.Content),
		Provider:   ProviderOpenAI,
		Confidence: 0.95,
		TokensUsed: response.Usage.TotalTokens,
	}, nil
}

// openAIResponse represents the OpenAI API response structure.
type openAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
