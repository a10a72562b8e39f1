package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// DefaultOllamaURL is where a local Ollama server listens by default.
const DefaultOllamaURL = "http://localhost:11434"

// ollamaClient implements the Client interface for a local Ollama server.
type ollamaClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

func newOllamaClient(cfg Config) (Client, error) {
	return &ollamaClient{
		baseURL:    strings.TrimRight(orDefault(cfg.BaseURL, DefaultOllamaURL), "/"),
		model:      orDefault(cfg.Model, "llama2"),
		httpClient: newHTTPClient(cfg.Timeout),
	}, nil
}

func (c *ollamaClient) Provider() string { return ProviderOllama }

// Chat sends the conversation to Ollama without streaming.
func (c *ollamaClient) Chat(ctx context.Context, messages []Message) (Response, error) {
	requestBody := map[string]any{
		"model":    c.model,
		"messages": messages,
		"stream":   false,
	}

	var response struct {
		Message         Message `json:"message"`
		PromptEvalCount int     `json:"prompt_eval_count"`
		EvalCount       int     `json:"eval_count"`
	}
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/api/chat", nil, requestBody, &response); err != nil {
		return Response{}, fmt.Errorf("ollama: %w", err)
	}

	if strings.TrimSpace(response.Message.Content) == "" {
		return Response{}, fmt.Errorf("ollama: empty message in response")
	}

	return Response{
		Content:    strings.TrimSpace(response.Message.Content),
		Provider:   ProviderOllama,
		Confidence: 0.85,
		TokensUsed: response.PromptEvalCount + response.EvalCount,
	}, nil
}
