package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1"

// geminiClient implements the Client interface for the Gemini generateContent API.
type geminiClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

func newGeminiClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	return &geminiClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(orDefault(cfg.BaseURL, geminiBaseURL), "/"),
		model:      orDefault(cfg.Model, "gemini-2.5-flash"),
		httpClient: newHTTPClient(cfg.Timeout),
	}, nil
}

func (c *geminiClient) Provider() string { return ProviderGemini }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

// Chat sends the conversation to Gemini. Gemini has no system role on the v1 API, so
// system messages are folded into the first user turn.
func (c *geminiClient) Chat(ctx context.Context, messages []Message) (Response, error) {
	system := systemPrompt(messages)

	contents := make([]geminiContent, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			continue
		case RoleAssistant:
			contents = append(contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			text := m.Content
			if system != "" {
				text = system + "\n\n" + text
				system = ""
			}
			contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: text}}})
		}
	}
	if system != "" {
		contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: system}}})
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))

	var response geminiResponse
	if err := postJSON(ctx, c.httpClient, endpoint, nil, map[string]any{"contents": contents}, &response); err != nil {
		return Response{}, fmt.Errorf("gemini: %w", err)
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return Response{}, fmt.Errorf("gemini: invalid response without candidates")
	}

	return Response{
		Content:    strings.TrimSpace(response.Candidates[0].Content.Parts[0].Text),
		Provider:   ProviderGemini,
		Confidence: 0.9,
		TokensUsed: response.UsageMetadata.TotalTokenCount,
	}, nil
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}
