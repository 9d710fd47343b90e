package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"intervue/internal/config"
)

// ChatMessage is one turn of a completion request. ImageURL, when set,
// attaches an inline image part (used by the icebreaker path).
type ChatMessage struct {
	Role     string
	Text     string
	ImageURL string
}

// CompleteOptions tune a single completion call
type CompleteOptions struct {
	Temperature float64
	MaxTokens   int
	Model       string // empty means the configured chat model
}

// CompletionClient is the external generation/evaluation capability.
// A non-nil error means "capability down"; content is never conflated
// with failure. Every caller has a deterministic local fallback.
type CompletionClient interface {
	Complete(ctx context.Context, messages []ChatMessage, opts CompleteOptions) (string, error)
	IsEnabled() bool
}

// SpeechClient synthesizes audio from text
type SpeechClient interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
	IsEnabled() bool
}

// OpenAIClient talks to an OpenAI-compatible API over plain HTTP
type OpenAIClient struct {
	config *config.AIConfig
	client *http.Client
}

// NewOpenAIClient creates a client from the default AI configuration
func NewOpenAIClient() *OpenAIClient {
	cfg := config.DefaultAIConfig()
	return &OpenAIClient{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// NewOpenAIClientWithConfig creates a client with explicit configuration
func NewOpenAIClientWithConfig(cfg *config.AIConfig) *OpenAIClient {
	return &OpenAIClient{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// IsEnabled returns true when an API key is configured
func (c *OpenAIClient) IsEnabled() bool {
	return c.config.IsEnabled()
}

// Complete performs a single synchronous chat completion
func (c *OpenAIClient) Complete(ctx context.Context, messages []ChatMessage, opts CompleteOptions) (string, error) {
	if !c.IsEnabled() {
		return "", fmt.Errorf("ai client not configured")
	}

	model := opts.Model
	if model == "" {
		model = c.config.Models.Chat
	}

	reqMessages := make([]map[string]interface{}, 0, len(messages))
	for _, m := range messages {
		if m.ImageURL == "" {
			reqMessages = append(reqMessages, map[string]interface{}{
				"role":    m.Role,
				"content": m.Text,
			})
			continue
		}
		reqMessages = append(reqMessages, map[string]interface{}{
			"role": m.Role,
			"content": []map[string]interface{}{
				{"type": "text", "text": m.Text},
				{"type": "image_url", "image_url": map[string]string{"url": m.ImageURL}},
			},
		})
	}

	reqBody := map[string]interface{}{
		"model":       model,
		"messages":    reqMessages,
		"temperature": opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		reqBody["max_tokens"] = opts.MaxTokens
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion request failed: status %d", resp.StatusCode)
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return completion.Choices[0].Message.Content, nil
}

// Synthesize generates speech audio for a text using the speech model
func (c *OpenAIClient) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if !c.IsEnabled() {
		return nil, fmt.Errorf("ai client not configured")
	}

	reqBody := map[string]interface{}{
		"model":           c.config.Models.Speech,
		"voice":           voice,
		"input":           text,
		"response_format": "mp3",
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/audio/speech", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech request failed: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
