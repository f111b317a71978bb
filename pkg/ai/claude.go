package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/agencyos/meeting-scribe/pkg/config"
)

const (
	anthropicVersion = "2023-06-01"
	messagesPath     = "/v1/messages"

	systemPrompt = "You are a meeting processor that analyzes meeting transcripts and outputs structured JSON. " +
		"Always respond with valid JSON matching the exact schema provided. " +
		"Do not include any text outside the JSON response."
)

// ClaudeClient is a minimal client for the Anthropic messages API
type ClaudeClient struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
}

// NewClaudeClient creates a client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewClaudeClient(cfg *config.AnthropicConfig) *ClaudeClient {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	var base string
	if cfg != nil && cfg.BaseURL != "" {
		base = cfg.BaseURL
	} else {
		base = os.Getenv("ANTHROPIC_API_URL")
		if base == "" {
			base = "https://api.anthropic.com"
		}
	}

	model := "claude-3-5-sonnet-20241022"
	maxTokens := 4096
	timeout := 120 * time.Second
	if cfg != nil {
		if cfg.Model != "" {
			model = cfg.Model
		}
		if cfg.MaxTokens > 0 {
			maxTokens = cfg.MaxTokens
		}
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
	}

	return &ClaudeClient{
		apiKey:    apiKey,
		baseURL:   base,
		model:     model,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: timeout},
	}
}

// messageRequest is the shape for messages API requests
type messageRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messageResponse is a minimal response shape
type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Process sends the prompt and returns the raw assistant text. Transient
// failures (429, 5xx, network) are retried with exponential backoff until the
// context deadline.
func (c *ClaudeClient) Process(ctx context.Context, prompt string) (string, error) {
	var out string

	operation := func() error {
		text, err := c.send(ctx, prompt)
		if err != nil {
			return err
		}
		out = text
		return nil
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return out, nil
}

func (c *ClaudeClient) send(ctx context.Context, prompt string) (string, error) {
	reqBody := messageRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: 0.3,
		System:      systemPrompt,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+messagesPath, bytes.NewReader(b))
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("anthropic rate limit exceeded")
	case resp.StatusCode == http.StatusUnauthorized:
		return "", backoff.Permanent(fmt.Errorf("invalid anthropic API key"))
	case resp.StatusCode == http.StatusBadRequest:
		return "", backoff.Permanent(fmt.Errorf("invalid request to anthropic API"))
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("anthropic returned status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return "", backoff.Permanent(fmt.Errorf("anthropic returned status %d", resp.StatusCode))
	}

	var mr messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return "", err
	}
	if len(mr.Content) == 0 {
		return "", backoff.Permanent(fmt.Errorf("empty response from anthropic"))
	}
	return mr.Content[0].Text, nil
}
