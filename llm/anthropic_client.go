package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SaiNageswarS/threads-poster/async"
)

const (
	anthropicURL     = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
)

var ErrNoContent = errors.New("no content in response")

type AnthropicRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []Message `json:"messages"`
	System      string    `json:"system,omitempty"`
	Temperature float64   `json:"temperature"`
}

// AnthropicResponse represents the response from Anthropic API
type AnthropicResponse struct {
	Content    []Content `json:"content"`
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Role       string    `json:"role"`
	Type       string    `json:"type"`
	StopReason string    `json:"stop_reason"`
}

// Content represents the content in the response
type Content struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type anthropicError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type AnthropicClient struct {
	apiKey     string
	httpClient *http.Client
	url        string
}

func ProvideAnthropicClient(apiKey string, timeout time.Duration) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic api key is not set")
	}

	return &AnthropicClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		url:        anthropicURL,
	}, nil
}

// GenerateInference sends messages to the Messages API and resolves to the
// concatenation of every non-empty text block in the reply.
func (c *AnthropicClient) GenerateInference(ctx context.Context, messages []Message, opts ...LLMOption) <-chan async.Result[string] {
	settings := LLMSettings{
		model:       "claude-sonnet-4-5-20250929",
		temperature: 0.7,
		maxTokens:   1024,
	}
	for _, opt := range opts {
		opt(&settings)
	}

	request := &AnthropicRequest{
		Model:       settings.model,
		MaxTokens:   settings.maxTokens,
		Messages:    messages,
		System:      settings.system,
		Temperature: settings.temperature,
	}

	return async.Go(func() (string, error) {
		jsonData, err := json.Marshal(request)
		if err != nil {
			return "", fmt.Errorf("error marshaling request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonData))
		if err != nil {
			return "", fmt.Errorf("error creating request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", anthropicVersion)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", fmt.Errorf("error making request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("error reading response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			var apiErr anthropicError
			if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
				return "", fmt.Errorf("API request failed with status %d: %s: %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
			}
			return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}

		var response AnthropicResponse
		if err := json.Unmarshal(body, &response); err != nil {
			return "", fmt.Errorf("error unmarshaling response: %w", err)
		}

		var parts []string
		for _, block := range response.Content {
			if block.Type != "text" {
				continue
			}
			if text := strings.TrimSpace(block.Text); text != "" {
				parts = append(parts, text)
			}
		}

		if len(parts) == 0 {
			return "", ErrNoContent
		}

		return strings.Join(parts, " "), nil
	})
}
