// Package claude wraps the Anthropic messages API for the small direct
// model calls the server makes outside the planning stream: goal
// classification, intro messages, and goal rewriting.
package claude

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

	"career-spark/internal/textnorm"
)

const (
	anthropicAPIURL     = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
	defaultModel        = "claude-sonnet-4-6"
)

// ErrNotConfigured is returned when no API key is set. Callers with a
// heuristic fallback check for it.
var ErrNotConfigured = errors.New("claude API key not configured")

// Service provides direct Claude chat calls.
type Service struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewService creates a Claude service. model may be empty to use the default.
func NewService(apiKey, model string) *Service {
	return &Service{
		apiKey:  apiKey,
		model:   model,
		baseURL: anthropicAPIURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// WithBaseURL overrides the API endpoint. Used in tests.
func (s *Service) WithBaseURL(url string) *Service {
	s.baseURL = url
	return s
}

// chatParams is one single-turn completion request.
type chatParams struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// anthropicRequest is the request format for the Anthropic API.
type anthropicRequest struct {
	Model       string         `json:"model"`
	MaxTokens   int            `json:"max_tokens"`
	System      string         `json:"system,omitempty"`
	Temperature float64        `json:"temperature"`
	Messages    []anthropicMsg `json:"messages"`
}

type anthropicMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the response format from the Anthropic API.
type anthropicResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// chat performs a single-turn completion and returns the concatenated text.
func (s *Service) chat(ctx context.Context, p chatParams) (string, error) {
	if s.apiKey == "" {
		return "", ErrNotConfigured
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = 300
	}

	reqBody := anthropicRequest{
		Model:       s.resolvedModel(),
		MaxTokens:   p.MaxTokens,
		System:      p.System,
		Temperature: p.Temperature,
		Messages: []anthropicMsg{
			{Role: "user", Content: p.Prompt},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	var textParts []string
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			textParts = append(textParts, block.Text)
		}
	}
	return textnorm.TrimLeadingBlankLines(strings.Join(textParts, "\n")), nil
}

func (s *Service) resolvedModel() string {
	model := strings.TrimSpace(s.model)
	if model == "" {
		return defaultModel
	}
	return model
}
