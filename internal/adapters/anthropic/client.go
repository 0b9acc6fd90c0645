// Package anthropic implements the LLM collaborator over the Anthropic
// Messages API. Errors surfaced from here are sanitized: they never carry
// the API key, request bodies, or provider stack traces, because they end
// up persisted on failed jobs.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/slushhq/agent-ops/config"
	"github.com/slushhq/agent-ops/internal/core"
	apperrors "github.com/slushhq/agent-ops/internal/errors"
)

const (
	messagesPath = "/v1/messages"
	apiVersion   = "2023-06-01"

	// Low temperature for consistent, factual output.
	temperature = 0.1

	// truncationMarker is appended when a response exceeds the output limit.
	truncationMarker = "\n\n[Output truncated to character limit]"
)

// Client calls the Anthropic Messages API.
type Client struct {
	apiKey         string
	model          string
	baseURL        string
	maxOutputChars int
	client         *http.Client
	logger         *slog.Logger
}

// ClientOptions groups dependencies for NewClient.
type ClientOptions struct {
	Config config.LLMConfig
	Client *http.Client // Optional: defaults to a client with the configured timeout
	Logger *slog.Logger // Optional
}

// NewClient builds an Anthropic API client from configuration.
func NewClient(opts ClientOptions) (*Client, error) {
	cfg := opts.Config
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("llm api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("llm model is required")
	}

	hc := opts.Client
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		apiKey:         cfg.APIKey,
		model:          cfg.Model,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		maxOutputChars: cfg.MaxOutputChars,
		client:         hc,
		logger:         logger.With("component", "anthropic"),
	}, nil
}

var _ core.TextGenerator = (*Client)(nil)

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// GenerateText sends one prompt to the Messages API and returns the model's
// text, truncated to the configured character limit.
func (c *Client) GenerateText(ctx context.Context, params core.GenerateTextParams) (string, error) {
	reqBody := messagesRequest{
		Model: c.model,
		// Rough character to token conversion.
		MaxTokens:   c.maxOutputChars / 4,
		Temperature: temperature,
		System:      params.System,
		Messages:    []message{{Role: "user", Content: params.User}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", apperrors.Collaborator("failed to encode LLM request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(payload))
	if err != nil {
		return "", apperrors.Collaborator("failed to build LLM request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Anthropic-Version", apiVersion)

	c.logger.InfoContext(ctx, "calling LLM", "model", c.model)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", c.sanitizeTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.sanitizeStatusError(ctx, resp.StatusCode)
	}

	var decoded messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", apperrors.Collaborator("failed to decode LLM response")
	}
	if len(decoded.Content) == 0 || decoded.Content[0].Text == "" {
		return "", apperrors.Collaborator("empty response from the LLM")
	}

	text := decoded.Content[0].Text
	if len(text) > c.maxOutputChars {
		text = truncate(text, c.maxOutputChars) + truncationMarker
	}

	c.logger.InfoContext(ctx, "LLM call succeeded", "chars", len(text))
	return text, nil
}

// sanitizeTransportError converts client/network failures into messages safe
// to persist on a job record.
func (c *Client) sanitizeTransportError(ctx context.Context, err error) error {
	c.logger.ErrorContext(ctx, "LLM request failed", "err", err)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.Timeout("LLM request timed out, try again")
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.Timeout("LLM request canceled")
	}
	return apperrors.Collaborator("failed to connect to the LLM service")
}

func (c *Client) sanitizeStatusError(ctx context.Context, status int) error {
	c.logger.ErrorContext(ctx, "LLM returned error status", "status", status)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.Collaborator("LLM authentication failed, check the API key configuration")
	case status == http.StatusTooManyRequests:
		return apperrors.Collaborator("LLM rate limit exceeded, try again later")
	case status >= 500:
		return apperrors.Collaborator("LLM service error, try again later")
	default:
		return apperrors.Collaborator(fmt.Sprintf("LLM request rejected (status %d)", status))
	}
}

// truncate cuts s to at most max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut]
}
