// Package completion implements the text-completion boundary used by the
// semantic classifier. The client speaks the OpenAI-compatible chat
// completions protocol and requests JSON-object responses so downstream
// parsing is structural rather than free-form.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Boundary errors. ErrAuthRejected is terminal; the others are retryable.
var (
	ErrAuthRejected = errors.New("completion service rejected credentials")
	ErrRateLimited  = errors.New("completion service rate limit exceeded")
	ErrUnavailable  = errors.New("completion service unavailable")
	ErrCompletion   = errors.New("completion request failed")
	ErrEmptyChoice  = errors.New("completion response contained no choices")
)

// Request carries one structured judgment request: a system role framing the
// task and a user prompt with the material to judge.
type Request struct {
	System string
	User   string
}

// System defines the public contract for completion calls.
type System interface {
	Complete(ctx context.Context, req Request) (string, error)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []message      `json:"messages"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type client struct {
	cfg    *Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a chat-completions client implementing the System
// interface. One Complete call performs one outbound request; retries are
// owned by the caller's retry controller.
func NewClient(cfg *Config, logger *slog.Logger) System {
	return &client{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.TimeoutDuration(),
		},
		logger: logger.With("system", "completion"),
	}
}

func (c *client) Complete(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		MaxTokens:      c.cfg.MaxTokens,
		Temperature:    c.cfg.Temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %w", ErrCompletion, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", ErrCompletion, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrCompletion, err)
	}

	if len(parsed.Choices) == 0 {
		return "", ErrEmptyChoice
	}

	content := parsed.Choices[0].Message.Content
	c.logger.DebugContext(
		ctx, "completion received",
		"model", c.cfg.Model,
		"content_len", len(content),
	)

	return content, nil
}

func classifyStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuthRejected, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrCompletion, resp.StatusCode, detail)
	}
}
