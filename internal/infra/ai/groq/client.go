package groq

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	domain "github.com/compliance-copilot/backend/internal/domain/analysis"
	"github.com/compliance-copilot/backend/internal/infra/ai/prompt"
)

const maxTokens = 2048

// Client talks to Groq through its OpenAI-compatible chat completions API.
type Client struct {
	*openai.Client
	Model   string
	Timeout time.Duration
}

func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		Client:  openai.NewClientWithConfig(cfg),
		Model:   model,
		Timeout: timeout,
	}
}

// Analyze runs the standard compliance prompt over the document text.
func (c *Client) Analyze(ctx context.Context, text string) (string, error) {
	return c.complete(ctx, prompt.SystemPrompt(), prompt.UserPrompt(text), 0.3)
}

// AnalyzeStrict is the repair attempt: same document, stricter instruction,
// zero temperature.
func (c *Client) AnalyzeStrict(ctx context.Context, text string) (string, error) {
	return c.complete(ctx, prompt.StrictSystemPrompt(), prompt.StrictUserPrompt(text), 0)
}

func (c *Client) complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	resp, err := c.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.Model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.E(domain.CodeUpstreamError, "model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 30 * time.Second
}

// classify maps upstream failures onto the pipeline taxonomy: bad credentials
// become UNAUTHORIZED, everything else (timeouts, network, 5xx) UPSTREAM_ERROR.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return domain.Wrap(domain.CodeUnauthorized, "model API credentials rejected", err)
		}
		return domain.Wrap(domain.CodeUpstreamError, "model API request failed", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.Wrap(domain.CodeUpstreamError, "model API request timed out", err)
	}
	return domain.Wrap(domain.CodeUpstreamError, "model API unreachable", err)
}
