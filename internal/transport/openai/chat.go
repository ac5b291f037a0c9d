package openai

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodask/internal/domain"
)

// ChatClient is a chat completion provider using the OpenAI-compatible API.
// Temperature is pinned to zero: both rewriting and answer generation need
// reproducible output.
type ChatClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewChatClient creates an OpenAI-compatible chat completion provider.
func NewChatClient(apiKey, baseURL, model string, timeout time.Duration, logger *zap.Logger) *ChatClient {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	if timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	}

	return &ChatClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}
}

// Complete sends a system+user message pair and returns the model output.
// Completion token usage is recorded on the request-scoped usage counter.
func (c *ChatClient) Complete(ctx context.Context, system, user string) (string, error) {
	start := time.Now()

	// The client library drops a literal zero temperature from the request
	// payload, leaving the provider default in effect. Smallest nonzero
	// float32 is its convention for requesting an effective zero.
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: math.SmallestNonzeroFloat32,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}

	domain.UsageFromContext(ctx).AddCompletionTokens(resp.Usage.CompletionTokens)

	c.logger.Debug("chat completion finished",
		zap.String("model", c.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *ChatClient) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
