package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/prodask/internal/domain"
	"github.com/kailas-cloud/prodask/internal/usecase/moderation"
)

// ModerationClient classifies queries with the provider's moderation endpoint.
type ModerationClient struct {
	client *openai.Client
	model  string
}

// NewModerationClient creates a moderation classifier. model defaults to the
// provider's stable text moderation model when empty.
func NewModerationClient(apiKey, baseURL, model string, timeout time.Duration) *ModerationClient {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	if timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	if model == "" {
		model = openai.ModerationTextStable
	}

	return &ModerationClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

// Classify implements moderation.Classifier.
func (m *ModerationClient) Classify(ctx context.Context, query string) (moderation.Verdict, error) {
	resp, err := m.client.Moderations(ctx, openai.ModerationRequest{
		Input: query,
		Model: m.model,
	})
	if err != nil {
		return moderation.Verdict{}, classifyRequestError(err)
	}
	if len(resp.Results) == 0 {
		return moderation.Verdict{}, fmt.Errorf("moderation request: empty response")
	}

	result := resp.Results[0]
	return moderation.Verdict{
		Flagged:  result.Flagged,
		Category: flaggedCategory(result.Categories),
	}, nil
}

// classifyRequestError separates transient transport failures from
// deterministic API rejections. Only the transient kind wraps
// domain.ErrModerationUnavailable, which callers may retry.
func classifyRequestError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && deterministicStatus(apiErr.HTTPStatusCode) {
		return fmt.Errorf("moderation request: %w", err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && deterministicStatus(reqErr.HTTPStatusCode) {
		return fmt.Errorf("moderation request: %w", err)
	}
	return fmt.Errorf("moderation request: %w: %w", domain.ErrModerationUnavailable, err)
}

// deterministicStatus reports whether a status code means the same request
// will fail again. Rate limiting and request timeouts are retryable.
func deterministicStatus(code int) bool {
	if code == http.StatusTooManyRequests || code == http.StatusRequestTimeout {
		return false
	}
	return code >= 400 && code < 500
}

// flaggedCategory returns the first flagged category name, for logging.
func flaggedCategory(c openai.ResultCategories) string {
	for _, pair := range []struct {
		name    string
		flagged bool
	}{
		{"hate", c.Hate},
		{"hate/threatening", c.HateThreatening},
		{"harassment", c.Harassment},
		{"harassment/threatening", c.HarassmentThreatening},
		{"self-harm", c.SelfHarm},
		{"self-harm/intent", c.SelfHarmIntent},
		{"self-harm/instructions", c.SelfHarmInstructions},
		{"sexual", c.Sexual},
		{"sexual/minors", c.SexualMinors},
		{"violence", c.Violence},
		{"violence/graphic", c.ViolenceGraphic},
	} {
		if pair.flagged {
			return pair.name
		}
	}
	return ""
}
