package domain

import "context"

type tokenUsageKey struct{}

// TokenUsage collects provider token usage for a single query pipeline run.
// The handler puts a mutable pointer into the context before invoking the
// pipeline; stages write after each provider call; the handler reads it for
// the response.
type TokenUsage struct {
	EmbeddingTokens  int
	CompletionTokens int
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *TokenUsage) {
	u := &TokenUsage{}
	return context.WithValue(ctx, tokenUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *TokenUsage {
	u, _ := ctx.Value(tokenUsageKey{}).(*TokenUsage)
	return u
}

// AddEmbeddingTokens records tokens consumed by embedding calls.
func (u *TokenUsage) AddEmbeddingTokens(n int) {
	if u != nil {
		u.EmbeddingTokens += n
	}
}

// AddCompletionTokens records tokens consumed by chat completion calls.
func (u *TokenUsage) AddCompletionTokens(n int) {
	if u != nil {
		u.CompletionTokens += n
	}
}
