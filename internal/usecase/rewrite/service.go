// Package rewrite turns a follow-up query into a self-contained one.
package rewrite

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodask/internal/domain"
	"github.com/kailas-cloud/prodask/internal/logger"
)

const systemPrompt = `You rewrite the user's latest question so it can be understood without the conversation. ` +
	`Resolve pronouns and references like "it", "its", "that one" or "the second one" against the conversation, ` +
	`keep the question's intent and constraints unchanged, and add nothing else. ` +
	`Reply with the rewritten question only.`

// Service produces a context-free reformulation of the latest query. It is
// advisory: any failure degrades to the original query.
type Service struct {
	completer Completer
	window    int
}

// New creates a rewriter. window is the number of trailing conversation turns
// passed to the completion service.
func New(completer Completer, window int) *Service {
	return &Service{completer: completer, window: window}
}

// Rewrite resolves anaphora against the last turns of the conversation.
// Empty history is the identity case: the query is returned verbatim without
// calling the service. A service error is logged at warn level and the
// original query is returned.
func (s *Service) Rewrite(ctx context.Context, history domain.History, query string) string {
	if len(history) == 0 {
		return query
	}

	log := logger.FromContext(ctx)

	rewritten, err := s.completer.Complete(ctx, systemPrompt, s.prompt(history, query))
	if err != nil {
		log.Warn("rewrite failed, continuing with original query",
			zap.Error(fmt.Errorf("%w: %w", domain.ErrRewriteFailed, err)))
		return query
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		log.Warn("rewriter returned empty output, continuing with original query")
		return query
	}

	log.Debug("query rewritten",
		zap.String("original", query),
		zap.String("rewritten", rewritten),
	)
	return rewritten
}

func (s *Service) prompt(history domain.History, query string) string {
	var b strings.Builder
	b.WriteString("Conversation:\n")
	for _, turn := range history.Window(s.window) {
		fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", turn.UserQuery, turn.Answer)
	}
	fmt.Fprintf(&b, "\nLatest question: %s", query)
	return b.String()
}
