// Package generate produces the grounded answer from assembled evidence.
package generate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodask/internal/domain"
	"github.com/kailas-cloud/prodask/internal/domain/query/evidence"
	"github.com/kailas-cloud/prodask/internal/logger"
)

const systemPrompt = `You are a specialized product inquiry assistant. Your primary and ONLY role is to answer user questions based on the 'Retrieved Documents' provided below.

Follow these rules strictly:
1. Base your entire response on the information found within the 'Retrieved Documents'. Do not use any external knowledge.
2. If there are no documents or the documents do not contain the information needed to answer the query, you MUST respond with: "I'm sorry, but I cannot answer your question with the information I have."
3. If the documents contain relevant information, use it to construct a clear and concise answer. The documents may include metadata such as price, product name, brand, and category, as well as product descriptions, features, and customer reviews.
4. Some documents may not be fully relevant; carefully select and synthesize information only from the relevant parts.
5. Do not fabricate or assume any information not present in the documents.
6. Analyze the chat history provided under 'Chat History' for conversational context, but do not use it as a source for answers.
7. Respond in a friendly and helpful tone, with concise answers directly related to the query.
8. Always format prices with a dollar sign and two decimal places.
9. Do not use the term 'Retrieved Documents' in your response. It is only for your reference.

Retrieved Documents:
` + "```" + `
%s
` + "```" + `

Chat History:
%s`

// Service turns an evidence payload and conversation history into an answer.
type Service struct {
	completer Completer
	window    int
}

// New creates a generation service. window bounds how many prior turns are
// surfaced to the model as conversational context.
func New(completer Completer, window int) *Service {
	return &Service{completer: completer, window: window}
}

// Generate asks the model for an answer grounded in the payload. The payload
// text is passed verbatim so provenance metadata survives into the prompt.
func (s *Service) Generate(
	ctx context.Context, query string, payload evidence.Payload, history domain.History,
) (string, error) {
	answer, err := s.completer.Complete(ctx, s.prompt(payload, history), query)
	if err != nil {
		logger.FromContext(ctx).Error("answer generation failed", zap.Error(err))
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationService, err)
	}
	return strings.TrimSpace(answer), nil
}

func (s *Service) prompt(payload evidence.Payload, history domain.History) string {
	docs := make([]string, 0, len(payload.Snippets))
	for _, sn := range payload.Snippets {
		docs = append(docs, sn.Text)
	}

	var transcript []string
	for _, turn := range history.Window(s.window) {
		transcript = append(transcript,
			fmt.Sprintf("User: %s\nAssistant: %s", turn.UserQuery, turn.Answer))
	}

	return fmt.Sprintf(systemPrompt,
		strings.Join(docs, "\n\n---\n\n"),
		strings.Join(transcript, "\n"))
}
