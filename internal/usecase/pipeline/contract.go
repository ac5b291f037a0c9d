package pipeline

import (
	"context"

	"github.com/kailas-cloud/prodask/internal/domain"
	"github.com/kailas-cloud/prodask/internal/domain/query/evidence"
	"github.com/kailas-cloud/prodask/internal/domain/query/filter"
	"github.com/kailas-cloud/prodask/internal/domain/query/route"
	"github.com/kailas-cloud/prodask/internal/usecase/moderation"
)

// Moderator gates a raw query before any model sees it.
type Moderator interface {
	Moderate(ctx context.Context, query string) moderation.Result
}

// Rewriter resolves conversational references into a self-contained query.
type Rewriter interface {
	Rewrite(ctx context.Context, history domain.History, query string) string
}

// Extractor pulls structured filter constraints out of a query.
type Extractor interface {
	Extract(query string) filter.Spec
}

// Router decides which collections a query searches.
type Router interface {
	Route(query string, spec filter.Spec) route.Decision
}

// Retriever runs the filtered vector search with fallback.
type Retriever interface {
	Retrieve(ctx context.Context, query string, dec route.Decision, spec filter.Spec) (evidence.Result, error)
}

// Assembler formats ranked hits into the bounded payload for generation.
type Assembler interface {
	Assemble(result evidence.Result, relaxed bool) evidence.Payload
}

// Generator produces the grounded answer.
type Generator interface {
	Generate(ctx context.Context, query string, payload evidence.Payload, history domain.History) (string, error)
}

// SessionLog persists conversation turns per session.
type SessionLog interface {
	History(ctx context.Context, sessionID string) (domain.History, error)
	Append(ctx context.Context, sessionID string, turn domain.Turn) error
}
