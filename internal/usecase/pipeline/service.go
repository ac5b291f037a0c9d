// Package pipeline orchestrates the query flow from moderation through
// answer generation. Each query walks a fixed sequence of stages; blocked
// queries and queries with no supporting evidence terminate early with
// canonical messages so callers can tell the outcomes apart.
package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodask/internal/domain"
	"github.com/kailas-cloud/prodask/internal/domain/query/evidence"
	"github.com/kailas-cloud/prodask/internal/domain/query/filter"
	"github.com/kailas-cloud/prodask/internal/logger"
	"github.com/kailas-cloud/prodask/internal/metrics"
	"github.com/kailas-cloud/prodask/internal/usecase/moderation"
)

// State is the terminal outcome of one query.
type State string

const (
	StateGenerated  State = "generated"
	StateBlocked    State = "blocked"
	StateNoEvidence State = "no_evidence"
	StateError      State = "error"
)

// Canonical user-facing messages for non-generated outcomes. The no-evidence
// and service-error texts are deliberately distinct: one means the catalog
// has nothing, the other means a dependency failed.
const (
	blockedMessage    = "I'm sorry, but your query violates our safety guidelines. I cannot process this request."
	noEvidenceMessage = "I'm sorry, but I cannot answer your question with the information I have."
	serviceMessage    = "I'm sorry, but I encountered an error while trying to generate a response."
)

// Response is the pipeline output for one query.
type Response struct {
	Answer   string
	State    State
	Evidence evidence.Payload
	Stage    filter.Stage
	Usage    domain.TokenUsage
}

// Service wires the pipeline stages together.
type Service struct {
	moderator Moderator
	rewriter  Rewriter
	extractor Extractor
	router    Router
	retriever Retriever
	assembler Assembler
	generator Generator
	sessions  SessionLog
}

// New creates the pipeline service.
func New(
	moderator Moderator,
	rewriter Rewriter,
	extractor Extractor,
	router Router,
	retriever Retriever,
	assembler Assembler,
	generator Generator,
	sessions SessionLog,
) *Service {
	return &Service{
		moderator: moderator,
		rewriter:  rewriter,
		extractor: extractor,
		router:    router,
		retriever: retriever,
		assembler: assembler,
		generator: generator,
		sessions:  sessions,
	}
}

// Ask processes one user query end to end. It never returns an error to the
// caller: every failure mode maps to a terminal state with a canonical
// answer, and the session log records the turn regardless of outcome.
func (s *Service) Ask(ctx context.Context, sessionID, query string) Response {
	ctx, usage := domain.NewContextWithUsage(ctx)
	log := logger.FromContext(ctx).With(zap.String("session_id", sessionID))
	ctx = logger.ContextWithLogger(ctx, log)

	resp := s.process(ctx, sessionID, query)
	resp.Usage = *usage

	metrics.PipelineQueriesTotal.WithLabelValues(string(resp.State)).Inc()
	if err := s.sessions.Append(ctx, sessionID, domain.Turn{
		UserQuery: query,
		Answer:    resp.Answer,
		AskedAt:   time.Now().UTC(),
	}); err != nil {
		log.Warn("session log append failed", zap.Error(err))
	}

	log.Info("query processed",
		zap.String("state", string(resp.State)),
		zap.String("filter_stage", string(resp.Stage)),
		zap.Int("snippets", len(resp.Evidence.Snippets)),
	)
	return resp
}

func (s *Service) process(ctx context.Context, sessionID, query string) Response {
	log := logger.FromContext(ctx)

	mod := s.timedModerate(ctx, query)
	if !mod.Allowed {
		return Response{Answer: blockedMessage, State: StateBlocked}
	}

	history, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		log.Warn("session history unavailable, continuing without it", zap.Error(err))
		history = nil
	}

	rewritten := s.timedRewrite(ctx, history, query)

	start := time.Now()
	spec := s.extractor.Extract(rewritten)
	dec := s.router.Route(rewritten, spec)
	observeStage("plan", start)

	start = time.Now()
	result, err := s.retriever.Retrieve(ctx, rewritten, dec, spec)
	observeStage("retrieve", start)
	if err != nil {
		if errors.Is(err, domain.ErrNoEvidence) {
			return Response{Answer: noEvidenceMessage, State: StateNoEvidence, Stage: filter.StageUnfiltered}
		}
		log.Error("retrieval failed", zap.Error(err))
		return Response{Answer: serviceMessage, State: StateError}
	}

	payload := s.assembler.Assemble(result, spec.Relaxed(result.Stage()))

	start = time.Now()
	answer, err := s.generator.Generate(ctx, rewritten, payload, history)
	observeStage("generate", start)
	if err != nil {
		return Response{Answer: serviceMessage, State: StateError, Evidence: payload, Stage: result.Stage()}
	}

	return Response{Answer: answer, State: StateGenerated, Evidence: payload, Stage: result.Stage()}
}

func (s *Service) timedModerate(ctx context.Context, query string) moderation.Result {
	start := time.Now()
	defer observeStage("moderate", start)
	return s.moderator.Moderate(ctx, query)
}

func (s *Service) timedRewrite(ctx context.Context, history domain.History, query string) string {
	start := time.Now()
	defer observeStage("rewrite", start)
	return s.rewriter.Rewrite(ctx, history, query)
}

func observeStage(stage string, start time.Time) {
	metrics.PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
