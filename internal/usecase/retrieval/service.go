// Package retrieval walks the filter fallback ladder over the routed
// collections and merges per-collection similarity hits deterministically.
package retrieval

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodask/internal/domain"
	"github.com/kailas-cloud/prodask/internal/domain/query/evidence"
	"github.com/kailas-cloud/prodask/internal/domain/query/filter"
	"github.com/kailas-cloud/prodask/internal/domain/query/route"
	"github.com/kailas-cloud/prodask/internal/logger"
	"github.com/kailas-cloud/prodask/internal/metrics"
)

// Config bounds candidate counts per collection and total evidence size.
// Timeout, when set, caps the whole embed-and-search walk.
type Config struct {
	SpecsTopK   int
	ReviewsTopK int
	MaxEvidence int
	Timeout     time.Duration
}

// Service retrieves grounding documents for a rewritten query.
type Service struct {
	repo  Repository
	embed domain.Embedder
	cfg   Config
}

// New creates a retrieval service.
func New(repo Repository, embed domain.Embedder, cfg Config) *Service {
	return &Service{repo: repo, embed: embed, cfg: cfg}
}

// Retrieve embeds the query once and walks the ladder strictest-first,
// stopping at the first rung with at least one hit. Per-collection searches
// within a rung run concurrently; the merge is deterministic (score
// descending, ties by document id) so concurrency never changes the ranking.
// A store or embedding failure is fatal for the query; an exhausted ladder
// returns domain.ErrNoEvidence.
func (s *Service) Retrieve(
	ctx context.Context, query string, dec route.Decision, spec filter.Spec,
) (evidence.Result, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	embRes, err := s.embed.Embed(ctx, query)
	if err != nil {
		return evidence.Result{}, fmt.Errorf("%w: embed query: %w", domain.ErrRetrievalService, err)
	}
	domain.UsageFromContext(ctx).AddEmbeddingTokens(embRes.TotalTokens)

	collections := dec.Collections()
	log := logger.FromContext(ctx)

	for _, step := range spec.Ladder() {
		hits, err := s.searchStep(ctx, collections, embRes.Embedding, step)
		if err != nil {
			return evidence.Result{}, err
		}
		if len(hits) == 0 {
			log.Debug("ladder stage empty, relaxing",
				zap.String("stage", string(step.Stage())))
			continue
		}

		result := evidence.NewResult(hits, step.Stage(), s.cfg.MaxEvidence)
		metrics.RetrievalLadderStageTotal.WithLabelValues(string(step.Stage())).Inc()
		metrics.RetrievalDocuments.Observe(float64(len(result.Hits())))
		log.Info("retrieval complete",
			zap.String("stage", string(step.Stage())),
			zap.Strings("collections", collections),
			zap.Int("documents", len(result.Hits())),
		)
		return result, nil
	}

	return evidence.Result{}, domain.ErrNoEvidence
}

// searchStep queries every routed collection at one ladder rung. Searches are
// independent and run in parallel; slot-indexed collection keeps the
// pre-merge order stable regardless of completion order.
func (s *Service) searchStep(
	ctx context.Context, collections []string, vector []float32, step filter.Step,
) ([]evidence.Hit, error) {
	perColl := make([][]Match, len(collections))
	errs := make([]error, len(collections))

	var wg sync.WaitGroup
	for i, coll := range collections {
		wg.Add(1)
		go func(i int, coll string) {
			defer wg.Done()
			perColl[i], errs[i] = s.repo.SearchKNN(ctx, coll, vector, step.Spec(), s.topK(coll))
		}(i, coll)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("%w: search %s: %w", domain.ErrRetrievalService, collections[i], err)
		}
	}

	var hits []evidence.Hit
	for i, coll := range collections {
		for _, m := range perColl[i] {
			hits = append(hits, evidence.NewHit(m.Doc, m.Score, coll, step.Stage()))
		}
	}
	return hits, nil
}

func (s *Service) topK(collection string) int {
	if collection == domain.CollectionReviews {
		return s.cfg.ReviewsTopK
	}
	return s.cfg.SpecsTopK
}
