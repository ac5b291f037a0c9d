package retrieval

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kailas-cloud/prodask/internal/domain"
	"github.com/kailas-cloud/prodask/internal/domain/query/filter"
	"github.com/kailas-cloud/prodask/internal/domain/query/route"
)

// --- Mocks ---

type mockEmbedder struct {
	err    error
	tokens int
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: m.tokens}, nil
}

// mockRepo returns canned matches keyed by ladder stage and collection.
type mockRepo struct {
	mu      sync.Mutex
	matches map[filter.Stage]map[string][]Match
	err     error
	queries []filter.Stage
}

func (m *mockRepo) SearchKNN(
	_ context.Context, collection string, _ []float32, spec filter.Spec, _ int,
) ([]Match, error) {
	if m.err != nil {
		return nil, m.err
	}
	stage := stageOf(spec)
	m.mu.Lock()
	m.queries = append(m.queries, stage)
	m.mu.Unlock()
	return m.matches[stage][collection], nil
}

// stageOf reverses a spec back to its ladder position for test bookkeeping.
func stageOf(spec filter.Spec) filter.Stage {
	switch {
	case spec.HasTags() && spec.Price() != nil:
		return filter.StageCategoryPrice
	case spec.HasTags():
		return filter.StageCategory
	case spec.Price() != nil:
		return filter.StagePrice
	default:
		return filter.StageUnfiltered
	}
}

func doc(id string) domain.Document {
	return domain.Document{ID: id, Source: domain.SourceSpec, Text: "text " + id}
}

func fullSpec(t *testing.T) filter.Spec {
	t.Helper()
	max := 400.0
	pr, err := filter.NewPriceRange(0, &max)
	if err != nil {
		t.Fatalf("NewPriceRange: %v", err)
	}
	return filter.New(&pr, "SmartX", "Laptop")
}

func testConfig() Config {
	return Config{SpecsTopK: 5, ReviewsTopK: 8, MaxEvidence: 8}
}

// --- Tests ---

func TestRetrieve_StrictestStageWins(t *testing.T) {
	repo := &mockRepo{matches: map[filter.Stage]map[string][]Match{
		filter.StageCategoryPrice: {domain.CollectionSpecs: {{Doc: doc("a"), Score: 0.9}}},
		filter.StageCategory:      {domain.CollectionSpecs: {{Doc: doc("b"), Score: 0.8}}},
	}}
	svc := New(repo, &mockEmbedder{}, testConfig())

	res, err := svc.Retrieve(context.Background(), "q",
		route.New(route.SpecsOnly, "test"), fullSpec(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Stage() != filter.StageCategoryPrice {
		t.Errorf("stage = %q, want %q", res.Stage(), filter.StageCategoryPrice)
	}
	if len(res.Hits()) != 1 || res.Hits()[0].Document().ID != "a" {
		t.Errorf("expected only the strictest-stage hit, got %v", res.Hits())
	}
	if len(repo.queries) != 1 {
		t.Errorf("ladder must stop at the first non-empty rung, saw %v", repo.queries)
	}
}

func TestRetrieve_FallsThroughLadder(t *testing.T) {
	repo := &mockRepo{matches: map[filter.Stage]map[string][]Match{
		filter.StagePrice: {domain.CollectionSpecs: {{Doc: doc("p"), Score: 0.7}}},
	}}
	svc := New(repo, &mockEmbedder{}, testConfig())

	res, err := svc.Retrieve(context.Background(), "q",
		route.New(route.SpecsOnly, "test"), fullSpec(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Stage() != filter.StagePrice {
		t.Errorf("stage = %q, want %q", res.Stage(), filter.StagePrice)
	}
	want := []filter.Stage{filter.StageCategoryPrice, filter.StageCategory, filter.StagePrice}
	if len(repo.queries) != len(want) {
		t.Fatalf("queried stages = %v, want %v", repo.queries, want)
	}
	for i := range want {
		if repo.queries[i] != want[i] {
			t.Errorf("queried stages = %v, want %v", repo.queries, want)
			break
		}
	}
}

func TestRetrieve_MergesCollectionsDeterministically(t *testing.T) {
	repo := &mockRepo{matches: map[filter.Stage]map[string][]Match{
		filter.StageUnfiltered: {
			domain.CollectionSpecs: {{Doc: doc("s1"), Score: 0.6}},
			domain.CollectionReviews: {
				{Doc: domain.Document{ID: "r1", Source: domain.SourceReview}, Score: 0.9},
				{Doc: domain.Document{ID: "r2", Source: domain.SourceReview}, Score: 0.6},
			},
		},
	}}
	svc := New(repo, &mockEmbedder{}, testConfig())

	res, err := svc.Retrieve(context.Background(), "q",
		route.New(route.Both, "test"), filter.Spec{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := make([]string, len(res.Hits()))
	for i, h := range res.Hits() {
		got[i] = h.Document().ID
	}
	// Score descending, ties broken by document id.
	want := []string{"r1", "r2", "s1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("merged order = %v, want %v", got, want)
		}
	}
}

func TestRetrieve_TruncatesToMaxEvidence(t *testing.T) {
	var matches []Match
	for _, id := range []string{"a", "b", "c", "d"} {
		matches = append(matches, Match{Doc: doc(id), Score: 0.5})
	}
	repo := &mockRepo{matches: map[filter.Stage]map[string][]Match{
		filter.StageUnfiltered: {domain.CollectionSpecs: matches},
	}}
	cfg := testConfig()
	cfg.MaxEvidence = 2
	svc := New(repo, &mockEmbedder{}, cfg)

	res, err := svc.Retrieve(context.Background(), "q",
		route.New(route.SpecsOnly, "test"), filter.Spec{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Hits()) != 2 {
		t.Errorf("got %d hits, want 2", len(res.Hits()))
	}
}

func TestRetrieve_NoEvidence(t *testing.T) {
	repo := &mockRepo{matches: map[filter.Stage]map[string][]Match{}}
	svc := New(repo, &mockEmbedder{}, testConfig())

	_, err := svc.Retrieve(context.Background(), "q",
		route.New(route.Both, "test"), fullSpec(t))
	if !errors.Is(err, domain.ErrNoEvidence) {
		t.Fatalf("expected ErrNoEvidence, got %v", err)
	}

	// The full ladder must have been walked before giving up.
	if len(repo.queries) != 4 {
		t.Errorf("expected 4 ladder rungs queried, saw %v", repo.queries)
	}
}

func TestRetrieve_EmbedErrorIsFatal(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, &mockEmbedder{err: errors.New("provider down")}, testConfig())

	_, err := svc.Retrieve(context.Background(), "q",
		route.New(route.SpecsOnly, "test"), filter.Spec{})
	if !errors.Is(err, domain.ErrRetrievalService) {
		t.Fatalf("expected ErrRetrievalService, got %v", err)
	}
	if len(repo.queries) != 0 {
		t.Error("no search may run when embedding fails")
	}
}

func TestRetrieve_SearchErrorIsFatal(t *testing.T) {
	repo := &mockRepo{err: errors.New("store down")}
	svc := New(repo, &mockEmbedder{}, testConfig())

	_, err := svc.Retrieve(context.Background(), "q",
		route.New(route.SpecsOnly, "test"), filter.Spec{})
	if !errors.Is(err, domain.ErrRetrievalService) {
		t.Fatalf("expected ErrRetrievalService, got %v", err)
	}
}

func TestRetrieve_EmbedsOnce(t *testing.T) {
	repo := &mockRepo{matches: map[filter.Stage]map[string][]Match{
		filter.StageUnfiltered: {domain.CollectionSpecs: {{Doc: doc("a"), Score: 0.5}}},
	}}
	emb := &mockEmbedder{tokens: 7}
	svc := New(repo, emb, testConfig())

	ctx, usage := domain.NewContextWithUsage(context.Background())
	if _, err := svc.Retrieve(ctx, "q",
		route.New(route.SpecsOnly, "test"), fullSpec(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if emb.calls != 1 {
		t.Errorf("embedder called %d times, want 1", emb.calls)
	}
	if usage.EmbeddingTokens != 7 {
		t.Errorf("embedding tokens = %d, want 7", usage.EmbeddingTokens)
	}
}
