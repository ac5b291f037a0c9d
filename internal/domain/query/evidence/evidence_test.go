package evidence

import (
	"testing"

	"github.com/kailas-cloud/prodask/internal/domain"
	"github.com/kailas-cloud/prodask/internal/domain/query/filter"
)

func hit(id string, score float64) Hit {
	return NewHit(domain.Document{ID: id, Source: domain.SourceSpec}, score, domain.CollectionSpecs, filter.StageUnfiltered)
}

func TestNewResult_RanksByScoreThenID(t *testing.T) {
	r := NewResult([]Hit{
		hit("b", 0.5),
		hit("c", 0.9),
		hit("a", 0.5),
	}, filter.StageUnfiltered, 0)

	got := make([]string, len(r.Hits()))
	for i, h := range r.Hits() {
		got[i] = h.Document().ID
	}

	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ranking = %v, want %v", got, want)
		}
	}
}

func TestNewResult_DedupeKeepsHigherScore(t *testing.T) {
	r := NewResult([]Hit{
		hit("a", 0.3),
		hit("a", 0.8),
		hit("b", 0.5),
	}, filter.StageCategory, 0)

	if len(r.Hits()) != 2 {
		t.Fatalf("got %d hits, want 2", len(r.Hits()))
	}
	if r.Hits()[0].Document().ID != "a" || r.Hits()[0].Score() != 0.8 {
		t.Errorf("expected the higher-scoring duplicate to survive, got %s %g",
			r.Hits()[0].Document().ID, r.Hits()[0].Score())
	}
}

func TestNewResult_Truncates(t *testing.T) {
	r := NewResult([]Hit{
		hit("a", 0.9), hit("b", 0.8), hit("c", 0.7), hit("d", 0.6),
	}, filter.StagePrice, 2)

	if len(r.Hits()) != 2 {
		t.Fatalf("got %d hits, want 2", len(r.Hits()))
	}
	if r.Hits()[1].Document().ID != "b" {
		t.Errorf("truncation should keep the best-scoring hits")
	}
	if r.Stage() != filter.StagePrice {
		t.Errorf("stage = %q, want %q", r.Stage(), filter.StagePrice)
	}
}

func TestNewResult_Empty(t *testing.T) {
	r := NewResult(nil, filter.StageUnfiltered, 8)
	if !r.IsEmpty() {
		t.Error("expected empty result")
	}
}
