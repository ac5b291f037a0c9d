package assemble

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/prodask/internal/domain"
	"github.com/kailas-cloud/prodask/internal/domain/query/evidence"
	"github.com/kailas-cloud/prodask/internal/domain/query/filter"
)

func specHit(id string, score float64) evidence.Hit {
	return evidence.NewHit(domain.Document{
		ID: id, Source: domain.SourceSpec, Text: "spec " + id,
	}, score, domain.CollectionSpecs, filter.StageUnfiltered)
}

func reviewHit(id string, score float64) evidence.Hit {
	return evidence.NewHit(domain.Document{
		ID: id, Source: domain.SourceReview, Text: "review " + id,
	}, score, domain.CollectionReviews, filter.StageUnfiltered)
}

func TestAssemble_SpecsBeforeReviews(t *testing.T) {
	result := evidence.NewResult([]evidence.Hit{
		reviewHit("r1", 0.95),
		specHit("s1", 0.7),
		reviewHit("r2", 0.6),
		specHit("s2", 0.5),
	}, filter.StageUnfiltered, 8)

	payload := New(0).Assemble(result, false)

	got := make([]string, len(payload.Snippets))
	for i, sn := range payload.Snippets {
		got[i] = sn.DocumentID
	}
	// Specs first even when a review outscores them; score order inside groups.
	want := []string{"s1", "s2", "r1", "r2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("snippet order = %v, want %v", got, want)
		}
	}
}

func TestAssemble_BudgetDropsLowestScore(t *testing.T) {
	result := evidence.NewResult([]evidence.Hit{
		specHit("keep", 0.9),
		reviewHit("drop", 0.1),
	}, filter.StageUnfiltered, 8)

	payload := New(12).Assemble(result, false)

	if len(payload.Snippets) != 1 {
		t.Fatalf("got %d snippets, want 1", len(payload.Snippets))
	}
	if payload.Snippets[0].DocumentID != "keep" {
		t.Errorf("budget must evict the lowest-scoring snippet first")
	}
}

func TestAssemble_BudgetKeepsAtLeastOne(t *testing.T) {
	result := evidence.NewResult([]evidence.Hit{specHit("only", 0.4)}, filter.StageUnfiltered, 8)

	payload := New(1).Assemble(result, false)
	if len(payload.Snippets) != 1 {
		t.Error("the best snippet survives even a tiny budget")
	}
}

func TestAssemble_MetadataLines(t *testing.T) {
	hits := []evidence.Hit{evidence.NewHit(domain.Document{
		ID:          "d1",
		Source:      domain.SourceSpec,
		Text:        "A fast ultrabook.",
		ProductID:   "p42",
		ProductName: "SmartX UltraBook",
		Brand:       "SmartX",
		Category:    "Laptop",
		Price:       999.5,
		Rating:      4.5,
		Warranty:    "2 years",
	}, 0.9, domain.CollectionSpecs, filter.StageCategory)}
	result := evidence.NewResult(hits, filter.StageCategory, 8)

	payload := New(0).Assemble(result, true)

	if len(payload.Snippets) != 1 {
		t.Fatalf("got %d snippets, want 1", len(payload.Snippets))
	}
	text := payload.Snippets[0].Text
	for _, want := range []string{
		"Product Name: SmartX UltraBook",
		"Brand: SmartX",
		"Category: Laptop",
		"Price: $999.50",
		"Rating: 4.5 out of 5",
		"Warranty: 2 years",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("snippet text missing %q:\n%s", want, text)
		}
	}

	if !payload.Relaxed {
		t.Error("relaxed flag must pass through")
	}
	if payload.Stage != filter.StageCategory {
		t.Errorf("stage = %q, want %q", payload.Stage, filter.StageCategory)
	}
	if payload.Snippets[0].ProductID != "p42" {
		t.Error("snippet must carry provenance")
	}
}

func TestAssemble_NoMetadataRepetition(t *testing.T) {
	hits := []evidence.Hit{evidence.NewHit(domain.Document{
		ID:          "d1",
		Source:      domain.SourceSpec,
		Text:        "The SmartX UltraBook by SmartX is a Laptop.",
		ProductName: "SmartX UltraBook",
		Brand:       "SmartX",
		Category:    "Laptop",
	}, 0.9, domain.CollectionSpecs, filter.StageUnfiltered)}
	result := evidence.NewResult(hits, filter.StageUnfiltered, 8)

	payload := New(0).Assemble(result, false)
	text := payload.Snippets[0].Text

	if strings.Contains(text, "Product Name:") || strings.Contains(text, "Brand:") {
		t.Errorf("metadata already present in the body must not repeat:\n%s", text)
	}
}
