// Package evidence holds ranked retrieval results and the assembled payload
// handed to the generation service.
package evidence

import (
	"sort"

	"github.com/kailas-cloud/prodask/internal/domain"
	"github.com/kailas-cloud/prodask/internal/domain/query/filter"
)

// Hit is a single retrieved document with its similarity score, the
// collection it came from, and the ladder stage that produced it.
type Hit struct {
	doc        domain.Document
	score      float64
	collection string
	stage      filter.Stage
}

// NewHit creates a retrieval hit.
func NewHit(doc domain.Document, score float64, collection string, stage filter.Stage) Hit {
	return Hit{doc: doc, score: score, collection: collection, stage: stage}
}

// Document returns the retrieved document.
func (h Hit) Document() domain.Document { return h.doc }

// Score returns the similarity score in [0,1].
func (h Hit) Score() float64 { return h.score }

// Collection returns the source collection name.
func (h Hit) Collection() string { return h.collection }

// Stage returns the fallback ladder stage that produced the hit.
func (h Hit) Stage() filter.Stage { return h.stage }

// Result is the ranked, deduplicated retrieval outcome for one query.
type Result struct {
	hits  []Hit
	stage filter.Stage
}

// NewResult sorts hits deterministically (score descending, ties by document
// id ascending), drops duplicate document ids keeping the higher-scoring hit,
// and truncates to maxHits. stage records which ladder rung succeeded.
func NewResult(hits []Hit, stage filter.Stage, maxHits int) Result {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].doc.ID < hits[j].doc.ID
	})

	seen := make(map[string]struct{}, len(hits))
	deduped := hits[:0]
	for _, h := range hits {
		if _, ok := seen[h.doc.ID]; ok {
			continue
		}
		seen[h.doc.ID] = struct{}{}
		deduped = append(deduped, h)
	}

	if maxHits > 0 && len(deduped) > maxHits {
		deduped = deduped[:maxHits]
	}

	return Result{hits: deduped, stage: stage}
}

// Hits returns the ranked hits.
func (r Result) Hits() []Hit { return r.hits }

// Stage returns the ladder stage the hits were retrieved at.
func (r Result) Stage() filter.Stage { return r.stage }

// IsEmpty reports whether no documents were retrieved.
func (r Result) IsEmpty() bool { return len(r.hits) == 0 }

// Snippet is one formatted evidence entry with provenance.
type Snippet struct {
	DocumentID string
	Source     domain.Source
	ProductID  string
	Text       string
	Score      float64
}

// Payload is the bounded evidence set handed to the generation service:
// specification snippets first, then review snippets, each group ordered by
// descending score.
type Payload struct {
	Snippets []Snippet
	Stage    filter.Stage
	Relaxed  bool
}
