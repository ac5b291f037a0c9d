// Package assemble formats retrieval results into the bounded evidence
// payload handed to the generation service.
package assemble

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/prodask/internal/domain"
	"github.com/kailas-cloud/prodask/internal/domain/query/evidence"
)

// Service builds evidence payloads. Ordering is stable: specification
// snippets precede review snippets, each group in descending score order, so
// identical retrieval results always produce the identical payload.
type Service struct {
	maxChars int
}

// New creates an assembler with a character budget for the whole payload.
func New(maxChars int) *Service {
	return &Service{maxChars: maxChars}
}

// Assemble formats each hit with its provenance and metadata. relaxed marks
// payloads whose filters were loosened by the fallback ladder so the caller
// can disclose it. When the character budget is exceeded, the lowest-scoring
// snippets are dropped first, regardless of group.
func (s *Service) Assemble(result evidence.Result, relaxed bool) evidence.Payload {
	var snippets []evidence.Snippet

	// Hits are already ranked; appending specs then reviews keeps each
	// group score-descending.
	for _, source := range []domain.Source{domain.SourceSpec, domain.SourceReview} {
		for _, hit := range result.Hits() {
			doc := hit.Document()
			if doc.Source != source {
				continue
			}
			snippets = append(snippets, evidence.Snippet{
				DocumentID: doc.ID,
				Source:     doc.Source,
				ProductID:  doc.ProductID,
				Text:       formatSnippet(doc),
				Score:      hit.Score(),
			})
		}
	}

	snippets = s.enforceBudget(snippets)

	return evidence.Payload{
		Snippets: snippets,
		Stage:    result.Stage(),
		Relaxed:  relaxed,
	}
}

// enforceBudget drops the globally lowest-scoring snippet until the payload
// fits. Group ordering of the survivors is preserved.
func (s *Service) enforceBudget(snippets []evidence.Snippet) []evidence.Snippet {
	if s.maxChars <= 0 {
		return snippets
	}
	total := 0
	for _, sn := range snippets {
		total += len(sn.Text)
	}
	for total > s.maxChars && len(snippets) > 1 {
		lowest := 0
		for i, sn := range snippets {
			if sn.Score < snippets[lowest].Score {
				lowest = i
			}
		}
		total -= len(snippets[lowest].Text)
		snippets = append(snippets[:lowest], snippets[lowest+1:]...)
	}
	return snippets
}

// formatSnippet renders the document body plus the metadata the generator
// needs for price and rating questions. Fields already present verbatim in
// the body are not repeated.
func formatSnippet(doc domain.Document) string {
	var meta []string
	if doc.ProductName != "" && !strings.Contains(doc.Text, doc.ProductName) {
		meta = append(meta, "Product Name: "+doc.ProductName)
	}
	if doc.Brand != "" && !strings.Contains(doc.Text, doc.Brand) {
		meta = append(meta, "Brand: "+doc.Brand)
	}
	if doc.Category != "" && !strings.Contains(doc.Text, doc.Category) {
		meta = append(meta, "Category: "+doc.Category)
	}
	if doc.Price > 0 {
		meta = append(meta, fmt.Sprintf("Price: $%.2f", doc.Price))
	}
	if doc.Rating > 0 {
		meta = append(meta, fmt.Sprintf("Rating: %g out of 5", doc.Rating))
	}
	if doc.Warranty != "" {
		meta = append(meta, "Warranty: "+doc.Warranty)
	}

	if len(meta) == 0 {
		return doc.Text
	}
	return doc.Text + "\n" + strings.Join(meta, ", ")
}
