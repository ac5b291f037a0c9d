// Package route decides which collections a query should search.
package route

import (
	"strings"

	"github.com/kailas-cloud/prodask/internal/domain/query/filter"
	"github.com/kailas-cloud/prodask/internal/domain/query/route"
)

// Signal keyword lists, checked as substrings of the lowercased query.
// This is an ordered heuristic rule set, not a learned classifier; a scored
// router can replace the Service behind the same contract.
var (
	// Explicit review-seeking phrases: the user asks for what customers said.
	reviewSignals = []string{
		"review", "customer", "feedback", "complaint", "say about",
		"opinion", "experience",
	}
	// Soft opinion cues: a judgment question that reviews answer best but
	// specifications still inform (fit, quality, value).
	opinionSignals = []string{
		"think", "worth it", "comfortable", "reliable", "satisfied",
		"happy with", "recommend", "good for",
	}
	// Catalog/spec cues: availability and product-detail questions.
	specSignals = []string{
		"do you have", "what ", "which ", "spec", "feature", "available",
		"technical detail", "how much", "price of", "compare", "warranty",
	}
)

// Service routes queries to collections by keyword signals.
type Service struct{}

// New creates a router.
func New() *Service {
	return &Service{}
}

// Route classifies the query. Explicit review requests go to reviews only and
// pure catalog questions to specs only. Soft opinion cues, mixed signals, or
// no signal at all resolve to both: a later ranking stage can discard
// low-relevance documents, but a wrongly narrow route discards an entire
// collection permanently.
func (s *Service) Route(query string, _ filter.Spec) route.Decision {
	q := strings.ToLower(query)

	reviewCue := firstMatch(q, reviewSignals)
	opinionCue := firstMatch(q, opinionSignals)
	specCue := firstMatch(q, specSignals)

	switch {
	case reviewCue != "" && specCue != "":
		return route.New(route.Both, "mixed signals: "+reviewCue+", "+specCue)
	case reviewCue != "":
		return route.New(route.ReviewsOnly, "review signal: "+reviewCue)
	case opinionCue != "":
		return route.New(route.Both, "opinion signal: "+opinionCue)
	case specCue != "":
		return route.New(route.SpecsOnly, "spec signal: "+specCue)
	default:
		return route.New(route.Both, "no signal")
	}
}

func firstMatch(q string, signals []string) string {
	for _, sig := range signals {
		if strings.Contains(q, sig) {
			return sig
		}
	}
	return ""
}
