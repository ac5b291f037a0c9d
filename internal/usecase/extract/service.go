// Package extract parses rewritten queries into structured filter constraints.
package extract

import (
	"regexp"
	"strconv"

	"github.com/kailas-cloud/prodask/internal/domain"
	"github.com/kailas-cloud/prodask/internal/domain/query/filter"
)

// Service recognizes price expressions and vocabulary-validated brand and
// category mentions. It is pure and deterministic: the same query always
// yields a structurally identical Spec.
type Service struct {
	vocab domain.Vocabulary
}

// New creates a filter extractor over the loaded vocabulary snapshot.
func New(vocab domain.Vocabulary) *Service {
	return &Service{vocab: vocab}
}

// Price expression patterns. Bounded ranges are tried before single bounds so
// "between $200 and $400" does not match as a bare lower bound.
var (
	betweenRe = regexp.MustCompile(`(?i)\b(?:between|from)\s+\$?(\d+(?:\.\d+)?)\s+(?:and|to)\s+\$?(\d+(?:\.\d+)?)`)
	upperRe   = regexp.MustCompile(`(?i)\b(?:under|below|less than|cheaper than|at most|up to|no more than|within)\s+\$?(\d+(?:\.\d+)?)`)
	lowerRe   = regexp.MustCompile(`(?i)\b(?:over|above|more than|at least|starting at)\s+\$?(\d+(?:\.\d+)?)`)

	tokenRe = regexp.MustCompile(`[A-Za-z][A-Za-z0-9]*`)
)

// Extract parses the query into a Spec. Tokens that do not resolve against
// the vocabulary are dropped, never coerced to a near match: a false-positive
// filter silently empties result sets, a dropped one only widens them.
func (s *Service) Extract(query string) filter.Spec {
	price := s.extractPrice(query)
	brand, category := s.extractTags(query)
	return filter.New(price, brand, category)
}

func (s *Service) extractPrice(query string) *filter.PriceRange {
	if m := betweenRe.FindStringSubmatch(query); m != nil {
		lo, err1 := strconv.ParseFloat(m[1], 64)
		hi, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			if r, err := filter.NewPriceRange(lo, &hi); err == nil {
				return &r
			}
		}
	}

	var min float64
	var max *float64
	var bounded bool

	if m := upperRe.FindStringSubmatch(query); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			max = &v
			bounded = true
		}
	}
	if m := lowerRe.FindStringSubmatch(query); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			min = v
			bounded = true
		}
	}
	if !bounded {
		return nil
	}

	// An upper bound alone implies a lower bound of zero.
	r, err := filter.NewPriceRange(min, max)
	if err != nil {
		return nil
	}
	return &r
}

// extractTags scans unigrams and bigrams against the vocabulary. The first
// match wins per field; queries rarely name two brands, and when they do the
// semantic search still sees the full text.
func (s *Service) extractTags(query string) (brand, category string) {
	tokens := tokenRe.FindAllString(query, -1)

	for i, tok := range tokens {
		if brand == "" {
			if b, ok := s.vocab.MatchBrand(tok); ok {
				brand = b
			} else if i+1 < len(tokens) {
				if b, ok := s.vocab.MatchBrand(tok + " " + tokens[i+1]); ok {
					brand = b
				}
			}
		}
		if category == "" {
			if c, ok := s.vocab.MatchCategory(tok); ok {
				category = c
			} else if i+1 < len(tokens) {
				if c, ok := s.vocab.MatchCategory(tok + " " + tokens[i+1]); ok {
					category = c
				}
			}
		}
		if brand != "" && category != "" {
			break
		}
	}
	return brand, category
}
