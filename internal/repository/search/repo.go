// Package search adapts the store's raw KNN results into domain documents.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/prodask/internal/db"
	"github.com/kailas-cloud/prodask/internal/domain"
	"github.com/kailas-cloud/prodask/internal/domain/query/filter"
	"github.com/kailas-cloud/prodask/internal/usecase/retrieval"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/retrieval.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchKNN performs a filtered vector similarity search on one collection
// and maps the hits into documents tagged with their source.
func (r *Repo) SearchKNN(
	ctx context.Context, collection string,
	vector []float32, spec filter.Spec, k int,
) ([]retrieval.Match, error) {
	if collection != domain.CollectionSpecs && collection != domain.CollectionReviews {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCollection, collection)
	}

	indexName := fmt.Sprintf("%s%s:idx", domain.KeyPrefix, collection)

	q := &db.KNNQuery{
		IndexName: indexName,
		Filters:   spec,
		Vector:    vector,
		K:         k,
		ReturnFields: []string{
			db.FieldContent, db.FieldBrand, db.FieldCategory, db.FieldPrice,
			db.FieldRating, db.FieldProduct, db.FieldName, db.FieldWarranty,
		},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", collection, err)
	}

	return parseMatches(sr, collection), nil
}

// parseMatches converts db.SearchResult entries into retrieval matches.
func parseMatches(sr *db.SearchResult, collection string) []retrieval.Match {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	prefix := fmt.Sprintf("%s%s:", domain.KeyPrefix, collection)
	source := domain.CollectionSource(collection)
	matches := make([]retrieval.Match, 0, len(sr.Entries))

	for _, entry := range sr.Entries {
		doc := parseEntryFields(strings.TrimPrefix(entry.Key, prefix), source, entry)
		matches = append(matches, retrieval.Match{Doc: doc, Score: entry.Score})
	}

	return matches
}

// parseEntryFields maps flat hash fields into a document. Malformed numeric
// fields are left zero rather than failing the whole result.
func parseEntryFields(docID string, source domain.Source, entry db.SearchEntry) domain.Document {
	doc := domain.Document{ID: docID, Source: source}

	for k, v := range entry.Fields {
		switch k {
		case db.FieldContent:
			doc.Text = v
		case db.FieldProduct:
			doc.ProductID = v
		case db.FieldName:
			doc.ProductName = v
		case db.FieldBrand:
			doc.Brand = v
		case db.FieldCategory:
			doc.Category = v
		case db.FieldWarranty:
			doc.Warranty = v
		case db.FieldPrice:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				doc.Price = f
			}
		case db.FieldRating:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				doc.Rating = f
			}
		}
	}

	return doc
}
