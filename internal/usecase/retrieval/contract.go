package retrieval

import (
	"context"

	"github.com/kailas-cloud/prodask/internal/domain"
	"github.com/kailas-cloud/prodask/internal/domain/query/filter"
)

// Match is a raw similarity hit from one collection.
type Match struct {
	Doc   domain.Document
	Score float64
}

// Repository is the vector store contract for constrained KNN search.
type Repository interface {
	SearchKNN(ctx context.Context, collection string, vector []float32, spec filter.Spec, k int) ([]Match, error)
}
