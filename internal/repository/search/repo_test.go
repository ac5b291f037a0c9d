package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/prodask/internal/db"
	"github.com/kailas-cloud/prodask/internal/domain"
	"github.com/kailas-cloud/prodask/internal/domain/query/filter"
)

// --- Mocks ---

type mockStore struct {
	result *db.SearchResult
	err    error
	query  *db.KNNQuery
}

func (m *mockStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.query = q
	return m.result, m.err
}

// --- Tests ---

func TestSearchKNN_RejectsUnknownCollection(t *testing.T) {
	store := &mockStore{result: &db.SearchResult{}}

	_, err := New(store).SearchKNN(context.Background(), "products",
		[]float32{0.1}, filter.Spec{}, 5)
	if !errors.Is(err, domain.ErrUnknownCollection) {
		t.Fatalf("error = %v, want ErrUnknownCollection", err)
	}
	if store.query != nil {
		t.Error("store must not be queried for an unknown collection")
	}
}

func TestSearchKNN_BuildsIndexName(t *testing.T) {
	store := &mockStore{result: &db.SearchResult{}}
	repo := New(store)

	_, err := repo.SearchKNN(context.Background(), domain.CollectionSpecs,
		[]float32{0.1}, filter.Spec{}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.KeyPrefix + "specs:idx"
	if store.query.IndexName != want {
		t.Errorf("index name = %q, want %q", store.query.IndexName, want)
	}
	if store.query.K != 5 {
		t.Errorf("K = %d, want 5", store.query.K)
	}
}

func TestSearchKNN_ParsesDocuments(t *testing.T) {
	store := &mockStore{result: &db.SearchResult{
		Total: 1,
		Entries: []db.SearchEntry{{
			Key:   domain.KeyPrefix + "reviews:r42",
			Score: 0.87,
			Fields: map[string]string{
				db.FieldContent:  "Very comfortable to wear.",
				db.FieldProduct:  "p7",
				db.FieldName:     "SmartX EarBuds",
				db.FieldBrand:    "SmartX",
				db.FieldCategory: "Headphones",
				db.FieldPrice:    "79.99",
				db.FieldRating:   "4.5",
				db.FieldWarranty: "1 year",
			},
		}},
	}}
	repo := New(store)

	matches, err := repo.SearchKNN(context.Background(), domain.CollectionReviews,
		[]float32{0.1}, filter.Spec{}, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}

	m := matches[0]
	if m.Score != 0.87 {
		t.Errorf("score = %g, want 0.87", m.Score)
	}
	d := m.Doc
	if d.ID != "r42" {
		t.Errorf("id = %q, want r42 (key prefix stripped)", d.ID)
	}
	if d.Source != domain.SourceReview {
		t.Errorf("source = %q, want %q", d.Source, domain.SourceReview)
	}
	if d.Text != "Very comfortable to wear." {
		t.Errorf("text = %q", d.Text)
	}
	if d.ProductID != "p7" || d.ProductName != "SmartX EarBuds" {
		t.Errorf("provenance = (%q, %q)", d.ProductID, d.ProductName)
	}
	if d.Price != 79.99 || d.Rating != 4.5 {
		t.Errorf("numerics = (%g, %g)", d.Price, d.Rating)
	}
	if d.Warranty != "1 year" {
		t.Errorf("warranty = %q", d.Warranty)
	}
}

func TestSearchKNN_MalformedNumericsLeftZero(t *testing.T) {
	store := &mockStore{result: &db.SearchResult{
		Total: 1,
		Entries: []db.SearchEntry{{
			Key: domain.KeyPrefix + "specs:s1",
			Fields: map[string]string{
				db.FieldContent: "text",
				db.FieldPrice:   "not-a-number",
			},
		}},
	}}

	matches, err := New(store).SearchKNN(context.Background(), domain.CollectionSpecs,
		[]float32{0.1}, filter.Spec{}, 5)
	if err != nil {
		t.Fatalf("malformed fields must not fail the result: %v", err)
	}
	if matches[0].Doc.Price != 0 {
		t.Errorf("price = %g, want 0", matches[0].Doc.Price)
	}
}

func TestSearchKNN_EmptyResult(t *testing.T) {
	store := &mockStore{result: &db.SearchResult{Total: 0}}

	matches, err := New(store).SearchKNN(context.Background(), domain.CollectionSpecs,
		[]float32{0.1}, filter.Spec{}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches, want 0", len(matches))
	}
}

func TestSearchKNN_StoreError(t *testing.T) {
	store := &mockStore{err: errors.New("ft.search failed")}

	if _, err := New(store).SearchKNN(context.Background(), domain.CollectionSpecs,
		[]float32{0.1}, filter.Spec{}, 5); err == nil {
		t.Error("store errors must surface")
	}
}
