package db

import "github.com/kailas-cloud/prodask/internal/domain/query/filter"

// Metadata field names in the FT index schema. The offline ETL writes these
// names; the fallback ladder's pre-filters depend on them.
const (
	FieldContent  = "__content"
	FieldBrand    = "brand"
	FieldCategory = "category"
	FieldPrice    = "price"
	FieldRating   = "rating"
	FieldProduct  = "product_id"
	FieldName     = "product_name"
	FieldWarranty = "warranty"
)

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filters      filter.Spec
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
