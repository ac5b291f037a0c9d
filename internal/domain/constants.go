package domain

// KeyPrefix namespaces all redis keys owned by prodask.
const KeyPrefix = "prodask:"

// Source identifies which catalog partition a document came from.
type Source string

// Document sources.
const (
	SourceSpec   Source = "spec"
	SourceReview Source = "review"
)

// Collection names the offline ETL populates. Index and key naming follow
// <KeyPrefix><collection>:idx and <KeyPrefix><collection>:<doc id>.
const (
	CollectionSpecs   = "specs"
	CollectionReviews = "reviews"
)

// CollectionSource maps a collection name to the source type of its documents.
func CollectionSource(collection string) Source {
	if collection == CollectionReviews {
		return SourceReview
	}
	return SourceSpec
}
