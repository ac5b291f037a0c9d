// Package route holds the collection routing decision for a query.
package route

import "github.com/kailas-cloud/prodask/internal/domain"

// Target names which collection(s) a query should search.
type Target string

// Routing targets.
const (
	SpecsOnly   Target = "specs_only"
	ReviewsOnly Target = "reviews_only"
	Both        Target = "both"
)

// Decision is a routing verdict plus the signal that triggered it. The router
// is a heuristic keyword dispatcher; the reason makes its choice auditable.
type Decision struct {
	target Target
	reason string
}

// New creates a routing decision.
func New(target Target, reason string) Decision {
	return Decision{target: target, reason: reason}
}

// Target returns the routing target.
func (d Decision) Target() Target { return d.target }

// Reason returns the keyword signal that triggered the decision.
func (d Decision) Reason() string { return d.reason }

// Collections expands the target into concrete collection names, specs first.
func (d Decision) Collections() []string {
	switch d.target {
	case SpecsOnly:
		return []string{domain.CollectionSpecs}
	case ReviewsOnly:
		return []string{domain.CollectionReviews}
	default:
		return []string{domain.CollectionSpecs, domain.CollectionReviews}
	}
}
