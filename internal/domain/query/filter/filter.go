// Package filter holds structured constraints extracted from a query and the
// relaxation ladder applied when a constrained search comes back empty.
package filter

import "fmt"

// Spec is the set of structured constraints extracted from a rewritten query.
// Every field is optional; absence means "no constraint", never "exclude".
type Spec struct {
	price    *PriceRange
	brand    string
	category string
}

// New creates a Spec. Empty strings and a nil price mean unconstrained.
func New(price *PriceRange, brand, category string) Spec {
	return Spec{price: price, brand: brand, category: category}
}

// Price returns the price constraint, nil when unconstrained.
func (s Spec) Price() *PriceRange { return s.price }

// Brand returns the canonical brand constraint, empty when unconstrained.
func (s Spec) Brand() string { return s.brand }

// Category returns the canonical category constraint, empty when unconstrained.
func (s Spec) Category() string { return s.category }

// IsEmpty reports whether the spec has no constraints at all.
func (s Spec) IsEmpty() bool {
	return s.price == nil && s.brand == "" && s.category == ""
}

// HasTags reports whether a brand or category constraint is present.
func (s Spec) HasTags() bool { return s.brand != "" || s.category != "" }

// PriceRange is an inclusive price constraint. An upper bound alone implies a
// lower bound of zero.
type PriceRange struct {
	min float64
	max *float64
}

// NewPriceRange validates and creates a price range.
func NewPriceRange(min float64, max *float64) (PriceRange, error) {
	if min < 0 {
		return PriceRange{}, fmt.Errorf("price lower bound must be non-negative, got %g", min)
	}
	if max != nil && *max < min {
		return PriceRange{}, fmt.Errorf("price upper bound %g below lower bound %g", *max, min)
	}
	return PriceRange{min: min, max: max}, nil
}

// Min returns the inclusive lower bound.
func (r PriceRange) Min() float64 { return r.min }

// Max returns the inclusive upper bound, nil when unbounded.
func (r PriceRange) Max() *float64 { return r.max }

// Stage tags which rung of the relaxation ladder produced a result set.
type Stage string

// Ladder stages, strictest first. Brand and category are both tag
// constraints and relax together in the category position.
const (
	StageCategoryPrice Stage = "category+price"
	StageCategory      Stage = "category"
	StagePrice         Stage = "price"
	StageUnfiltered    Stage = "unfiltered"
)

// Relaxed reports whether the stage dropped at least one extracted constraint.
func (s Spec) Relaxed(stage Stage) bool {
	switch {
	case s.IsEmpty():
		return false
	case s.HasTags() && s.price != nil:
		return stage != StageCategoryPrice
	case s.HasTags():
		return stage != StageCategory
	default:
		return stage != StagePrice
	}
}

// Step is one rung of the fallback ladder: the stage tag plus the constraints
// still in force at that rung.
type Step struct {
	stage Stage
	spec  Spec
}

// Stage returns the ladder stage tag.
func (s Step) Stage() Stage { return s.stage }

// Spec returns the constraints applied at this rung.
func (s Step) Spec() Spec { return s.spec }

// Ladder expands the spec into the ordered relaxation sequence:
// (tags + price) → (tags only) → (price only) → unfiltered, with rungs that
// would repeat an earlier constraint set omitted. An empty spec collapses to
// the single unfiltered rung.
func (s Spec) Ladder() []Step {
	var steps []Step
	if s.HasTags() && s.price != nil {
		steps = append(steps, Step{stage: StageCategoryPrice, spec: s})
	}
	if s.HasTags() {
		steps = append(steps, Step{stage: StageCategory, spec: Spec{brand: s.brand, category: s.category}})
	}
	if s.price != nil {
		steps = append(steps, Step{stage: StagePrice, spec: Spec{price: s.price}})
	}
	return append(steps, Step{stage: StageUnfiltered, spec: Spec{}})
}
