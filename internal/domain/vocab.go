package domain

import "strings"

// Vocabulary is the process-wide read-only set of valid brand and category
// strings, loaded once at startup from the offline snapshot. Lookups are
// case-insensitive and return the canonical spelling stored in the catalog.
type Vocabulary struct {
	brands     map[string]string
	categories map[string]string
}

// NewVocabulary builds an immutable vocabulary from canonical brand and
// category lists.
func NewVocabulary(brands, categories []string) Vocabulary {
	v := Vocabulary{
		brands:     make(map[string]string, len(brands)),
		categories: make(map[string]string, len(categories)),
	}
	for _, b := range brands {
		v.brands[strings.ToLower(b)] = b
	}
	for _, c := range categories {
		v.categories[strings.ToLower(c)] = c
	}
	return v
}

// MatchBrand resolves a query token to a canonical brand, or reports false.
func (v Vocabulary) MatchBrand(token string) (string, bool) {
	b, ok := v.brands[strings.ToLower(token)]
	return b, ok
}

// MatchCategory resolves a query token to a canonical category. Simple
// pluralization is normalized: "laptops" matches the category "Laptop" and
// "TV" matches "TVs".
func (v Vocabulary) MatchCategory(token string) (string, bool) {
	for _, variant := range pluralVariants(strings.ToLower(token)) {
		if c, ok := v.categories[variant]; ok {
			return c, ok
		}
	}
	return "", false
}

// Brands returns the number of known brands.
func (v Vocabulary) Brands() int { return len(v.brands) }

// Categories returns the number of known categories.
func (v Vocabulary) Categories() int { return len(v.categories) }

// pluralVariants returns the token itself plus naive singular/plural forms.
func pluralVariants(token string) []string {
	variants := []string{token}
	switch {
	case strings.HasSuffix(token, "ies"):
		variants = append(variants, strings.TrimSuffix(token, "ies")+"y")
	case strings.HasSuffix(token, "es"):
		variants = append(variants, strings.TrimSuffix(token, "es"), strings.TrimSuffix(token, "s"))
	case strings.HasSuffix(token, "s"):
		variants = append(variants, strings.TrimSuffix(token, "s"))
	}
	variants = append(variants, token+"s")
	return variants
}
