// Package vocab loads the filterable-metadata snapshot produced by the
// offline ingestion job. The snapshot is the closed vocabulary for brand and
// category extraction; anything outside it is never used as a filter.
package vocab

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kailas-cloud/prodask/internal/domain"
)

// snapshot mirrors the JSON the ingestion job writes.
type snapshot struct {
	Brands     []string `json:"brands"`
	Categories []string `json:"categories"`
}

// Load reads the vocabulary snapshot from path.
func Load(path string) (domain.Vocabulary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Vocabulary{}, fmt.Errorf("read vocabulary snapshot: %w", err)
	}

	var s snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.Vocabulary{}, fmt.Errorf("decode vocabulary snapshot %s: %w", path, err)
	}
	if len(s.Brands) == 0 && len(s.Categories) == 0 {
		return domain.Vocabulary{}, fmt.Errorf("vocabulary snapshot %s is empty", path)
	}

	return domain.NewVocabulary(s.Brands, s.Categories), nil
}
