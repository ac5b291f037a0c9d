package moderation

import "context"

// Classifier is the external safety classification contract.
type Classifier interface {
	Classify(ctx context.Context, query string) (Verdict, error)
}

// Verdict is the raw classifier output.
type Verdict struct {
	Flagged  bool
	Category string
}
