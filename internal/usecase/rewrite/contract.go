package rewrite

import "context"

// Completer is the external chat completion contract used for rewriting.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
