package generate

import "context"

// Completer is the chat completion capability the generator needs.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
