package domain

import "time"

// Turn is one completed exchange: what the user asked and what the system
// answered. Turns are immutable after creation.
type Turn struct {
	UserQuery string    `json:"user_query"`
	Answer    string    `json:"answer"`
	AskedAt   time.Time `json:"asked_at"`
}

// History is the append-only conversation log for one session, ordered oldest
// first. It is rewriting context only and is never consulted as an answer
// source.
type History []Turn

// Window returns the last n turns. The full log stays untouched; only the
// trailing window is passed to the rewriting service.
func (h History) Window(n int) History {
	if n <= 0 || len(h) <= n {
		return h
	}
	return h[len(h)-n:]
}
