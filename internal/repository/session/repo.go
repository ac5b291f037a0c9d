// Package session persists per-session conversation logs as JSON blobs with
// a sliding TTL, so idle sessions expire instead of accumulating.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/prodask/internal/db"
	"github.com/kailas-cloud/prodask/internal/domain"
)

// kv is the consumer interface for session storage (ISP).
type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Repo implements usecase/pipeline.SessionLog.
type Repo struct {
	kv  kv
	ttl time.Duration
}

// New creates a session repository. ttl refreshes on every append.
func New(kv kv, ttl time.Duration) *Repo {
	return &Repo{kv: kv, ttl: ttl}
}

// History returns the conversation log, oldest first. A missing key means a
// fresh session, not an error.
func (r *Repo) History(ctx context.Context, sessionID string) (domain.History, error) {
	raw, err := r.kv.Get(ctx, key(sessionID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	var history domain.History
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("session %s: decode: %w", sessionID, err)
	}
	return history, nil
}

// Append adds one turn to the session log and refreshes the TTL.
func (r *Repo) Append(ctx context.Context, sessionID string, turn domain.Turn) error {
	history, err := r.History(ctx, sessionID)
	if err != nil {
		return err
	}
	history = append(history, turn)

	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("session %s: encode: %w", sessionID, err)
	}
	if err := r.kv.SetWithTTL(ctx, key(sessionID), raw, r.ttl); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	return nil
}

func key(sessionID string) string {
	return domain.KeyPrefix + "session:" + sessionID
}
