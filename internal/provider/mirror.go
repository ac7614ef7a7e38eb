// AngelaMos | 2026
// mirror.go

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const mirrorKey = "provider:persisted_session"

// SessionMirror is the gateway's copy of the provider-persisted
// session, checked once at process start to rehydrate a returning
// client without forcing a fresh sign-in.
type SessionMirror struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewSessionMirror(client *redis.Client, ttl time.Duration) *SessionMirror {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &SessionMirror{redis: client, ttl: ttl}
}

func (m *SessionMirror) Persist(ctx context.Context, session *Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := m.redis.Set(ctx, mirrorKey, payload, m.ttl).Err(); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	return nil
}

// Load returns the persisted session, or nil when none exists.
func (m *SessionMirror) Load(ctx context.Context) (*Session, error) {
	payload, err := m.redis.Get(ctx, mirrorKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		// A corrupt mirror entry is dropped, not surfaced: restore
		// degrades to the signed-out state.
		if delErr := m.redis.Del(ctx, mirrorKey).Err(); delErr != nil {
			return nil, fmt.Errorf("drop corrupt session: %w", delErr)
		}
		return nil, nil
	}

	if session.Expired() && session.RefreshToken == "" {
		return nil, nil
	}

	return &session, nil
}

func (m *SessionMirror) Delete(ctx context.Context) error {
	if err := m.redis.Del(ctx, mirrorKey).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
