// AngelaMos | 2026
// marker.go

package deeplink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const markerPrefix = "deeplink:processed:"

// Markers records which callback URLs have already been handled.
// First call for a key returns true; repeats return false.
type Markers interface {
	MarkProcessed(ctx context.Context, key string) (bool, error)
}

// RedisMarkers backs idempotency with SETNX and falls back to a local
// map when Redis is unreachable, so a cache outage degrades to
// per-process dedup instead of double-handling or hard failure.
type RedisMarkers struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger

	mu    sync.Mutex
	local map[string]time.Time
}

func NewRedisMarkers(
	client *redis.Client,
	ttl time.Duration,
	logger *slog.Logger,
) *RedisMarkers {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisMarkers{
		client: client,
		ttl:    ttl,
		logger: logger,
		local:  make(map[string]time.Time),
	}
}

func (m *RedisMarkers) MarkProcessed(
	ctx context.Context,
	key string,
) (bool, error) {
	if m.client != nil {
		first, err := m.client.SetNX(ctx, markerPrefix+key, "1", m.ttl).Result()
		if err == nil {
			return first, nil
		}
		m.logger.Warn("idempotency marker store unavailable, using local fallback",
			"error", err,
		)
	}

	return m.markLocal(key), nil
}

func (m *RedisMarkers) markLocal(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for k, t := range m.local {
		if now.Sub(t) > m.ttl {
			delete(m.local, k)
		}
	}

	if _, seen := m.local[key]; seen {
		return false
	}
	m.local[key] = now
	return true
}
