package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultDedupTTL = 24 * time.Hour
	dedupKeyPrefix  = "coleta:wamid:"
)

// RedisDeduper remembers WhatsApp message ids for a bounded time.
type RedisDeduper struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisDeduper returns nil when client is nil so callers can pass the
// result straight to WithDeduper.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) Deduper {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &RedisDeduper{redis: client, ttl: ttl}
}

// FirstSeen atomically marks messageID and reports whether it was new.
func (d *RedisDeduper) FirstSeen(ctx context.Context, messageID string) (bool, error) {
	ok, err := d.redis.SetNX(ctx, dedupKey(messageID), 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("relay: mark message %s: %w", messageID, err)
	}
	return ok, nil
}

func dedupKey(messageID string) string {
	return dedupKeyPrefix + messageID
}
