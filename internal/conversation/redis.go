// internal/conversation/redis.go
package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ananya-0081/insightx-upi/internal/models"
)

const (
	keyPrefix  = "insightx:ctx:"
	defaultTTL = 30 * time.Minute
)

// RedisStore keeps each session's context window in a capped Redis list.
// The newest turn sits at the head; LTRIM enforces the window bound and the
// key expires after a period of inactivity.
type RedisStore struct {
	client *redis.Client
	window int
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. window <= 0 selects
// DefaultWindowSize, ttl <= 0 selects the default session TTL.
func NewRedisStore(client *redis.Client, window int, ttl time.Duration) *RedisStore {
	if window <= 0 {
		window = DefaultWindowSize
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, window: window, ttl: ttl}
}

func sessionKey(sessionID string) string { return keyPrefix + sessionID }

func (s *RedisStore) Append(ctx context.Context, sessionID string, q models.StructuredQuery) error {
	payload, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal context turn: %w", err)
	}
	key := sessionKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, int64(s.window-1))
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append context turn: %w", err)
	}
	return nil
}

func (s *RedisStore) Window(ctx context.Context, sessionID string) ([]models.StructuredQuery, error) {
	raw, err := s.client.LRange(ctx, sessionKey(sessionID), 0, int64(s.window-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read context window: %w", err)
	}
	out := make([]models.StructuredQuery, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var q models.StructuredQuery
		if err := json.Unmarshal([]byte(raw[i]), &q); err != nil {
			return nil, fmt.Errorf("decode context turn: %w", err)
		}
		out = append(out, q)
	}
	return out, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear context: %w", err)
	}
	return nil
}
