package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/HysterChat/pinco-clone/internal/domain"
	"github.com/HysterChat/pinco-clone/internal/infra/metrics"
)

// appendScript переносит элементы в хвост списка без повторов, обрезает до лимита
// и продлевает срок жизни ключа. ARGV: items..., limit, ttl_ms.
var appendScript = redis.NewScript(`
local n = #ARGV
local limit = tonumber(ARGV[n-1])
local ttl = tonumber(ARGV[n])
for i = 1, n - 2 do
  redis.call('LREM', KEYS[1], 0, ARGV[i])
  redis.call('RPUSH', KEYS[1], ARGV[i])
end
redis.call('LTRIM', KEYS[1], -limit, -1)
redis.call('PEXPIRE', KEYS[1], ttl)
return redis.call('LLEN', KEYS[1])
`)

// RedisStore хранит историю контента в Redis lists.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ domain.ContentHistoryStore = (*RedisStore)(nil)

// NewRedisStore создаёт хранилище с префиксом ключей.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "content:history"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: domain.HistoryTTL}
}

func (s *RedisStore) key(userID string, category domain.Category) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, userID, category)
}

// Recent возвращает историю от старых к новым. Истёкший ключ читается как пустой.
func (s *RedisStore) Recent(ctx context.Context, userID string, category domain.Category) ([]string, error) {
	start := time.Now()
	items, err := s.client.LRange(ctx, s.key(userID, category), 0, -1).Result()
	if errors.Is(err, redis.Nil) {
		err = nil
	}
	metrics.ObserveNetworkRequest("redis", "lrange", "content_history", start, err)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return items, nil
}

// Append добавляет элементы атомарно для пары пользователь+категория.
func (s *RedisStore) Append(ctx context.Context, userID string, category domain.Category, items []string, limit int) error {
	if len(items) == 0 || limit <= 0 {
		return nil
	}
	args := make([]any, 0, len(items)+2)
	for _, it := range items {
		args = append(args, it)
	}
	args = append(args, limit, s.ttl.Milliseconds())

	start := time.Now()
	err := appendScript.Run(ctx, s.client, []string{s.key(userID, category)}, args...).Err()
	metrics.ObserveNetworkRequest("redis", "append_script", "content_history", start, err)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}
