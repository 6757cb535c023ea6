// Package flood implements the transport-level abuse guard. It protects the
// update loop from message floods and is independent of the per-user signal
// quota enforced by the access service.
package flood

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter in Redis: one INCR per update, key
// scoped to the chat and the current window index. Shared by all bot
// instances pointing at the same Redis.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisLimiter(addr, password string, db, limit int, window time.Duration) *RedisLimiter {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisLimiter{client: rdb, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, chatID int64) (bool, error) {
	windowIdx := time.Now().Unix() / int64(l.window.Seconds())
	key := fmt.Sprintf("flood:%d:%d", chatID, windowIdx)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		l.client.Expire(ctx, key, l.window)
	}
	return count <= int64(l.limit), nil
}

func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
