package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "ratelimit:email:"

// RedisLimiter shares one counter view across process instances via
// INCR + EXPIRE. When redis is unreachable it fails open: blocking every
// email over a counter outage would be worse than briefly exceeding the cap.
type RedisLimiter struct {
	rdb    *redis.Client
	window time.Duration
	max    int
	logger *zap.Logger
}

func NewRedisLimiter(rdb *redis.Client, window time.Duration, max int, logger *zap.Logger) *RedisLimiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if max <= 0 {
		max = DefaultMax
	}
	return &RedisLimiter{
		rdb:    rdb,
		window: window,
		max:    max,
		logger: logger,
	}
}

func key(userID int) string {
	return fmt.Sprintf("%s%d", redisKeyPrefix, userID)
}

func (l *RedisLimiter) Allow(ctx context.Context, userID int, bypass bool) bool {
	if bypass {
		return true
	}

	k := key(userID)

	current, err := l.rdb.Get(ctx, k).Int()
	if err != nil && err != redis.Nil {
		l.logger.Warn("Rate limiter redis read failed, allowing send",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		return true
	}
	if current >= l.max {
		return false
	}

	count, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		l.logger.Warn("Rate limiter redis incr failed, allowing send",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		return true
	}
	// Expiration starts with the first send in the window.
	if count == 1 {
		l.rdb.Expire(ctx, k, l.window)
	}
	return true
}

func (l *RedisLimiter) Count(ctx context.Context, userID int) (int, time.Time) {
	k := key(userID)

	count, err := l.rdb.Get(ctx, k).Int()
	if err != nil {
		return 0, time.Time{}
	}

	ttl, err := l.rdb.TTL(ctx, k).Result()
	if err != nil || ttl <= 0 {
		return count, time.Time{}
	}
	return count, time.Now().Add(ttl)
}

func (l *RedisLimiter) Reset(ctx context.Context, userID int) {
	if err := l.rdb.Del(ctx, key(userID)).Err(); err != nil {
		l.logger.Warn("Rate limiter reset failed", zap.Int("user_id", userID), zap.Error(err))
	}
}

func (l *RedisLimiter) ClearAll(ctx context.Context) {
	iter := l.rdb.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := l.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			l.logger.Warn("Rate limiter clear failed", zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		l.logger.Warn("Rate limiter scan failed", zap.Error(err))
	}
}

// CleanupExpired is a no-op for redis; key TTLs already bound memory.
func (l *RedisLimiter) CleanupExpired(context.Context) {}
