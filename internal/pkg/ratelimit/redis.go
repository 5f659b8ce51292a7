package ratelimit

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCounter is the slice of the Redis API the limiter needs;
// *redis.Client satisfies it.
type redisCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// RedisLimiter is a fixed-window limiter backed by a shared Redis
// counter (INCR + EXPIRE), so the limit holds across replicas. On
// Redis errors it fails open: the throttle is a coarse abuse filter,
// not a security control, and the gateway must not drop provider
// deliveries because the cache is down.
type RedisLimiter struct {
	client redisCounter
	window time.Duration
	limit  int
	prefix string
}

// NewRedisLimiter creates a Redis-backed fixed-window limiter.
func NewRedisLimiter(client *redis.Client, window time.Duration, limit int) *RedisLimiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &RedisLimiter{
		client: client,
		window: window,
		limit:  limit,
		prefix: "ratelimit:webhook",
	}
}

func (l *RedisLimiter) Admit(ctx context.Context, clientID string) bool {
	key := l.prefix + ":" + clientID

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("ratelimit: redis incr failed for %s: %v", clientID, err)
		return true
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			log.Printf("ratelimit: redis expire failed for %s: %v", clientID, err)
		}
		return true
	}

	// INCR and EXPIRE are separate round trips. If the EXPIRE after
	// the first INCR was lost (error, or the process died in between)
	// the key would count forever and lock the client out permanently
	// once past the limit. Re-arm the window whenever the key reports
	// no expiry.
	if ttl, err := l.client.TTL(ctx, key).Result(); err == nil && ttl < 0 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			log.Printf("ratelimit: redis expire failed for %s: %v", clientID, err)
		}
	}

	return count <= int64(l.limit)
}
