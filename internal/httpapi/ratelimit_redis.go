package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// RequestLimiter decides whether a client may proceed. Used instead of the
// in-process token buckets when several replicas must share one budget.
type RequestLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// LimitWith applies an external limiter keyed by client IP. Limiter errors
// fail open: losing the limiter backend must not take the API down.
func LimitWith(next http.Handler, limiter RequestLimiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if ip == "" {
			ip = "unknown"
		}
		allowed, err := limiter.Allow(r.Context(), ip)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			w.Header().Set("Retry-After", "1")
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RedisLimiter is a fixed-window counter in Redis shared across replicas.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

var _ RequestLimiter = (*RedisLimiter)(nil)

// NewRedisLimiter allows limit requests per window per key.
func NewRedisLimiter(client *redis.Client, limit int64, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := "ratelimit:" + key
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.client.PExpire(ctx, redisKey, l.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= l.limit, nil
}

// UseLimiter swaps in an externally-backed limiter. Call before Handler.
func (a *API) UseLimiter(l RequestLimiter) { a.limiter = l }
