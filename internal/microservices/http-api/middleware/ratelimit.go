package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// WindowCounter counts hits on key within a fixed window
type WindowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// RedisCounter is a fixed-window counter on INCR + EXPIRE
type RedisCounter struct {
	rdb redis.Cmdable
}

func NewRedisCounter(rdb redis.Cmdable) *RedisCounter {
	return &RedisCounter{rdb: rdb}
}

func (r *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}

	// first hit of the window owns the expiry
	if count == 1 {
		if err := r.rdb.Expire(ctx, key, window).Err(); err != nil {
			return count, window, err
		}
	}

	ttl, err := r.rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	return count, ttl, nil
}

// RateLimiter limits requests per client IP. It fails open when the counter is unavailable.
type RateLimiter struct {
	counter WindowCounter
	maxReqs int
	window  time.Duration
	logger  *slog.Logger
}

func NewRateLimiter(counter WindowCounter, maxReqs int, window time.Duration, logger *slog.Logger) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RateLimiter{counter: counter, maxReqs: maxReqs, window: window, logger: logger}
}

func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.counter == nil || rl.maxReqs <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s", c.ClientIP())
		count, ttl, err := rl.counter.Hit(c.Request.Context(), key, rl.window)
		if err != nil {
			rl.logger.Warn("rate_limit_unavailable", "error", err)
			c.Next()
			return
		}

		remaining := max(0, int64(rl.maxReqs)-count)
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.maxReqs))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(ttl.Seconds())))

		if count > int64(rl.maxReqs) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(ttl.Seconds()),
			})
			return
		}

		c.Next()
	}
}
