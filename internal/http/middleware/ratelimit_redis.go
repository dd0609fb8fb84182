package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"todo_webapp/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter installs the shared client used by RateLimit. A nil
// client, or one that does not answer a ping, leaves limiting in memory.
func InitRedisRateLimiter(rdb *redis.Client) {
	redisClient = nil
	if rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis rate limiter disabled, using in-memory limits", "error", err)
		return
	}
	redisClient = rdb
}

// RateLimit uses the Redis limiter when one is installed and the in-memory
// limiter otherwise.
func RateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	local := SimpleRateLimit(maxRequests, window)
	remote := RedisRateLimit(maxRequests, window)
	return func(c *gin.Context) {
		if redisClient == nil {
			local(c)
			return
		}
		remote(c)
	}
}

// RedisRateLimit implements a fixed-window rate limiter using Redis INCR/EXPIRE.
// key format: rl:<window_seconds>:<identifier>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		rdb := redisClient
		if rdb == nil {
			c.Next()
			return
		}

		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		ctx := c.Request.Context()

		val, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			// fail open
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}
		if val == 1 {
			rdb.Expire(ctx, key, window)
		}

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
