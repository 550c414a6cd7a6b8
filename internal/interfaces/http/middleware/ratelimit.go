package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javimosch/gutcheck-saas/internal/infrastructure/cache"
)

// RateLimit caps requests per client IP inside a rolling window, backed by a
// redis counter with the window as its TTL. Fails open when redis is down so
// an infrastructure hiccup never takes the API with it.
func RateLimit(redis *cache.RedisClient, maxRequests int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s", c.ClientIP())

		count, err := redis.Incr(c.Request.Context(), key).Result()
		if err != nil {
			log.Printf("rate limiter unavailable: %v", err)
			c.Next()
			return
		}
		if count == 1 {
			redis.Expire(c.Request.Context(), key, window)
		}

		if count > maxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests from this IP, please try again later",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
