// internal/middleware/ratelimit_middleware.go
package middleware

import (
	"fmt"
	"net/http"
	"time"

	xerrors "leadpulse-service/internal/pkg/errors"
	"leadpulse-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitMiddleware throttles write endpoints per client IP using a fixed
// redis counter window.
func RateLimitMiddleware(client *redis.Client, limit int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", c.ClientIP(), c.FullPath())

		count, err := client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// Redis being down should not take writes down with it.
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(c.Request.Context(), key, window)
		}

		if count > limit {
			response.Error(c, http.StatusTooManyRequests, "rate limit exceeded", xerrors.ErrRateLimited)
			return
		}

		c.Next()
	}
}
