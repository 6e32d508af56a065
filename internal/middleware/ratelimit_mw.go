package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"mail_admin/internal/metrics"
	"mail_admin/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Limiter decides whether one more request under key fits in the current window
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (ratelimit.Decision, error)
}

// LoginRateLimit caps login attempts per client IP. Limiter errors let the request through.
func LoginRateLimit(limiter Limiter, limit int, window time.Duration, m *metrics.Metrics, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:login:" + c.ClientIP()

		decision, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		if !decision.Allowed {
			m.RecordLogin(metrics.LoginRateLimited)
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts, try again later"})
			return
		}

		c.Next()
	}
}
