package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// SetHeaders injects the standard rate limit headers for result
func SetHeaders(c *gin.Context, result *Result) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if !result.Allowed {
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(result)))
	}
}

func retryAfterSeconds(result *Result) int {
	s := int(result.RetryAfter.Seconds())
	if s < 1 {
		s = 1
	}
	return s
}

// IPRateLimitMiddleware limits how many interviews a client IP may create per minute
func (rl *RateLimiter) IPRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		result, err := rl.AllowIP(c.Request.Context(), ip)
		if err != nil {
			// Don't block request on rate limiter failure
			slog.Error("Rate limit check failed", "ip", ip, "error", err)
			c.Next()
			return
		}

		SetHeaders(c, result)

		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded for IP",
				"message":     fmt.Sprintf("You have exceeded the limit of %d new interviews per minute", result.Limit),
				"retry_after": retryAfterSeconds(result),
				"reset_at":    result.ResetAt.Unix(),
			})
			return
		}

		c.Next()
	}
}
