package ratelimit

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HandleRateLimitStatus returns the configured limits for the requesting IP
func (rl *RateLimiter) HandleRateLimitStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ip": c.ClientIP(),
			"limits": gin.H{
				"ip_per_minute": gin.H{
					"limit":  rl.config.IPLimitPerMin,
					"period": "1 minute",
				},
				"evaluate_per_minute": gin.H{
					"limit":  rl.config.EvaluateLimitPerMin,
					"period": "1 minute",
				},
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// HandleRateLimitStats returns limiter internals and block counters
func (rl *RateLimiter) HandleRateLimitStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		var metrics map[string]interface{}
		if rl.metrics != nil {
			metrics = rl.metrics.GetRateLimitStats()
		}

		c.JSON(http.StatusOK, gin.H{
			"limiter_stats": rl.GetStats(),
			"metrics":       metrics,
			"timestamp":     time.Now().Format(time.RFC3339),
		})
	}
}
