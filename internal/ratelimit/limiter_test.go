package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akbarpn/shower-o-meter/internal/monitoring"
)

func TestRateLimiterFallbackMode(t *testing.T) {
	redisClient := &RedisClient{enabled: false}
	config := Config{
		IPLimitPerMin:       5,
		EvaluateLimitPerMin: 5,
		BurstMultiplier:     1,
	}
	metrics := monitoring.NewMetrics()

	limiter := NewRateLimiter(redisClient, config, metrics)

	ctx := context.Background()

	// First 5 requests should be allowed
	for i := 0; i < 5; i++ {
		result, err := limiter.AllowIP(ctx, "192.0.2.1")
		require.NoError(t, err)
		assert.True(t, result.Allowed, "Request %d should be allowed", i+1)
		assert.Equal(t, 5, result.Limit)
	}

	// 6th request should be blocked
	result, err := limiter.AllowIP(ctx, "192.0.2.1")
	require.NoError(t, err)
	assert.False(t, result.Allowed, "6th request should be blocked")
	assert.Greater(t, result.RetryAfter, time.Duration(0))
}

func TestRateLimiterBurstCapacity(t *testing.T) {
	redisClient := &RedisClient{enabled: false}
	config := Config{
		IPLimitPerMin:       5,
		EvaluateLimitPerMin: 5,
		BurstMultiplier:     2,
	}
	metrics := monitoring.NewMetrics()

	limiter := NewRateLimiter(redisClient, config, metrics)

	ctx := context.Background()

	// With burst multiplier of 2, roughly 10 requests pass initially
	allowedCount := 0
	for i := 0; i < 15; i++ {
		result, err := limiter.AllowIP(ctx, "192.0.2.2")
		require.NoError(t, err)
		if result.Allowed {
			allowedCount++
		}
	}

	assert.GreaterOrEqual(t, allowedCount, 5, "Should allow at least limit amount")
	assert.LessOrEqual(t, allowedCount, 12, "Should not exceed burst + small margin")
}

func TestRateLimiterIndependentIPs(t *testing.T) {
	redisClient := &RedisClient{enabled: false}
	config := Config{
		IPLimitPerMin:       3,
		EvaluateLimitPerMin: 3,
		BurstMultiplier:     1,
	}
	metrics := monitoring.NewMetrics()

	limiter := NewRateLimiter(redisClient, config, metrics)

	ctx := context.Background()

	ips := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}

	for _, ip := range ips {
		for i := 0; i < 3; i++ {
			result, err := limiter.AllowIP(ctx, ip)
			require.NoError(t, err)
			assert.True(t, result.Allowed, "IP %s request %d should be allowed", ip, i+1)
		}

		result, err := limiter.AllowIP(ctx, ip)
		require.NoError(t, err)
		assert.False(t, result.Allowed, "IP %s 4th request should be blocked", ip)
	}
}

func TestRateLimiterEndpointKeysAreSeparate(t *testing.T) {
	redisClient := &RedisClient{enabled: false}
	config := Config{
		IPLimitPerMin:       2,
		EvaluateLimitPerMin: 2,
		BurstMultiplier:     1,
	}
	metrics := monitoring.NewMetrics()

	limiter := NewRateLimiter(redisClient, config, metrics)

	ctx := context.Background()

	// Exhaust the evaluate endpoint budget... (burst floor is 5)
	blocked := false
	for i := 0; i < 10; i++ {
		result, err := limiter.AllowEndpoint(ctx, "evaluate", "10.0.0.9", 2)
		require.NoError(t, err)
		if !result.Allowed {
			blocked = true
			break
		}
	}
	assert.True(t, blocked, "evaluate endpoint should eventually block")

	// ...the general IP budget is untouched
	result, err := limiter.AllowIP(ctx, "10.0.0.9")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestRateLimiterStats(t *testing.T) {
	redisClient := &RedisClient{enabled: false}
	config := DefaultConfig()
	metrics := monitoring.NewMetrics()

	limiter := NewRateLimiter(redisClient, config, metrics)

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = limiter.AllowIP(ctx, "192.0.2.3")
	}

	stats := limiter.GetStats()
	assert.NotNil(t, stats)
	assert.False(t, stats["redis_enabled"].(bool))
	assert.GreaterOrEqual(t, stats["fallback_limiters"].(int), 1)
}

func TestRateLimiterConcurrency(t *testing.T) {
	redisClient := &RedisClient{enabled: false}
	config := DefaultConfig()
	metrics := monitoring.NewMetrics()

	limiter := NewRateLimiter(redisClient, config, metrics)

	ctx := context.Background()

	done := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		go func(n int) {
			for j := 0; j < 10; j++ {
				_, err := limiter.AllowIP(ctx, fmt.Sprintf("10.1.0.%d", n))
				assert.NoError(t, err)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 50; i++ {
		<-done
	}
}

func TestRateLimiterContextCancellation(t *testing.T) {
	redisClient := &RedisClient{enabled: false}
	config := DefaultConfig()
	metrics := monitoring.NewMetrics()

	limiter := NewRateLimiter(redisClient, config, metrics)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Fallback mode ignores the context
	result, err := limiter.AllowIP(ctx, "192.0.2.4")
	require.NoError(t, err)
	assert.NotNil(t, result)
}
