package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cleberrangel/diane-api/internal/cache"
	"github.com/cleberrangel/diane-api/internal/logger"
	"github.com/cleberrangel/diane-api/internal/metrics"
	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures the per-client limiter
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
	IdleTTL           time.Duration // limiters unused for this long are dropped
}

// RateLimiter keeps one token bucket per client
type RateLimiter struct {
	config   RateLimitConfig
	limiters *cache.Cache[*rate.Limiter]
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = 120
	}
	if config.Burst <= 0 {
		config.Burst = config.RequestsPerMinute / 4
		if config.Burst < 1 {
			config.Burst = 1
		}
	}
	if config.IdleTTL == 0 {
		config.IdleTTL = 10 * time.Minute
	}

	return &RateLimiter{
		config:   config,
		limiters: cache.New[*rate.Limiter](config.IdleTTL, config.IdleTTL),
	}
}

// limiterFor returns the bucket of a client, creating it on first use
func (l *RateLimiter) limiterFor(key string) *rate.Limiter {
	limiter, _ := l.limiters.GetOrSet(key, func() *rate.Limiter {
		every := time.Minute / time.Duration(l.config.RequestsPerMinute)
		return rate.NewLimiter(rate.Every(every), l.config.Burst)
	})
	return limiter
}

// Allow reports whether the client identified by key may proceed
func (l *RateLimiter) Allow(key string) bool {
	return l.limiterFor(key).Allow()
}

// Stop stops the idle limiter sweeper
func (l *RateLimiter) Stop() {
	l.limiters.Stop()
}

// Middleware rejects requests over budget with 429
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if l.Allow(key) {
			c.Next()
			return
		}

		metrics.Get().IncrementRateLimited()
		logger.FromGin(c).Warn().
			Str("client_ip", key).
			Str("path", c.Request.URL.Path).
			Msg("Rate limit exceeded")

		retryAfter := int((time.Minute / time.Duration(l.config.RequestsPerMinute)).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, model.ErrorResponse{
			Success: false,
			Error:   "Too many requests",
			Code:    "RATE_LIMITED",
		})
	}
}
