package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ariebrainware/book-my-advocate/config"
	"github.com/ariebrainware/book-my-advocate/util"
	"github.com/gin-gonic/gin"
	cache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	defaultRateLimit  = 5
	defaultRateWindow = 15 * time.Minute
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// localLimiters holds one token bucket per key for use while Redis is
// unavailable. Idle buckets expire after two windows.
type localLimiters struct {
	mu      sync.Mutex
	buckets *cache.Cache
	limit   int
	window  time.Duration
}

// localRegistry tracks every local limiter so a reset reaches all of them.
var localRegistry struct {
	mu  sync.Mutex
	all []*localLimiters
}

func newLocalLimiters(limit int, window time.Duration) *localLimiters {
	l := &localLimiters{
		buckets: cache.New(2*window, window),
		limit:   limit,
		window:  window,
	}
	localRegistry.mu.Lock()
	localRegistry.all = append(localRegistry.all, l)
	localRegistry.mu.Unlock()
	return l
}

func (l *localLimiters) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	var limiter *rate.Limiter
	if v, ok := l.buckets.Get(key); ok {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(rate.Every(l.window/time.Duration(l.limit)), l.limit)
	}
	l.buckets.Set(key, limiter, cache.DefaultExpiration)
	return limiter.Allow()
}

// RateLimiter limits requests per client IP and path. Redis holds a shared
// fixed-window counter; without Redis, or when it errors, an in-process
// token bucket applies instead.
func RateLimiter(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limit <= 0 {
		cfg.Limit = defaultRateLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = defaultRateWindow
	}
	local := newLocalLimiters(cfg.Limit, cfg.Window)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		endpoint := c.Request.URL.Path
		key := rateLimitKey(endpoint, clientIP)

		allowed, err := checkRateLimit(c.Request.Context(), key, cfg.Limit, cfg.Window)
		if err != nil {
			if !errors.Is(err, errNoRedis) {
				util.Logger(c).Warn().Err(err).Msg("redis rate limit failed, using local limiter")
			}
			allowed = local.allow(key)
		}

		if !allowed {
			util.LogRateLimitExceeded(clientIP, endpoint)
			util.CallTooManyRequests(c, util.APIErrorParams{
				Msg: "Too many requests. Please try again later.",
				Err: fmt.Errorf("rate limit exceeded"),
			})
			return
		}

		c.Next()
	}
}

func rateLimitKey(endpoint, clientIP string) string {
	return fmt.Sprintf("ratelimit:%s:%s", endpoint, clientIP)
}

var errNoRedis = errors.New("redis not available")

// checkRateLimit increments the window counter; the expiry is set only by
// the first hit so the window does not slide.
func checkRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return false, errNoRedis
	}

	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if count == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}
	return count <= int64(limit), nil
}

// ResetRateLimit forgets the hits of a client on a path, in Redis and in
// every local limiter.
func ResetRateLimit(ctx context.Context, clientIP, endpoint string) error {
	key := rateLimitKey(endpoint, clientIP)

	localRegistry.mu.Lock()
	for _, l := range localRegistry.all {
		l.buckets.Delete(key)
	}
	localRegistry.mu.Unlock()

	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	if err := rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("reset rate limit: %w", err)
	}
	return nil
}
