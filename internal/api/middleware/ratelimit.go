package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimitPrefix namespaces limiter keys in shared stores.
const RateLimitPrefix = "licenze:ratelimit"

// NewRateLimiter creates a Gin middleware for per-IP rate limiting backed by
// process memory. requests is the number of requests allowed per period,
// period is a duration string (e.g., "1m", "1h").
func NewRateLimiter(requests int64, period string) (gin.HandlerFunc, error) {
	rate, err := parseRate(requests, period)
	if err != nil {
		return nil, err
	}

	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          RateLimitPrefix,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	})
	return mgin.NewMiddleware(limiter.New(store, rate)), nil
}

// NewRedisRateLimiter is NewRateLimiter with counters kept in Redis, so
// several server processes share one budget per client.
func NewRedisRateLimiter(requests int64, period string, client *redis.Client) (gin.HandlerFunc, error) {
	rate, err := parseRate(requests, period)
	if err != nil {
		return nil, err
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: RateLimitPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("create redis rate limit store: %w", err)
	}
	return mgin.NewMiddleware(limiter.New(store, rate)), nil
}

func parseRate(requests int64, period string) (limiter.Rate, error) {
	duration, err := time.ParseDuration(period)
	if err != nil {
		return limiter.Rate{}, fmt.Errorf("invalid rate limit period %q: %w", period, err)
	}
	if requests <= 0 {
		return limiter.Rate{}, fmt.Errorf("rate limit requests must be positive, got %d", requests)
	}
	return limiter.Rate{Period: duration, Limit: requests}, nil
}
