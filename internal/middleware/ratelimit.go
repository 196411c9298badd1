package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterRedis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// NewMemoryRateLimiter builds a per-client limiter backed by an in-process
// store. Suitable for single-instance deployments.
func NewMemoryRateLimiter(requestsPerMinute int) (gin.HandlerFunc, error) {
	return newRateLimiter(memory.NewStore(), requestsPerMinute), nil
}

// NewRedisRateLimiter builds a per-client limiter backed by Redis so limits
// hold across instances. The connection is verified before the limiter is
// returned.
func NewRedisRateLimiter(
	requestsPerMinute int,
	redisAddr, redisPassword string,
	redisDB int,
) (gin.HandlerFunc, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", redisAddr, err)
	}

	store, err := limiterRedis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:          "ratelimit",
		CleanUpInterval: 5 * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis store: %w", err)
	}

	return newRateLimiter(store, requestsPerMinute), nil
}

func newRateLimiter(store limiter.Store, requestsPerMinute int) gin.HandlerFunc {
	instance := limiter.New(store, limiter.Rate{
		Period: time.Minute,
		Limit:  int64(requestsPerMinute),
	})

	return mgin.NewMiddleware(instance, mgin.WithLimitReachedHandler(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"message": "too many requests, please try again later",
		})
	}))
}
