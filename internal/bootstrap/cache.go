package bootstrap

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/marketpulse/marketpulse/internal/cache"
	"github.com/marketpulse/marketpulse/internal/config"
)

// reportCacheKeyPrefix namespaces report entries in a shared Redis.
const reportCacheKeyPrefix = "reports:"

// initializeReportCache creates the report cache backend selected by
// CACHE_TYPE. Report payloads are cached as raw JSON so one cache serves
// every report shape.
func initializeReportCache(cfg *config.Config) (cache.Cache[json.RawMessage], error) {
	switch cfg.CacheType {
	case config.CacheTypeRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		redisCache, err := cache.NewRueidisCache[json.RawMessage](
			ctx,
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
			reportCacheKeyPrefix,
		)
		if err != nil {
			return nil, err
		}
		log.Printf("Report cache: redis at %s", cfg.RedisAddr)
		return redisCache, nil
	default:
		log.Printf("Report cache: in-memory")
		return cache.NewMemoryCache[json.RawMessage](), nil
	}
}
