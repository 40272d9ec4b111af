// Package cache stores fetched price series so repeated requests for the same
// ticker and date range skip the market data provider.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/findash/internal/config"
	"github.com/rxtech-lab/findash/internal/logger"
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
	"go.uber.org/zap"
)

const keyPrefix = "findash:series"

type Cache interface {
	// Get returns the cached series for key, or None on a miss.
	Get(ctx context.Context, key string) (optional.Option[types.PriceSeries], error)
	// Set stores series under key.
	Set(ctx context.Context, key string, series types.PriceSeries) error
	// Delete drops key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Key builds the cache key of a fetch request.
func Key(provider string, symbol string, start time.Time, end time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s",
		keyPrefix,
		strings.ToLower(provider),
		strings.ToUpper(symbol),
		start.Format(time.DateOnly),
		end.Format(time.DateOnly),
	)
}

// NewFromConfig builds the cache selected by cfg.Backend.
func NewFromConfig(cfg config.CacheConfig, log *logger.Logger) (Cache, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	switch cfg.Backend {
	case config.CacheNone, "":
		return NewNoopCache(), nil
	case config.CacheMemory:
		log.Debug("Using in-memory series cache", zap.Duration("ttl", cfg.TTL))

		return NewMemoryCache(cfg.TTL), nil
	case config.CacheRedis:
		log.Debug("Using redis series cache", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.TTL))

		return NewRedisCache(RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.TTL,
		})
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown cache backend %q", cfg.Backend)
	}
}

type NoopCache struct{}

func NewNoopCache() Cache {
	return NoopCache{}
}

// Get implements Cache.
func (NoopCache) Get(context.Context, string) (optional.Option[types.PriceSeries], error) {
	return optional.None[types.PriceSeries](), nil
}

// Set implements Cache.
func (NoopCache) Set(context.Context, string, types.PriceSeries) error {
	return nil
}

// Delete implements Cache.
func (NoopCache) Delete(context.Context, string) error {
	return nil
}
