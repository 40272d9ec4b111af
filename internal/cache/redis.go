package cache

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// TTL of stored series. 0 means no expiry.
	TTL time.Duration
}

// redisClient is the subset of *goredis.Client the cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// RedisCache stores series as JSON strings.
type RedisCache struct {
	client redisClient
	ttl    time.Duration
}

// NewRedisCache connects to Redis and pings it.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()

		return nil, errors.Wrapf(errors.ErrCodeCacheFailed, err, "redis ping %s", cfg.Addr)
	}

	return newRedisCacheWithClient(client, cfg.TTL), nil
}

func newRedisCacheWithClient(client redisClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) (optional.Option[types.PriceSeries], error) {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == goredis.Nil {
			return optional.None[types.PriceSeries](), nil
		}

		return nil, errors.Wrapf(errors.ErrCodeCacheFailed, err, "redis get %s", key)
	}

	var series types.PriceSeries
	if err := json.Unmarshal([]byte(data), &series); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeCacheFailed, err, "decode cached series %s", key)
	}

	return optional.Some(series), nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, series types.PriceSeries) error {
	data, err := json.Marshal(series)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeCacheFailed, err, "encode series %s", key)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return errors.Wrapf(errors.ErrCodeCacheFailed, err, "redis set %s", key)
	}

	return nil
}

// Delete implements Cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return errors.Wrapf(errors.ErrCodeCacheFailed, err, "redis del %s", key)
	}

	return nil
}
