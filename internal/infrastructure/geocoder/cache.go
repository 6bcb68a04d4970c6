package geocoder

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/pkg/helpers"
)

type Geocoder interface {
	Geocode(ctx context.Context, address string) (*entity.Location, error)
}

// Cache is a JSON key-value store with expiry.
type Cache interface {
	Get(ctx context.Context, key string, dest *entity.Location) (bool, error)
	Set(ctx context.Context, key string, val *entity.Location, ttl time.Duration) error
}

// RedisCache stores geocoding results as JSON strings.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest *entity.Location) (bool, error) {
	return helpers.RedisGetJSON(ctx, c.rdb, key, dest)
}

func (c *RedisCache) Set(ctx context.Context, key string, val *entity.Location, ttl time.Duration) error {
	return helpers.RedisSetJSON(ctx, c.rdb, key, val, ttl)
}

// Cached memoizes successful lookups of next. Cache failures are logged and bypassed.
type Cached struct {
	next   Geocoder
	cache  Cache
	ttl    time.Duration
	logger *logrus.Logger
}

func NewCached(next Geocoder, cache Cache, ttl time.Duration, logger *logrus.Logger) *Cached {
	return &Cached{next: next, cache: cache, ttl: ttl, logger: logger}
}

func cacheKey(address string) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.Join(strings.Fields(address), " "))))
	return "geocode:" + hex.EncodeToString(sum[:])
}

func (c *Cached) Geocode(ctx context.Context, address string) (*entity.Location, error) {
	key := cacheKey(address)

	var loc entity.Location
	hit, err := c.cache.Get(ctx, key, &loc)
	if err != nil && c.logger != nil {
		c.logger.WithError(err).WithField("key", key).Warn("geocode cache read failed")
	}
	if hit {
		return &loc, nil
	}

	res, err := c.next.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, res, c.ttl); err != nil && c.logger != nil {
		c.logger.WithError(err).WithField("key", key).Warn("geocode cache write failed")
	}
	return res, nil
}
