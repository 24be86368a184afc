package reference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/felixhommels/mcsbt-capstone-be/internal/metrics"
	"github.com/felixhommels/mcsbt-capstone-be/pkg/models"
)

// DefaultCacheTTL bounds how long reference rows, including misses, are cached.
const DefaultCacheTTL = 6 * time.Hour

// Cache stores encoded reference values by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ---------------------------------------------------------------------------
// In-process cache
// ---------------------------------------------------------------------------

// LocalCache is an in-process Cache backed by go-cache.
type LocalCache struct {
	c *gocache.Cache
}

// NewLocalCache creates an in-process cache that sweeps expired keys every cleanup.
func NewLocalCache(ttl, cleanup time.Duration) *LocalCache {
	return &LocalCache{c: gocache.New(ttl, cleanup)}
}

func (l *LocalCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := l.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

func (l *LocalCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	l.c.Set(key, value, ttl)
	return nil
}

// ---------------------------------------------------------------------------
// Redis cache
// ---------------------------------------------------------------------------

// RedisClient is the subset of the redis client used for caching.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisCache shares reference rows between service instances.
type RedisCache struct {
	rdb    RedisClient
	prefix string
}

// NewRedisCache wraps a redis client. Keys are namespaced with prefix.
func NewRedisCache(rdb RedisClient, prefix string) *RedisCache {
	return &RedisCache{rdb: rdb, prefix: prefix}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return b, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Caching decorator
// ---------------------------------------------------------------------------

// Cached is a Lookup that consults a Cache before the wrapped source.
// Airline and emission misses are cached as JSON null. Missing airports
// are not cached so newly loaded codes show up immediately.
type Cached struct {
	next  Lookup
	cache Cache
	ttl   time.Duration
}

// NewCached decorates next with cache. A non-positive ttl uses DefaultCacheTTL.
func NewCached(next Lookup, cache Cache, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{next: next, cache: cache, ttl: ttl}
}

func (c *Cached) Airports(ctx context.Context, codes []string) (map[string]models.AirportInfo, error) {
	codes = dedupe(codes)
	out := make(map[string]models.AirportInfo, len(codes))

	var missing []string
	for _, code := range codes {
		var a models.AirportInfo
		if c.load(ctx, "airport:"+code, &a) {
			out[code] = a
			continue
		}
		missing = append(missing, code)
	}
	if len(missing) == 0 {
		return out, nil
	}

	found, err := c.next.Airports(ctx, missing)
	if err != nil {
		return nil, err
	}
	for code, a := range found {
		out[code] = a
		c.store(ctx, "airport:"+code, a)
	}
	return out, nil
}

func (c *Cached) Airline(ctx context.Context, icao string) (*models.AirlineInfo, error) {
	var info *models.AirlineInfo
	if c.load(ctx, "airline:"+icao, &info) {
		return info, nil
	}
	info, err := c.next.Airline(ctx, icao)
	if err != nil {
		return nil, err
	}
	c.store(ctx, "airline:"+icao, info)
	return info, nil
}

func (c *Cached) EmissionFactor(ctx context.Context, aircraft string) (*float64, error) {
	var f *float64
	if c.load(ctx, "co2:"+aircraft, &f) {
		return f, nil
	}
	f, err := c.next.EmissionFactor(ctx, aircraft)
	if err != nil {
		return nil, err
	}
	c.store(ctx, "co2:"+aircraft, f)
	return f, nil
}

// load reports whether key was cached and decoded into dst. Cache failures
// read as misses.
func (c *Cached) load(ctx context.Context, key string, dst any) bool {
	b, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		log.Warn("reference cache read failed", "key", key, "error", err)
	}
	if err != nil || !ok {
		metrics.ReferenceCache.WithLabelValues("miss").Inc()
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		log.Warn("discarding undecodable cache entry", "key", key, "error", err)
		metrics.ReferenceCache.WithLabelValues("miss").Inc()
		return false
	}
	metrics.ReferenceCache.WithLabelValues("hit").Inc()
	return true
}

func (c *Cached) store(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
		log.Warn("reference cache write failed", "key", key, "error", err)
	}
}
