package google

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultCacheTTL is how long place lookups stay cached.
const DefaultCacheTTL = 30 * 24 * time.Hour

// ErrCacheMiss is returned by a Cache when a key is absent.
var ErrCacheMiss = eris.New("google: cache miss")

// Cache stores raw API payloads by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache implements Cache on a go-redis client.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache wraps an existing redis client.
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, eris.Wrap(err, "google: cache get")
	}
	return b, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return eris.Wrap(r.rdb.Set(ctx, key, value, ttl).Err(), "google: cache set")
}

// CachedClient decorates a Client with a read-through cache. Cache failures
// are logged and the live API is used.
type CachedClient struct {
	next  Client
	cache Cache
	ttl   time.Duration
}

// NewCachedClient wraps next with cache. A zero ttl uses DefaultCacheTTL.
func NewCachedClient(next Client, cache Cache, ttl time.Duration) *CachedClient {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedClient{next: next, cache: cache, ttl: ttl}
}

func (c *CachedClient) TextSearch(ctx context.Context, query string) (*TextSearchResponse, error) {
	key := "places:v1:search:" + hashKey(strings.ToLower(strings.TrimSpace(query)))
	var cached TextSearchResponse
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	resp, err := c.next.TextSearch(ctx, query)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, resp)
	return resp, nil
}

func (c *CachedClient) Details(ctx context.Context, placeID string) (*DetailsResponse, error) {
	key := "places:v1:details:" + placeID
	var cached DetailsResponse
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	resp, err := c.next.Details(ctx, placeID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, resp)
	return resp, nil
}

func (c *CachedClient) load(ctx context.Context, key string, out any) bool {
	b, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			zap.L().Debug("google: cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if len(b) == 0 {
		return false
	}
	return json.Unmarshal(b, out) == nil
}

func (c *CachedClient) store(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
		zap.L().Debug("google: cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
