// Package cache is a read-through cache for catalog reads. It is backed by
// Redis when configured and is a no-op otherwise.
package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

const (
	defaultPrefix    = "kitobxon:"
	operationTimeout = 2 * time.Second
	scanBatchSize    = 100
)

// Cache stores JSON-encoded values under string keys.
type Cache interface {
	// Get decodes the value stored at key into dest and reports whether it
	// was found.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// RedisCache implements Cache on top of a go-redis client.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache builds a Redis-backed cache whose entries expire after ttl.
func NewRedisCache(addr, password string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		prefix: defaultPrefix,
		ttl:    ttl,
	}
}

// Ping checks that Redis is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()
	return errors.WithStack(c.client.Ping(ctx).Err())
}

func (c *RedisCache) Close() error {
	return errors.WithStack(c.client.Close())
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.WithStack(err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, errors.WithStack(err)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.WithStack(err)
	}
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()
	return errors.WithStack(c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err())
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()
	err := c.client.Del(ctx, full...).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return errors.WithStack(err)
	}
	return nil
}

// DeletePrefix removes every key starting with prefix using SCAN, so it never
// blocks Redis the way KEYS would.
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()
	iter := c.client.Scan(ctx, 0, c.prefix+prefix+"*", scanBatchSize).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= scanBatchSize {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return errors.WithStack(err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return errors.WithStack(err)
	}
	if len(batch) > 0 {
		return errors.WithStack(c.client.Del(ctx, batch...).Err())
	}
	return nil
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, interface{}) error         { return nil }
func (Noop) Delete(context.Context, ...string) error                { return nil }
func (Noop) DeletePrefix(context.Context, string) error             { return nil }

// GetOrLoad returns the cached value at key, calling load and caching its
// result on a miss. Cache errors are logged and never fail the read.
func GetOrLoad[T any](ctx context.Context, c Cache, key string, load func() (T, error)) (T, error) {
	log := logger.FromContext(ctx)

	var cached T
	found, err := c.Get(ctx, key, &cached)
	if err != nil {
		log.Warn("cache read failed", logger.Data{"key": key, "error": err.Error()})
	}
	if found {
		return cached, nil
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if err := c.Set(ctx, key, value); err != nil {
		log.Warn("cache write failed", logger.Data{"key": key, "error": err.Error()})
	}
	return value, nil
}
