package redisdb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Config struct {
	Address  string
	Password string
	DB       int
}

func New(ctx context.Context, cfg Config, log *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "connecting to redis")
	}

	log.Info("connected to redis", zap.String("address", cfg.Address))

	return client, nil
}

// Cache stores JSON encoded values under a key prefix.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCache(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

// Get decodes the value under key into dst. It reports false on a miss.
func (c *Cache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "reading cache key %s", key)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, errors.Wrapf(err, "decoding cache key %s", key)
	}

	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding cache key %s", key)
	}

	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		return errors.Wrapf(err, "writing cache key %s", key)
	}

	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.prefix+k)
	}

	return c.client.Del(ctx, full...).Err()
}
