package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"bookhub/internal/metrics"
)

// VolumeCache stores looked-up volumes. Implementations are best effort:
// a failed Get is a miss and a failed Set is ignored.
type VolumeCache interface {
	Get(ctx context.Context, id string) (*Volume, bool)
	Set(ctx context.Context, v *Volume)
}

// RedisVolumeCache keeps volumes as JSON strings under catalog:volume:<id>.
// A nil *RedisVolumeCache is a valid, disabled cache.
type RedisVolumeCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisClient connects to redis and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL, password string) (*redis.Client, error) {
	addr := strings.TrimPrefix(strings.TrimPrefix(redisURL, "redis://"), "rediss://")
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func NewRedisVolumeCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisVolumeCache {
	return &RedisVolumeCache{client: client, ttl: ttl, logger: logger}
}

func volumeKey(id string) string {
	return "catalog:volume:" + id
}

func (c *RedisVolumeCache) Get(ctx context.Context, id string) (*Volume, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, volumeKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CatalogCacheTotal.WithLabelValues("miss").Inc()
		} else {
			metrics.CatalogCacheTotal.WithLabelValues("error").Inc()
			c.logger.Warn().Err(err).Str("book_id", id).Msg("volume cache read failed")
		}
		return nil, false
	}

	var v Volume
	if err := json.Unmarshal(raw, &v); err != nil {
		metrics.CatalogCacheTotal.WithLabelValues("error").Inc()
		return nil, false
	}
	metrics.CatalogCacheTotal.WithLabelValues("hit").Inc()
	return &v, true
}

func (c *RedisVolumeCache) Set(ctx context.Context, v *Volume) {
	if c == nil || c.client == nil || v == nil {
		return
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, volumeKey(v.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("book_id", v.ID).Msg("volume cache write failed")
	}
}
