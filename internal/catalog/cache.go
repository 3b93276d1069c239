package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "catalog:version"

// Cache wraps Redis based caching of per-salon catalog snapshots with a
// version counter for invalidation. A nil or unreachable cache degrades to
// loader-only operation; catalog reads must not fail because Redis is down.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Bump invalidates every cached snapshot by advancing the version.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

// key composes the per-salon cache key with the current version.
func (c *Cache) key(ctx context.Context, salonID int64) (string, error) {
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("catalog:salon:%d:%d", salonID, ver), nil
}

// FetchItems loads a cached catalog snapshot or populates it via loader.
func (c *Cache) FetchItems(ctx context.Context, salonID int64, loader func(context.Context) ([]ServiceItem, error)) ([]ServiceItem, error) {
	if loader == nil {
		return nil, errors.New("catalog: cache loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	key, err := c.key(ctx, salonID)
	if err != nil {
		return loader(ctx)
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var items []ServiceItem
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
	}
	items, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(items); err == nil {
		_ = c.client.Set(ctx, key, data, c.ttl).Err()
	}
	return items, nil
}
