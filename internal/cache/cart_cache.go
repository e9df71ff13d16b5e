// Package cache keeps serialized cart views in Redis. A nil *CartCache is valid
// and behaves as an always-miss cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultPrefix = "shop"
	DefaultTTL    = 5 * time.Minute
)

type CartCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCartCache(client *redis.Client, prefix string, ttl time.Duration) *CartCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CartCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *CartCache) key(userID uint) string {
	return fmt.Sprintf("%s:cart:%s", c.prefix, strconv.FormatUint(uint64(userID), 10))
}

// Get returns the cached payload; ok is false on a miss.
func (c *CartCache) Get(ctx context.Context, userID uint) (data []byte, ok bool, err error) {
	if c == nil {
		return nil, false, nil
	}
	data, err = c.client.Get(ctx, c.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *CartCache) Set(ctx context.Context, userID uint, data []byte) error {
	if c == nil {
		return nil
	}
	return c.client.Set(ctx, c.key(userID), data, c.ttl).Err()
}

func (c *CartCache) Invalidate(ctx context.Context, userID uint) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, c.key(userID)).Err()
}

// InvalidateAll drops every cached cart. Used when a product or variant changes,
// since any cart may embed it.
func (c *CartCache) InvalidateAll(ctx context.Context) error {
	if c == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, c.prefix+":cart:*", 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.client.Del(ctx, batch...).Err()
	}
	return nil
}

func (c *CartCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
