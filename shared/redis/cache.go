package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ViewCache is a JSON-backed Redis cache for read models, keyed by prefix+id.
// With a nil client every Get misses and writes are no-ops.
type ViewCache[T any] struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewViewCache[T any](client *goredis.Client, prefix string, ttl time.Duration) *ViewCache[T] {
	return &ViewCache[T]{client: client, prefix: prefix, ttl: ttl}
}

func (c *ViewCache[T]) Enabled() bool { return c != nil && c.client != nil }

func (c *ViewCache[T]) key(id string) string { return c.prefix + id }

// Get returns (nil, false) on a miss, a Redis error or a decode error.
func (c *ViewCache[T]) Get(ctx context.Context, id string) (*T, bool) {
	if !c.Enabled() {
		return nil, false
	}
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			log.Printf("ViewCache: read error for key %s: %v", c.key(id), err)
		}
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// Set stores value under id. Failures are logged; a missed cache write is non-fatal.
func (c *ViewCache[T]) Set(ctx context.Context, id string, value *T) {
	if !c.Enabled() {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("ViewCache: marshal error for key %s: %v", c.key(id), err)
		return
	}
	if err := c.client.Set(ctx, c.key(id), data, c.ttl).Err(); err != nil {
		log.Printf("ViewCache: write error for key %s: %v", c.key(id), err)
	}
}

// Delete drops ids in one round trip.
func (c *ViewCache[T]) Delete(ctx context.Context, ids ...string) {
	if !c.Enabled() || len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("ViewCache: delete error for keys %v: %v", keys, err)
	}
}

// DeleteAfter drops ids again once delay has passed. A read that loaded a row
// before a write committed can still Set it after the first Delete; the second
// Delete removes that value.
func (c *ViewCache[T]) DeleteAfter(ctx context.Context, delay time.Duration, ids ...string) {
	if !c.Enabled() || len(ids) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		c.Delete(ctx, ids...)
	})
}

// Purge drops every key under the cache prefix.
func (c *ViewCache[T]) Purge(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan %s*: %w", c.prefix, err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
