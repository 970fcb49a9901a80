package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Outcome of a read-through lookup
type Outcome string

const (
	Hit  Outcome = "hit"
	Miss Outcome = "miss"
	// Bypass means the cache was disabled or unreadable and the loader ran
	Bypass Outcome = "bypass"
)

// Cache stores JSON encoded values under "<namespace>:v<version>:<key>".
// Bumping the version orphans every entry written by an older encoding.
type Cache struct {
	client    *Client
	namespace string
	version   int
	onError   func(op, key string, err error)
}

// NewCache creates a cache helper at version 1
func NewCache(client *Client, namespace string) *Cache {
	return &Cache{
		client:    client,
		namespace: namespace,
		version:   1,
		onError:   func(string, string, error) {},
	}
}

// WithVersion returns a copy writing under another key version
func (c *Cache) WithVersion(v int) *Cache {
	cp := *c
	cp.version = v
	return &cp
}

// OnError registers a hook for read and write failures swallowed by Load
func (c *Cache) OnError(fn func(op, key string, err error)) *Cache {
	if fn != nil {
		c.onError = fn
	}
	return c
}

// Key joins parts into a cache key
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

func (c *Cache) fullKey(key string) string {
	return c.namespace + ":v" + strconv.Itoa(c.version) + ":" + key
}

// Get retrieves a cached value. A missing key reports found=false with no error.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores a value with a TTL
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.client.Redis().Set(ctx, c.fullKey(key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}
	return c.client.Redis().Del(ctx, c.fullKey(key)).Err()
}

// Load returns the cached value for key, or calls fill and caches its result.
// Cache failures never fail the call: they go to the OnError hook and fill runs.
// Only errors from fill are returned. Values for which keep returns false are not stored.
func Load[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, keep func(T) bool, fill func(context.Context) (T, error)) (T, Outcome, error) {
	outcome := Bypass
	if c.client.Enabled() {
		var cached T
		found, err := c.Get(ctx, key, &cached)
		switch {
		case err != nil:
			c.onError("get", key, err)
		case found && (keep == nil || keep(cached)):
			return cached, Hit, nil
		default:
			outcome = Miss
		}
	}

	value, err := fill(ctx)
	if err != nil {
		var zero T
		return zero, outcome, err
	}

	if c.client.Enabled() && (keep == nil || keep(value)) {
		if err := c.Set(ctx, key, value, ttl); err != nil {
			c.onError("set", key, err)
		}
	}
	return value, outcome, nil
}
