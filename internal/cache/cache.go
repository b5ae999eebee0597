// Package cache implements a TTL-expiring key/value cache layered over the
// flat persistent store. Entries are wrapped with their creation timestamp
// and TTL and expire lazily: an expired or corrupt entry is deleted the next
// time it is read, never on a timer. The cache is best-effort throughout —
// no failure mode escapes the API as an error.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/mvdwalt/weatherornot/internal/storage"
)

// Prefix namespaces every cache key so Clear and the eviction pass never
// touch unrelated persisted state such as settings.
const Prefix = "weatherornot_"

// entry is the persisted wrapper around a cached payload. Timestamp and TTL
// are in milliseconds since the Unix epoch / milliseconds respectively; an
// entry is valid iff now-Timestamp <= TTL.
type entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	TTL       int64           `json:"ttl"`
}

// Cache is a namespaced TTL cache over a storage.Store.
type Cache struct {
	store storage.Store
	log   *zap.SugaredLogger

	// now is the clock; tests override it to exercise expiry.
	now func() time.Time
}

// New creates a Cache over the given store.
func New(store storage.Store, log *zap.SugaredLogger) *Cache {
	return &Cache{store: store, log: log, now: time.Now}
}

// SetClock overrides the cache's clock. Used only in tests.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

// Get deserializes the entry stored under key into dest and reports whether
// a valid entry was found. A missing, corrupt, or expired entry is a miss;
// corrupt and expired entries are deleted from storage as a side effect.
func Get[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var zero T

	raw, err := c.store.Get(ctx, Prefix+key)
	if err != nil {
		return zero, false
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		_ = c.store.Delete(ctx, Prefix+key)
		return zero, false
	}

	if c.nowMillis()-e.Timestamp > e.TTL {
		_ = c.store.Delete(ctx, Prefix+key)
		return zero, false
	}

	var data T
	if err := json.Unmarshal(e.Data, &data); err != nil {
		_ = c.store.Delete(ctx, Prefix+key)
		return zero, false
	}
	return data, true
}

// Set writes data under key with the given TTL in milliseconds. A TTL <= 0
// disables caching for the call: nothing is written and any existing entry
// is left untouched. If the store rejects the write, one eviction pass runs
// over the cache namespace and the write is retried exactly once; a second
// failure drops the write silently.
func Set[T any](ctx context.Context, c *Cache, key string, data T, ttlMs int64) {
	if ttlMs <= 0 {
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		c.logw("cache: marshal failed", "key", key, "error", err)
		return
	}
	raw, err := json.Marshal(entry{
		Data:      payload,
		Timestamp: c.nowMillis(),
		TTL:       ttlMs,
	})
	if err != nil {
		return
	}

	if err := c.store.Set(ctx, Prefix+key, string(raw)); err != nil {
		c.evictExpired(ctx)
		if err := c.store.Set(ctx, Prefix+key, string(raw)); err != nil {
			c.logw("cache: write dropped after eviction retry", "key", key, "error", err)
		}
	}
}

// Remove deletes one namespaced entry. Removing an absent key is a no-op.
func (c *Cache) Remove(ctx context.Context, key string) {
	_ = c.store.Delete(ctx, Prefix+key)
}

// Clear deletes every entry in the cache namespace, leaving unrelated
// storage keys untouched.
func (c *Cache) Clear(ctx context.Context) {
	keys, err := c.store.Keys(ctx, Prefix)
	if err != nil {
		return
	}
	for _, k := range keys {
		_ = c.store.Delete(ctx, k)
	}
}

// Size counts entries in the cache namespace without deserializing payloads.
func (c *Cache) Size(ctx context.Context) int {
	keys, err := c.store.Keys(ctx, Prefix)
	if err != nil {
		return 0
	}
	return len(keys)
}

// evictExpired deletes every expired or corrupt entry in the namespace to
// free space when the store reports it is full.
func (c *Cache) evictExpired(ctx context.Context) {
	keys, err := c.store.Keys(ctx, Prefix)
	if err != nil {
		return
	}

	now := c.nowMillis()
	for _, k := range keys {
		raw, err := c.store.Get(ctx, k)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			// Corrupted entry, reclaim it.
			_ = c.store.Delete(ctx, k)
			continue
		}
		if now-e.Timestamp > e.TTL {
			_ = c.store.Delete(ctx, k)
		}
	}
}

func (c *Cache) nowMillis() int64 {
	return c.now().UnixMilli()
}

func (c *Cache) logw(msg string, kv ...interface{}) {
	if c.log != nil {
		c.log.Debugw(msg, kv...)
	}
}
