package ttl

import (
	"time"

	"github.com/huynhanx03/tripwise-api/pkg/common/cache"
	"github.com/huynhanx03/tripwise-api/pkg/datastructs/shardedmap"
	"github.com/huynhanx03/tripwise-api/pkg/timer"
)

var _ cache.Cache[any] = (*Cache[any])(nil)

// Config holds cache configuration.
type Config struct {
	// Shards controls lock granularity. Rounded up to a power of 2.
	Shards int

	// Timer is the time provider. If nil, the wall clock is used.
	Timer timer.Timer
}

// Cache is a thread-safe key/value store with lazy per-entry expiry.
//
// There is no background sweeper and no size cap: an expired entry is
// removed the first time a reader finds it, so memory is bounded only by
// unique-key cardinality. That is an accepted tradeoff for short-lived,
// low-traffic deployments, not a property to rely on at scale.
type Cache[V any] struct {
	store *shardedmap.Map[entry[V]]
	timer timer.Timer
}

type entry[V any] struct {
	value     V
	expiresAt time.Time // zero => no expiry
}

func (e *entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// New creates a TTL cache.
func New[V any](cfg Config) *Cache[V] {
	if cfg.Timer == nil {
		cfg.Timer = timer.StdTimer{}
	}
	return &Cache[V]{
		store: shardedmap.New[entry[V]](cfg.Shards),
		timer: cfg.Timer,
	}
}

// Get returns the live value for key. Finding an expired entry removes it as
// a side effect; the removal re-checks expiry under the shard write lock so a
// writer racing an expiring reader is never lost.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	e, ok := c.store.Get(key)
	if !ok {
		return zero, false
	}

	now := c.timer.Now()
	if !e.expired(now) {
		return e.value, true
	}

	// Lazy eviction. Between the read above and taking the write lock a
	// concurrent Set may have replaced the entry, so only delete when it
	// is still expired.
	c.store.Update(key, func(cur entry[V], exists bool) (entry[V], shardedmap.Op) {
		if exists && cur.expired(now) {
			return cur, shardedmap.OpDelete
		}
		return cur, shardedmap.OpKeep
	})

	return zero, false
}

// Set stores value under key, unconditionally overwriting any existing entry
// and resetting its expiry (last-write-wins).
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	e := entry[V]{value: value}
	if ttl > 0 {
		e.expiresAt = c.timer.Now().Add(ttl)
	}
	c.store.Set(key, e)
}

// Delete removes the entry for key, expired or not.
func (c *Cache[V]) Delete(key string) {
	c.store.Del(key)
}

// Len returns the number of stored entries, including expired entries that
// no reader has touched yet.
func (c *Cache[V]) Len() int {
	return c.store.Len()
}
