package shardedmap

import (
	"sync"

	"github.com/huynhanx03/tripwise-api/pkg/hash"
	"github.com/huynhanx03/tripwise-api/pkg/utils"
)

// Op tells Update what to do with the value its callback produced.
type Op int

const (
	// OpKeep leaves the entry as it was (or absent, if it was absent).
	OpKeep Op = iota
	// OpStore writes the returned value under the key.
	OpStore
	// OpDelete removes the key.
	OpDelete
)

// Map is a thread-safe string-keyed map that uses sharding to minimize lock
// contention. Operations on keys in different shards never block each other;
// operations on the same key are mutually exclusive.
type Map[V any] struct {
	shards []*lockedShard[V]
	mask   uint64
}

type lockedShard[V any] struct {
	sync.RWMutex
	data map[string]V

	// Padding keeps each shard on its own cache line to avoid false sharing.
	pad [64]byte
}

// New creates a sharded map. shards is rounded up to the nearest power of 2;
// values <= 0 fall back to a reasonable default.
func New[V any](shards int) *Map[V] {
	if shards <= 0 {
		shards = 256
	}
	numShards := utils.CeilToPowerOfTwo(shards)
	m := &Map[V]{
		shards: make([]*lockedShard[V], numShards),
		mask:   uint64(numShards - 1),
	}

	for i := range m.shards {
		m.shards[i] = &lockedShard[V]{
			data: make(map[string]V),
		}
	}
	return m
}

func (m *Map[V]) shard(key string) *lockedShard[V] {
	return m.shards[hash.Sum64(key)&m.mask]
}

// Get retrieves a value from the map.
func (m *Map[V]) Get(key string) (V, bool) {
	shard := m.shard(key)

	shard.RLock()
	val, ok := shard.data[key]
	shard.RUnlock()
	return val, ok
}

// Set adds or updates a value in the map.
func (m *Map[V]) Set(key string, value V) {
	shard := m.shard(key)

	shard.Lock()
	shard.data[key] = value
	shard.Unlock()
}

// Del removes a value from the map.
func (m *Map[V]) Del(key string) {
	shard := m.shard(key)

	shard.Lock()
	delete(shard.data, key)
	shard.Unlock()
}

// Update runs fn on the current value for key under the shard's write lock
// and applies the returned Op. The whole read-decide-write sequence is atomic
// with respect to every other operation on the same key, which is what makes
// check-and-increment and expire-then-delete race-free.
func (m *Map[V]) Update(key string, fn func(cur V, ok bool) (V, Op)) {
	shard := m.shard(key)

	shard.Lock()
	cur, ok := shard.data[key]
	next, op := fn(cur, ok)
	switch op {
	case OpStore:
		shard.data[key] = next
	case OpDelete:
		delete(shard.data, key)
	}
	shard.Unlock()
}

// Len returns the total number of items in the map.
// It locks shards one at a time, so the count is not atomic across the map.
func (m *Map[V]) Len() int {
	total := 0
	for _, shard := range m.shards {
		shard.RLock()
		total += len(shard.data)
		shard.RUnlock()
	}
	return total
}

// Clear removes all items from the map.
func (m *Map[V]) Clear() {
	for _, shard := range m.shards {
		shard.Lock()
		shard.data = make(map[string]V)
		shard.Unlock()
	}
}
