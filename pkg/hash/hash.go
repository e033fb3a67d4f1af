package hash

import (
	"github.com/cespare/xxhash/v2"
)

// Sum64 returns a stable 64-bit hash of the key.
// xxhash gives a good distribution for shard selection without allocation.
func Sum64(key string) uint64 {
	return xxhash.Sum64String(key)
}
