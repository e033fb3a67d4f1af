package cache

import (
	"time"
)

// Cache defines the interface for in-memory caching with per-entry expiry.
type Cache[V any] interface {
	// Get returns the live value for key. Expired and absent keys both
	// report a miss.
	Get(key string) (V, bool)
	// Set stores value under key for ttl, overwriting any existing entry
	// and resetting its expiry. ttl <= 0 means the entry never expires.
	Set(key string, value V, ttl time.Duration)
	Delete(key string)
	Len() int
}
