package ratelimit

import (
	"time"

	"github.com/huynhanx03/tripwise-api/pkg/datastructs/shardedmap"
	"github.com/huynhanx03/tripwise-api/pkg/timer"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Remaining int
	// RetryAfter is the duration after which the client may try again.
	// Only set on rejection; always at least one second.
	RetryAfter time.Duration
}

// window is one client's fixed window. It starts on the client's first
// request, not on a calendar boundary, so windows of different keys are
// independent ("rolling reset").
type window struct {
	count   int
	resetAt time.Time
}

// Config holds limiter configuration.
type Config struct {
	// Shards controls lock granularity across client keys.
	Shards int

	// Timer is the time provider. If nil, the wall clock is used.
	Timer timer.Timer
}

// Limiter is a fixed-window rate limiter keyed by client identity.
//
// Windows are never deleted once created; the map grows with unique keys.
// Acceptable for short-lived processes, a scaling limit otherwise.
type Limiter struct {
	windows *shardedmap.Map[window]
	timer   timer.Timer
}

// New creates a fixed-window limiter.
func New(cfg Config) *Limiter {
	if cfg.Timer == nil {
		cfg.Timer = timer.StdTimer{}
	}
	return &Limiter{
		windows: shardedmap.New[window](cfg.Shards),
		timer:   cfg.Timer,
	}
}

// Allow charges one request against key's window and decides admission.
// The check and the increment run under one per-key lock, so two concurrent
// requests can never both take the last slot.
func (l *Limiter) Allow(key string, limit int, windowSize time.Duration) Decision {
	now := l.timer.Now()

	var dec Decision
	l.windows.Update(key, func(cur window, ok bool) (window, shardedmap.Op) {
		if !ok || now.After(cur.resetAt) {
			// First request from this key, or the previous window has
			// lapsed. Start a fresh one.
			dec = Decision{Allowed: true, Remaining: limit - 1}
			return window{count: 1, resetAt: now.Add(windowSize)}, shardedmap.OpStore
		}

		if cur.count < limit {
			cur.count++
			dec = Decision{Allowed: true, Remaining: limit - cur.count}
			return cur, shardedmap.OpStore
		}

		retry := cur.resetAt.Sub(now)
		retry = time.Duration(retrySeconds(retry)) * time.Second
		dec = Decision{Allowed: false, RetryAfter: retry}
		return cur, shardedmap.OpKeep
	})

	return dec
}

// Keys returns the number of tracked client windows, for diagnostics.
func (l *Limiter) Keys() int {
	return l.windows.Len()
}

// retrySeconds rounds up to whole seconds and clamps to >= 1 so a rejected
// client is never told to retry immediately.
func retrySeconds(d time.Duration) int {
	s := int((d + time.Second - 1) / time.Second)
	if s < 1 {
		return 1
	}
	return s
}
