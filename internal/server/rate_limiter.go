package server

import (
	"sync"
	"time"
)

// rateLimiter is a fixed-window counter keyed by caller. It backs the manual
// billing trigger, so the key space stays tiny and stale windows are pruned
// inline instead of by a sweeper.
type rateLimiter struct {
	limit  int
	window time.Duration
	mu     sync.Mutex
	items  map[string]*rateLimitEntry
}

type rateLimitEntry struct {
	windowStart time.Time
	count       int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:  limit,
		window: window,
		items:  make(map[string]*rateLimitEntry),
	}
}

func (r *rateLimiter) Allow(key string) bool {
	if key == "" {
		return false
	}

	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()

	for existing, entry := range r.items {
		if now.Sub(entry.windowStart) > r.window {
			delete(r.items, existing)
		}
	}

	entry := r.items[key]
	if entry == nil {
		entry = &rateLimitEntry{windowStart: now}
		r.items[key] = entry
	}
	if entry.count >= r.limit {
		return false
	}
	entry.count++
	return true
}
