package repositories

import (
	"context"
	"sync"
	"time"
)

// RateLimitRepository provides an atomic way to check and increment rate limit counters.
type RateLimitRepository interface {
	// IncrementAndCheck atomically increments a counter for the given key and checks if it exceeds the limit.
	// It returns true if the request is allowed (count <= limit), and false otherwise.
	IncrementAndCheck(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	// CleanupExpired removes all counter keys that have expired.
	CleanupExpired(ctx context.Context) error
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

// This service is deliberately stateless, so the counters live in process
// memory. An expired key resets to a fresh window on the next hit, matching
// the SQL upsert the account services use.
type rateLimitRepository struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	now     func() time.Time
}

func NewRateLimitRepository() RateLimitRepository {
	return &rateLimitRepository{
		entries: make(map[string]*rateLimitEntry),
		now:     time.Now,
	}
}

func (r *rateLimitRepository) IncrementAndCheck(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	e, ok := r.entries[key]
	if !ok || e.expiresAt.Before(now) {
		r.entries[key] = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
		return 1 <= limit, nil
	}

	e.count++
	return e.count <= limit, nil
}

func (r *rateLimitRepository) CleanupExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for key, e := range r.entries {
		if e.expiresAt.Before(now) {
			delete(r.entries, key)
		}
	}
	return nil
}
