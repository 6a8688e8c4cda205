// Package attempt tracks failed login attempts per username in a
// bounded, time-aware in-memory cache.
package attempt

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/mnibras/user-manager-api/internal/model"
)

var _ model.AttemptTracker = (*Tracker)(nil)

// Tracker counts consecutive failed attempts per identifier. The cache
// is bounded in size and every entry expires after the configured
// window, so attacker-controlled usernames cannot grow memory without
// limit.
type Tracker struct {
	mu          sync.Mutex
	cache       *expirable.LRU[string, int]
	maxAttempts int
}

// NewTracker creates a Tracker holding at most maxEntries counters,
// each expiring window after its last failure. An identifier is
// considered over the limit once its counter reaches maxAttempts.
func NewTracker(maxAttempts, maxEntries int, window time.Duration) *Tracker {
	return &Tracker{
		cache:       expirable.NewLRU[string, int](maxEntries, nil, window),
		maxAttempts: maxAttempts,
	}
}

// RecordFailure increments the failure counter for identifier,
// creating it if absent.
func (t *Tracker) RecordFailure(identifier string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	count, _ := t.cache.Get(identifier)
	t.cache.Add(identifier, count+1)
}

// HasExceededMaxAttempts reports whether identifier has reached the
// attempt limit within the window.
func (t *Tracker) HasExceededMaxAttempts(identifier string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	count, ok := t.cache.Get(identifier)
	return ok && count >= t.maxAttempts
}

// Evict removes the counter for identifier so counting starts fresh.
// Called when an account transitions from locked back to active.
func (t *Tracker) Evict(identifier string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cache.Remove(identifier)
}
