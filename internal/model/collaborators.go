package model

import "context"

// PasswordHasher is a one-way, salted credential hash.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// AttemptTracker counts failed login attempts per identifier. Entries
// expire on their own after the configured window; Evict clears one
// explicitly when an account transitions from locked back to active.
type AttemptTracker interface {
	RecordFailure(identifier string)
	HasExceededMaxAttempts(identifier string) bool
	Evict(identifier string)
}

// Notifier delivers generated passwords out-of-band. Delivery is
// fire-and-forget from the caller's perspective.
type Notifier interface {
	SendGeneratedPassword(ctx context.Context, firstName, password, email string) error
}
