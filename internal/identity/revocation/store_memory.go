package revocation

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts time.Now for deterministic tests.
type Clock func() time.Time

// MemoryTRL is an in-process token revocation list for development and tests.
// Entries expire lazily on read.
type MemoryTRL struct {
	mu      sync.Mutex
	expires map[string]time.Time
	clock   Clock
}

// MemoryTRLOption configures a MemoryTRL instance.
type MemoryTRLOption func(*MemoryTRL)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) MemoryTRLOption {
	return func(trl *MemoryTRL) {
		if clock != nil {
			trl.clock = clock
		}
	}
}

// NewMemoryTRL constructs an in-memory token revocation list.
func NewMemoryTRL(opts ...MemoryTRLOption) *MemoryTRL {
	trl := &MemoryTRL{
		expires: make(map[string]time.Time),
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(trl)
		}
	}
	return trl
}

// Revoke adds a token to the revocation list until the given TTL elapses.
func (t *MemoryTRL) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expires[jti] = t.clock().Add(ttl)
	return nil
}

// IsRevoked checks if a token is in the revocation list.
func (t *MemoryTRL) IsRevoked(_ context.Context, jti string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	expiry, ok := t.expires[jti]
	if !ok {
		return false, nil
	}
	if t.clock().After(expiry) {
		delete(t.expires, jti)
		return false, nil
	}
	return true, nil
}
