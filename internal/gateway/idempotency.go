package gateway

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

// DefaultIdempotencyTTL bounds how long a cached create result is replayed.
const DefaultIdempotencyTTL = 24 * time.Hour

type idempotencyEntry struct {
	expiresAt time.Time
	value     taiga.Record
}

// IdempotencyStore is a process-local, time-bounded cache of create
// results keyed by CacheKey. Expired entries are purged lazily on every
// Get and Store; there is no background sweeper. The store does not
// survive restarts and is not shared across instances.
type IdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]idempotencyEntry
}

// NewIdempotencyStore creates a store with the given TTL. A zero or
// negative TTL falls back to DefaultIdempotencyTTL.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]idempotencyEntry),
	}
}

// SetClock overrides the store's time source (for testing TTL expiry).
func (s *IdempotencyStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Get returns a copy of the value stored under key, if present and not
// expired.
func (s *IdempotencyStore) Get(key string) (taiga.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpired()
	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return cloneRecord(entry.value), true
}

// Store upserts a copy of value under key, expiring after the TTL.
func (s *IdempotencyStore) Store(key string, value taiga.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpired()
	s.entries[key] = idempotencyEntry{
		expiresAt: s.now().Add(s.ttl),
		value:     cloneRecord(value),
	}
}

// Len reports the number of live entries.
func (s *IdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpired()
	return len(s.entries)
}

// purgeExpired drops entries whose expiry has passed. Caller holds the lock.
func (s *IdempotencyStore) purgeExpired() {
	now := s.now()
	for key, entry := range s.entries {
		if !entry.expiresAt.After(now) {
			delete(s.entries, key)
		}
	}
}

// CacheKey binds a caller-supplied idempotency token to the semantic
// content of the request, so reusing a token with a different payload is a
// miss rather than a stale replay.
func CacheKey(token string, userStoryID int, subject string) string {
	digest := sha256.Sum256([]byte(fmt.Sprintf("%d:%s", userStoryID, subject)))
	return token + ":" + hex.EncodeToString(digest[:])
}
