package store

import (
	"context"
	"sync"
	"time"

	"github.com/taskhive/taskhive/ports"
)

// DefaultCapacity matches the historical in-process blacklist bound.
const DefaultCapacity = 10000

// MemoryStore is the bounded, volatile revocation store: a mutex-guarded set
// of token strings with per-entry expiry. Expired entries are purged lazily
// on access; when the set is full, the entry nearest to its natural expiry is
// evicted to make room. The bound is therefore soft — an entry evicted early
// would have expired within one TTL window anyway, and the token it shadows
// is still rejected by the codec's own expiry check.
//
// State is process-local. Running more than one process requires the Redis
// variant instead.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]time.Time
	capacity int
	now      func() time.Time
}

// NewMemoryStore creates a store holding at most capacity entries. A
// non-positive capacity selects DefaultCapacity.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		entries:  make(map[string]time.Time),
		capacity: capacity,
		now:      time.Now,
	}
}

var _ ports.RevocationStore = (*MemoryStore)(nil)

// Revoke records the token as revoked for ttl. Returns whether this call
// created the entry.
func (s *MemoryStore) Revoke(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiry, ok := s.entries[token]; ok && now.Before(expiry) {
		return false, nil
	}

	if len(s.entries) >= s.capacity {
		s.purgeExpiredLocked(now)
	}
	if len(s.entries) >= s.capacity {
		s.evictEarliestLocked()
	}

	s.entries[token] = now.Add(ttl)
	return true, nil
}

// IsRevoked reports whether the token is currently revoked.
func (s *MemoryStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.entries[token]
	if !ok {
		return false, nil
	}
	if !s.now().Before(expiry) {
		delete(s.entries, token)
		return false, nil
	}
	return true, nil
}

// Len returns the current entry count. Useful for tests and metrics.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) purgeExpiredLocked(now time.Time) {
	for token, expiry := range s.entries {
		if !now.Before(expiry) {
			delete(s.entries, token)
		}
	}
}

func (s *MemoryStore) evictEarliestLocked() {
	var victim string
	var earliest time.Time
	for token, expiry := range s.entries {
		if victim == "" || expiry.Before(earliest) {
			victim = token
			earliest = expiry
		}
	}
	if victim != "" {
		delete(s.entries, victim)
	}
}
