package store

import (
	"context"
	"sync"
	"time"

	"github.com/openclave/sigil/core"
)

type memoryEntry struct {
	challenge core.Challenge
	expiresAt time.Time
}

// MemoryStore is an in-process implementation of the ChallengeStore
// interface. It is the fallback when Redis is unreachable: challenges are not
// shared across instances (a scaling caveat, not a correctness one), but the
// single mutex still guarantees at-most-one consumer within this process.
type MemoryStore struct {
	entries map[string]memoryEntry
	mu      sync.Mutex
	now     func() time.Time
}

// NewMemoryStore creates a new in-memory challenge store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Put stores the challenge for address, replacing any existing entry.
func (s *MemoryStore) Put(ctx context.Context, address string, challenge core.Challenge, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[address] = memoryEntry{
		challenge: challenge,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// ConsumeIfMatch deletes the stored challenge only on an exact match. An
// entry past its expiry is treated as absent even though it has not been
// evicted yet.
func (s *MemoryStore) ConsumeIfMatch(ctx context.Context, address string, candidate core.Challenge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[address]
	if !ok {
		return false, nil
	}

	if s.now().After(entry.expiresAt) {
		delete(s.entries, address)
		return false, nil
	}

	if !entry.challenge.Equal(candidate) {
		return false, nil
	}

	delete(s.entries, address)
	return true, nil
}
