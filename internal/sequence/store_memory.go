package sequence

import (
	"context"
	"sync"

	id "warga/pkg/domain"
)

type counterKey struct {
	docType id.DocumentType
	year    int
}

// counter serializes allocations for one key. Each key owns its lock so
// allocations for different (type, year) pairs never block each other.
type counter struct {
	mu   sync.Mutex
	last int
}

// InMemoryStore keeps per-key counters under per-key locks.
type InMemoryStore struct {
	mu       sync.Mutex // guards the counters map only
	counters map[counterKey]*counter
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{counters: make(map[counterKey]*counter)}
}

func (s *InMemoryStore) Next(_ context.Context, docType id.DocumentType, year int) (int, error) {
	key := counterKey{docType: docType, year: year}

	s.mu.Lock()
	c, exists := s.counters[key]
	if !exists {
		c = &counter{}
		s.counters[key] = c
	}
	s.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.last++
	return c.last, nil
}

// Snapshot copies counter positions for transactional rollback, so a failed
// approval does not leave a gap in the sequence.
func (s *InMemoryStore) Snapshot() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := make(map[counterKey]int, len(s.counters))
	for k, c := range s.counters {
		c.mu.Lock()
		snap[k] = c.last
		c.mu.Unlock()
	}
	return snap
}

// Restore resets counters to a snapshot taken earlier.
func (s *InMemoryStore) Restore(snapshot any) {
	snap, ok := snapshot.(map[counterKey]int)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, c := range s.counters {
		last, existed := snap[k]
		c.mu.Lock()
		if existed {
			c.last = last
		} else {
			c.last = 0
		}
		c.mu.Unlock()
	}
}
