package mutation

import (
	"context"
	"sync"

	id "warga/pkg/domain"
)

// InMemoryStore keeps the mutation log as an ordered slice per subject.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.ResidentID][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.ResidentID][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.SubjectID] = append(s.events[event.SubjectID], *event)
	return nil
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subjectID id.ResidentID) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.events[subjectID]
	out := make([]*Event, 0, len(stored))
	for i := range stored {
		event := stored[i]
		out = append(out, &event)
	}
	return out, nil
}

// Snapshot copies the log for transactional rollback.
func (s *InMemoryStore) Snapshot() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[id.ResidentID][]Event, len(s.events))
	for k, v := range s.events {
		snap[k] = append([]Event{}, v...)
	}
	return snap
}

// Restore replaces the log with a snapshot taken earlier.
func (s *InMemoryStore) Restore(snapshot any) {
	snap, ok := snapshot.(map[id.ResidentID][]Event)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = snap
}
