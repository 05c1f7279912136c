package household

import (
	"context"
	"sync"

	id "warga/pkg/domain"
	"warga/pkg/platform/sentinel"
)

// InMemoryStore keeps households in maps, stored by value.
type InMemoryStore struct {
	mu         sync.RWMutex
	households map[id.HouseholdID]Household
	byNumber   map[id.HouseholdNumber]id.HouseholdID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		households: make(map[id.HouseholdID]Household),
		byNumber:   make(map[id.HouseholdNumber]id.HouseholdID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, hh *Household) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byNumber[hh.Number]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.households[hh.ID] = *hh
	s.byNumber[hh.Number] = hh.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, householdID id.HouseholdID) (*Household, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hh, exists := s.households[householdID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return &hh, nil
}

// FindByIDForUpdate is plain FindByID here; the memory transaction runner
// serializes whole transactions, so no row-level lock is needed.
func (s *InMemoryStore) FindByIDForUpdate(ctx context.Context, householdID id.HouseholdID) (*Household, error) {
	return s.FindByID(ctx, householdID)
}

func (s *InMemoryStore) FindByNumber(_ context.Context, number id.HouseholdNumber) (*Household, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	householdID, exists := s.byNumber[number]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	hh := s.households[householdID]
	return &hh, nil
}

func (s *InMemoryStore) Update(_ context.Context, hh *Household) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.households[hh.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.households[hh.ID] = *hh
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, householdID id.HouseholdID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hh, exists := s.households[householdID]
	if !exists {
		return sentinel.ErrNotFound
	}
	delete(s.households, householdID)
	delete(s.byNumber, hh.Number)
	return nil
}

type memorySnapshot struct {
	households map[id.HouseholdID]Household
	byNumber   map[id.HouseholdNumber]id.HouseholdID
}

// Snapshot copies the store state for transactional rollback.
func (s *InMemoryStore) Snapshot() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := memorySnapshot{
		households: make(map[id.HouseholdID]Household, len(s.households)),
		byNumber:   make(map[id.HouseholdNumber]id.HouseholdID, len(s.byNumber)),
	}
	for k, v := range s.households {
		snap.households[k] = v
	}
	for k, v := range s.byNumber {
		snap.byNumber[k] = v
	}
	return snap
}

// Restore replaces the store state with a snapshot taken earlier.
func (s *InMemoryStore) Restore(snapshot any) {
	snap, ok := snapshot.(memorySnapshot)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.households = snap.households
	s.byNumber = snap.byNumber
}
