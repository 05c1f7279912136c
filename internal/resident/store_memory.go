package resident

import (
	"context"
	"sync"

	id "warga/pkg/domain"
	"warga/pkg/platform/sentinel"
)

// InMemoryStore keeps residents in maps. Records are stored by value so
// callers can never mutate store state through a returned pointer.
type InMemoryStore struct {
	mu         sync.RWMutex
	residents  map[id.ResidentID]Resident
	byNational map[id.NationalID]id.ResidentID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		residents:  make(map[id.ResidentID]Resident),
		byNational: make(map[id.NationalID]id.ResidentID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, res *Resident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byNational[res.NationalID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.residents[res.ID] = *res
	s.byNational[res.NationalID] = res.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, residentID id.ResidentID) (*Resident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, exists := s.residents[residentID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return &res, nil
}

// FindByIDForUpdate is plain FindByID here; the memory transaction runner
// serializes whole transactions, so no row-level lock is needed.
func (s *InMemoryStore) FindByIDForUpdate(ctx context.Context, residentID id.ResidentID) (*Resident, error) {
	return s.FindByID(ctx, residentID)
}

func (s *InMemoryStore) FindByNationalID(_ context.Context, nationalID id.NationalID) (*Resident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	residentID, exists := s.byNational[nationalID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	res := s.residents[residentID]
	return &res, nil
}

func (s *InMemoryStore) Update(_ context.Context, res *Resident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.residents[res.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.residents[res.ID] = *res
	return nil
}

func (s *InMemoryStore) CountActiveMembers(_ context.Context, householdID id.HouseholdID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, res := range s.residents {
		if res.Status == StatusActive && res.HouseholdID != nil && *res.HouseholdID == householdID {
			count++
		}
	}
	return count, nil
}

type memorySnapshot struct {
	residents  map[id.ResidentID]Resident
	byNational map[id.NationalID]id.ResidentID
}

// Snapshot copies the store state so the memory transaction runner can roll
// back after a failed multi-store operation.
func (s *InMemoryStore) Snapshot() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := memorySnapshot{
		residents:  make(map[id.ResidentID]Resident, len(s.residents)),
		byNational: make(map[id.NationalID]id.ResidentID, len(s.byNational)),
	}
	for k, v := range s.residents {
		snap.residents[k] = v
	}
	for k, v := range s.byNational {
		snap.byNational[k] = v
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
	s.residents = snap.residents
	s.byNational = snap.byNational
}
