package document

import (
	"context"
	"sync"

	id "warga/pkg/domain"
	"warga/pkg/platform/sentinel"
)

// InMemoryStore keeps requests in a map, stored by value. Payload variants are
// value types, so the struct copy is deep enough for isolation.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[id.DocumentRequestID]Request
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{requests: make(map[id.DocumentRequestID]Request)}
}

func (s *InMemoryStore) Create(_ context.Context, req *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[req.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.requests[req.ID] = *req
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, requestID id.DocumentRequestID) (*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, exists := s.requests[requestID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return &req, nil
}

// FindByIDForUpdate is plain FindByID here; the memory transaction runner
// serializes whole transactions, so no row-level lock is needed.
func (s *InMemoryStore) FindByIDForUpdate(ctx context.Context, requestID id.DocumentRequestID) (*Request, error) {
	return s.FindByID(ctx, requestID)
}

func (s *InMemoryStore) Update(_ context.Context, req *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[req.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.requests[req.ID] = *req
	return nil
}

// Snapshot copies the store state for transactional rollback.
func (s *InMemoryStore) Snapshot() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[id.DocumentRequestID]Request, len(s.requests))
	for k, v := range s.requests {
		snap[k] = v
	}
	return snap
}

// Restore replaces the store state with a snapshot taken earlier.
func (s *InMemoryStore) Restore(snapshot any) {
	snap, ok := snapshot.(map[id.DocumentRequestID]Request)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = snap
}
