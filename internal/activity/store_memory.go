package activity

import (
	"context"
	"sync"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	byLead map[string][]Activity
	total  int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byLead: make(map[string][]Activity)}
}

func (s *InMemoryStore) Insert(_ context.Context, a Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byLead[a.LeadID] = append(s.byLead[a.LeadID], a)
	s.total++
	return nil
}

// ListByLead returns activities newest first.
func (s *InMemoryStore) ListByLead(_ context.Context, leadID string) ([]Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.byLead[leadID]
	out := make([]Activity, len(stored))
	for i, a := range stored {
		out[len(stored)-1-i] = a
	}
	return out, nil
}

func (s *InMemoryStore) CountByType(_ context.Context) (map[Type]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[Type]int)
	for _, list := range s.byLead {
		for _, a := range list {
			counts[a.Type]++
		}
	}
	return counts, nil
}
