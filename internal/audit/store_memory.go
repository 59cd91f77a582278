package audit

import (
	"context"
	"sync"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string][]Entry)}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.LeadID] = append(s.entries[entry.LeadID], entry)
	return nil
}

// ListByLead returns entries newest first.
func (s *InMemoryStore) ListByLead(_ context.Context, leadID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.entries[leadID]
	out := make([]Entry, len(stored))
	for i, e := range stored {
		out[len(stored)-1-i] = e
	}
	return out, nil
}
