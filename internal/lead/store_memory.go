package lead

import (
	"context"
	"sort"
	"sync"

	"leadflow/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	leads map[string]Lead
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{leads: make(map[string]Lead)}
}

func (s *InMemoryStore) Insert(_ context.Context, l Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.leads[l.ID]; exists {
		return sentinel.ErrConflict
	}
	s.leads[l.ID] = l
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leads[id]
	if !ok {
		return Lead{}, sentinel.ErrNotFound
	}
	return l, nil
}

// List returns non-tombstoned leads, most recently created first.
func (s *InMemoryStore) List(_ context.Context, filter ListFilter) ([]Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Lead
	for _, l := range s.leads {
		if l.Deleted {
			continue
		}
		if filter.OwnerID != "" && l.OwnerID != filter.OwnerID {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) UpdatePartial(_ context.Context, id string, fields Fields) (Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok || l.Deleted {
		return Lead{}, sentinel.ErrNotFound
	}
	l = fields.apply(l)
	s.leads[id] = l
	return l, nil
}

func (s *InMemoryStore) Tombstone(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok || l.Deleted {
		return sentinel.ErrNotFound
	}
	l.Deleted = true
	s.leads[id] = l
	return nil
}
