package user

import (
	"context"
	"sort"
	"strings"
	"sync"

	"leadflow/internal/identity"
	"leadflow/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{users: make(map[string]User)}
}

func (s *InMemoryStore) Insert(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return sentinel.ErrConflict
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, sentinel.ErrNotFound
	}
	return u, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return User{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sortByCreated(out)
	return out, nil
}

func (s *InMemoryStore) ListByRoles(_ context.Context, roles ...identity.Role) ([]User, error) {
	wanted := make(map[identity.Role]struct{}, len(roles))
	for _, r := range roles {
		wanted[r] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []User
	for _, u := range s.users {
		if _, ok := wanted[u.Role]; ok {
			out = append(out, u)
		}
	}
	sortByCreated(out)
	return out, nil
}

func sortByCreated(users []User) {
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
}
