package users

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps accounts in a map. It is the default store for local
// development and tests; state disappears with the process.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*User
	byEml map[string]string // lowercased email -> id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]*User),
		byEml: make(map[string]string),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *MemoryStore) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(u.Email)
	if _, exists := s.byEml[key]; exists {
		return ErrEmailTaken
	}
	cp := *u
	s.byID[u.ID] = &cp
	s.byEml[key] = u.ID
	return nil
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEml[normalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) Update(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[u.ID]
	if !ok {
		return ErrNotFound
	}

	newKey := normalizeEmail(u.Email)
	oldKey := normalizeEmail(current.Email)
	if newKey != oldKey {
		if _, exists := s.byEml[newKey]; exists {
			return ErrEmailTaken
		}
		delete(s.byEml, oldKey)
		s.byEml[newKey] = u.ID
	}

	cp := *u
	cp.UpdatedAt = time.Now().UTC()
	s.byID[u.ID] = &cp
	*u = cp
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byEml, normalizeEmail(u.Email))
	delete(s.byID, id)
	return nil
}
