package profile

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps profiles in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]Profile)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Upsert(_ context.Context, p Profile) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if p.LastLogin.IsZero() {
		p.LastLogin = now
	}
	stored, ok := s.profiles[p.UserID]
	if !ok {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		s.profiles[p.UserID] = p
		return p, nil
	}
	merged := merge(stored, p)
	s.profiles[p.UserID] = merged
	return merged, nil
}

func (s *MemoryStore) Get(_ context.Context, userID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *MemoryStore) GetByIDs(_ context.Context, ids []string) ([]Profile, error) {
	if len(ids) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) SetPhotoURL(_ context.Context, userID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		p = Profile{UserID: userID, CreatedAt: time.Now().UTC()}
	}
	p.PhotoURL = &url
	s.profiles[userID] = p
	return nil
}
