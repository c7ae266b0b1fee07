package event

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps events in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string]Event
}

func NewMemoryStore(seed ...Event) *MemoryStore {
	s := &MemoryStore{events: make(map[string]Event)}
	for _, e := range seed {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		s.events[e.ID] = e
	}
	return s
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) ListUpcoming(_ context.Context, now time.Time) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if !e.EndDate.Before(now) {
			out = append(out, cloneEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EndDate.Equal(out[j].EndDate) {
			return out[i].EndDate.Before(out[j].EndDate)
		}
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return nil, nil
	}
	out := cloneEvent(e)
	return &out, nil
}

func (s *MemoryStore) Save(_ context.Context, e Event) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.events[e.ID] = cloneEvent(e)
	return e, nil
}

func cloneEvent(e Event) Event {
	e.Airports = append([]Airport(nil), e.Airports...)
	return e
}
