package riderequest

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps requests in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	requests []Request
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Insert(_ context.Context, r Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, cloneRequest(r))
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.requests {
		if r.ID == id {
			out := cloneRequest(r)
			return &out, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListByRecipient(_ context.Context, recipientID string, page Page) ([]Request, error) {
	return s.list(func(r Request) bool { return r.RecipientID == recipientID }, page), nil
}

func (s *MemoryStore) ListBySender(_ context.Context, senderID string, page Page) ([]Request, error) {
	return s.list(func(r Request) bool { return r.SenderID == senderID }, page), nil
}

// Len reports how many requests are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.requests)
}

func (s *MemoryStore) list(keep func(Request) bool, page Page) []Request {
	s.mu.RLock()
	var out []Request
	for _, r := range s.requests {
		if keep(r) {
			out = append(out, cloneRequest(r))
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	page = page.normalize()
	if page.Offset >= len(out) {
		return nil
	}
	end := min(page.Offset+page.Limit, len(out))
	return out[page.Offset:end]
}

func cloneRequest(r Request) Request {
	out := r
	if r.SenderArrivalTime != nil {
		t := *r.SenderArrivalTime
		out.SenderArrivalTime = &t
	}
	if r.SenderDepartureTime != nil {
		t := *r.SenderDepartureTime
		out.SenderDepartureTime = &t
	}
	return out
}
