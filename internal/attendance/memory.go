package attendance

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps records in process memory. It backs STORE_BACKEND=memory and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[[2]string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[[2]string]Record)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Get(_ context.Context, userID, eventID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[[2]string{userID, eventID}]
	if !ok {
		return nil, nil
	}
	return cloneRecord(rec), nil
}

func (s *MemoryStore) Upsert(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[[2]string{rec.UserID, rec.EventID}] = *cloneRecord(rec)
	return nil
}

func (s *MemoryStore) FindTravelers(_ context.Context, q TravelerQuery) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, rec := range s.records {
		if rec.EventID != q.EventID || !rec.Attending || rec.UserID == q.ExcludeUserID {
			continue
		}
		leg := rec.Leg(q.Direction)
		if leg == nil || leg.Airport != q.Airport || leg.Time.Before(q.From) || leg.Time.After(q.To) {
			continue
		}
		out = append(out, *cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func cloneRecord(rec Record) *Record {
	out := rec
	if rec.Arrival != nil {
		leg := *rec.Arrival
		out.Arrival = &leg
	}
	if rec.Departure != nil {
		leg := *rec.Departure
		out.Departure = &leg
	}
	return &out
}
