package event

import (
	"context"
	"fmt"
	"time"

	"rideshare/internal/apperrors"
)

// Airport is an airport attendees can fly into for an event.
type Airport struct {
	Code string `json:"code"`
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}

// Event is a gathering attendees travel to.
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Description string    `json:"description,omitempty"`
	Airports    []Airport `json:"airports"`
}

// Store persists events.
type Store interface {
	// ListUpcoming returns events whose end date is not before now, soonest first.
	ListUpcoming(ctx context.Context, now time.Time) ([]Event, error)
	// Get returns nil, nil when the event does not exist.
	Get(ctx context.Context, id string) (*Event, error)
	Save(ctx context.Context, e Event) (Event, error)
}

// Seed saves every event whose id is not stored yet and reports how many were added.
// Stored events are left as they are.
func Seed(ctx context.Context, store Store, events ...Event) (int, error) {
	added := 0
	for _, e := range events {
		if e.ID != "" {
			existing, err := store.Get(ctx, e.ID)
			if err != nil {
				return added, fmt.Errorf("seed event %s: %w", e.ID, err)
			}
			if existing != nil {
				continue
			}
		}
		if _, err := store.Save(ctx, e); err != nil {
			return added, fmt.Errorf("seed event %s: %w", e.ID, err)
		}
		added++
	}
	return added, nil
}

// Catalog is the read side used by the API.
type Catalog struct {
	store Store
	now   func() time.Time
}

func NewCatalog(store Store) *Catalog {
	return &Catalog{store: store, now: time.Now}
}

func (c *Catalog) Upcoming(ctx context.Context) ([]Event, error) {
	events, err := c.store.ListUpcoming(ctx, c.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Get loads an event. A missing event is ErrNotFound.
func (c *Catalog) Get(ctx context.Context, id string) (Event, error) {
	if id == "" {
		return Event{}, apperrors.Validation("event id required")
	}
	e, err := c.store.Get(ctx, id)
	if err != nil {
		return Event{}, fmt.Errorf("get event: %w", err)
	}
	if e == nil {
		return Event{}, apperrors.NotFound("event not found")
	}
	return *e, nil
}

// HasAirport reports whether code is one of the event's airports.
func (e Event) HasAirport(code string) bool {
	for _, a := range e.Airports {
		if a.Code == code {
			return true
		}
	}
	return false
}
