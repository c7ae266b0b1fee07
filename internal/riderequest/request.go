package riderequest

import (
	"context"
	"time"

	"rideshare/internal/attendance"
)

// Status of a ride request. Only Pending is ever written here; the recipient's later
// interaction owns the transitions.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

// Request is a proposal from one attendee to another to share a ride for one leg.
type Request struct {
	ID                  string               `json:"id"`
	SenderID            string               `json:"sender_id"`
	RecipientID         string               `json:"recipient_id"`
	EventID             string               `json:"event_id"`
	Type                attendance.Direction `json:"type"`
	SenderArrivalTime   *time.Time           `json:"sender_arrival_time"`
	SenderDepartureTime *time.Time           `json:"sender_departure_time"`
	Status              Status               `json:"status"`
	CreatedAt           time.Time            `json:"created_at"`
	Read                bool                 `json:"read"`
}

// Page bounds list queries.
type Page struct {
	Limit  int
	Offset int
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func (p Page) normalize() Page {
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Store persists ride requests. Insert never deduplicates.
type Store interface {
	Insert(ctx context.Context, r Request) error
	Get(ctx context.Context, id string) (*Request, error)
	ListByRecipient(ctx context.Context, recipientID string, page Page) ([]Request, error)
	ListBySender(ctx context.Context, senderID string, page Page) ([]Request, error)
}
