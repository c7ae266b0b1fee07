package attendance

import (
	"fmt"
	"time"

	"rideshare/internal/apperrors"
)

// Direction selects the arrival or departure leg of a trip.
type Direction string

const (
	Arrival   Direction = "arrival"
	Departure Direction = "departure"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == Arrival || d == Departure
}

// ParseDirection validates a direction coming from user input.
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", apperrors.Validation("type must be %q or %q", Arrival, Departure)
	}
	return d, nil
}

// Leg is one fully specified trip leg. Airport and time are always present together.
type Leg struct {
	Airport string    `json:"airport"`
	Time    time.Time `json:"time"`
}

// Record is a user's attendance at one event. There is exactly one per (UserID, EventID).
// Arrival and Departure are nil when absent; they are always nil when Attending is false.
type Record struct {
	UserID       string    `json:"user_id"`
	EventID      string    `json:"event_id"`
	Attending    bool      `json:"attending"`
	Arrival      *Leg      `json:"arrival,omitempty"`
	Departure    *Leg      `json:"departure,omitempty"`
	UserName     *string   `json:"user_name,omitempty"`
	UserPhotoURL *string   `json:"user_photo_url,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Leg returns the leg for d, or nil.
func (r Record) Leg(d Direction) *Leg {
	switch d {
	case Arrival:
		return r.Arrival
	case Departure:
		return r.Departure
	}
	return nil
}

// Validate checks the record invariants.
func (r Record) Validate() error {
	if r.UserID == "" || r.EventID == "" {
		return fmt.Errorf("attendance: user and event required")
	}
	if !r.Attending && (r.Arrival != nil || r.Departure != nil) {
		return fmt.Errorf("attendance: travel details present on non-attending record")
	}
	for _, leg := range []*Leg{r.Arrival, r.Departure} {
		if leg != nil && (leg.Airport == "" || leg.Time.IsZero()) {
			return fmt.Errorf("attendance: partially specified leg")
		}
	}
	return nil
}

// Identity is the authenticated caller as seen by the attendance manager.
type Identity struct {
	UserID   string
	Name     *string
	Email    *string
	PhotoURL *string
}

// DisplayName is the name denormalized onto records: the display name, else the email.
func (i Identity) DisplayName() *string {
	if i.Name != nil && *i.Name != "" {
		return i.Name
	}
	if i.Email != nil && *i.Email != "" {
		return i.Email
	}
	return nil
}
