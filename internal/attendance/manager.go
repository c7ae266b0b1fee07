package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"rideshare/internal/apperrors"
)

// TravelerQuery selects attending records whose leg in Direction is at Airport within [From, To].
// ExcludeUserID is a hint; stores that cannot express inequality may ignore it.
type TravelerQuery struct {
	EventID       string
	Direction     Direction
	Airport       string
	From          time.Time
	To            time.Time
	ExcludeUserID string
}

// Store persists attendance records.
type Store interface {
	// Get returns nil, nil when the user has no record for the event.
	Get(ctx context.Context, userID, eventID string) (*Record, error)
	Upsert(ctx context.Context, rec Record) error
	FindTravelers(ctx context.Context, q TravelerQuery) ([]Record, error)
}

// Listener is notified after a record has been saved.
type Listener interface {
	AttendanceChanged(ctx context.Context, rec Record) error
}

// Manager owns create/update/clear semantics of attendance records.
type Manager struct {
	store     Store
	listeners []Listener
	log       zerolog.Logger
	now       func() time.Time
}

// NewManager creates a manager backed by store.
func NewManager(store Store, log zerolog.Logger, listeners ...Listener) *Manager {
	return &Manager{
		store:     store,
		listeners: listeners,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the caller's record for the event, or nil when there is none.
func (m *Manager) Get(ctx context.Context, userID, eventID string) (*Record, error) {
	if userID == "" || eventID == "" {
		return nil, apperrors.Validation("user and event required")
	}
	rec, err := m.store.Get(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	return rec, nil
}

// SetAttendance creates or updates the caller's record. Setting any leg marks the user as
// attending; not attending removes both legs.
func (m *Manager) SetAttendance(ctx context.Context, id Identity, eventID string, attending bool, details *TravelDetails) (Record, error) {
	if id.UserID == "" || eventID == "" {
		return Record{}, apperrors.Validation("user and event required")
	}
	var upd TravelDetails
	if details != nil {
		upd = *details
	}
	if err := upd.Arrival.validate("arrival"); err != nil {
		return Record{}, err
	}
	if err := upd.Departure.validate("departure"); err != nil {
		return Record{}, err
	}

	current, err := m.store.Get(ctx, id.UserID, eventID)
	if err != nil {
		return Record{}, fmt.Errorf("load attendance: %w", err)
	}

	rec := Record{UserID: id.UserID, EventID: eventID}
	if current != nil {
		rec = *current
	}
	rec.Attending = attending || upd.setsAny()
	if rec.Attending {
		rec.Arrival = upd.Arrival.apply(rec.Arrival)
		rec.Departure = upd.Departure.apply(rec.Departure)
	} else {
		rec.Arrival, rec.Departure = nil, nil
	}
	rec.UserName = id.DisplayName()
	rec.UserPhotoURL = id.PhotoURL
	rec.UpdatedAt = m.now()

	if err := rec.Validate(); err != nil {
		return Record{}, apperrors.Wrap(apperrors.ErrValidation, err, "invalid attendance record")
	}
	if err := m.store.Upsert(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("save attendance: %w", err)
	}

	for _, l := range m.listeners {
		if err := l.AttendanceChanged(ctx, rec); err != nil {
			m.log.Warn().Err(err).Str("user_id", rec.UserID).Str("event_id", rec.EventID).Msg("attendance listener failed")
		}
	}
	return rec, nil
}
