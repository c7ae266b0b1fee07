package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"rideshare/internal/attendance"
	"rideshare/internal/event"
	"rideshare/internal/matching"
	"rideshare/internal/metrics"
	"rideshare/internal/profile"
	"rideshare/internal/queue"
	"rideshare/internal/riderequest"
)

// Dependencies of the Processor, satisfied by the domain services.
type (
	RequestReader interface {
		Get(ctx context.Context, id string) (riderequest.Request, error)
	}
	ProfileReader interface {
		Get(ctx context.Context, userID string) (*profile.Profile, error)
	}
	AttendanceReader interface {
		Get(ctx context.Context, userID, eventID string) (*attendance.Record, error)
	}
	EventReader interface {
		Get(ctx context.Context, id string) (event.Event, error)
	}
	TripMatcher interface {
		FindForRecord(ctx context.Context, rec attendance.Record) matching.TripResult
	}
)

// ErrUnknownMessage is returned for message types the processor does not handle.
var ErrUnknownMessage = errors.New("notify: unknown message type")

// Processor turns queue messages into notices.
type Processor struct {
	Requests   RequestReader
	Profiles   ProfileReader
	Attendance AttendanceReader
	Events     EventReader
	Matcher    TripMatcher
	Notifier   Notifier
	Translator *Translator
	Locale     string
	Location   *time.Location
	Log        zerolog.Logger
}

// Handle processes one message.
func (p *Processor) Handle(ctx context.Context, msg queue.Message) error {
	var err error
	switch msg.Type {
	case queue.TypeRideRequest:
		err = p.rideRequest(ctx, msg)
	case queue.TypeAttendanceChanged:
		err = p.attendanceChanged(ctx, msg)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
	metrics.QueueMessages.WithLabelValues(msg.Type, metrics.Outcome(err)).Inc()
	return err
}

func (p *Processor) rideRequest(ctx context.Context, msg queue.Message) error {
	var id string
	if err := msg.Decode(&id); err != nil {
		return err
	}
	req, err := p.Requests.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load ride request %s: %w", id, err)
	}
	sender, err := p.Profiles.Get(ctx, req.SenderID)
	if err != nil {
		return fmt.Errorf("load sender profile: %w", err)
	}

	text := p.Translator.T(p.Locale, "ride_request_received", map[string]any{
		"Sender":    p.displayName(sender),
		"Direction": p.Translator.T(p.Locale, "direction_"+string(req.Type), nil),
		"Event":     p.eventName(ctx, req.EventID),
	})
	return p.Notifier.Notify(ctx, Notice{
		RecipientID: req.RecipientID,
		Kind:        KindRideRequest,
		EventID:     req.EventID,
		RequestID:   req.ID,
		Text:        text,
	})
}

// attendanceChanged notifies every attendee whose trip now overlaps the changed record.
func (p *Processor) attendanceChanged(ctx context.Context, msg queue.Message) error {
	var body queue.AttendanceChanged
	if err := msg.Decode(&body); err != nil {
		return err
	}
	rec, err := p.Attendance.Get(ctx, body.UserID, body.EventID)
	if err != nil {
		return fmt.Errorf("load attendance: %w", err)
	}
	if rec == nil || !rec.Attending {
		return nil
	}

	trip := p.Matcher.FindForRecord(ctx, *rec)
	eventName := p.eventName(ctx, rec.EventID)
	name := p.Translator.T(p.Locale, "someone", nil)
	if rec.UserName != nil && *rec.UserName != "" {
		name = *rec.UserName
	}

	var errs []error
	for _, dir := range []struct {
		d   attendance.Direction
		res matching.DirectionResult
	}{
		{attendance.Arrival, trip.Arrival},
		{attendance.Departure, trip.Departure},
	} {
		if dir.res.Err != nil {
			errs = append(errs, dir.res.Err)
			continue
		}
		leg := rec.Leg(dir.d)
		for _, other := range dir.res.Records {
			text := p.Translator.T(p.Locale, "match_"+string(dir.d), map[string]any{
				"Name":    name,
				"Airport": leg.Airport,
				"Time":    p.formatTime(leg.Time),
				"Event":   eventName,
			})
			if err := p.Notifier.Notify(ctx, Notice{
				RecipientID: other.UserID,
				Kind:        KindMatch,
				EventID:     rec.EventID,
				Text:        text,
			}); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (p *Processor) displayName(pr *profile.Profile) string {
	if pr != nil {
		if pr.DisplayName != nil && *pr.DisplayName != "" {
			return *pr.DisplayName
		}
		if pr.Email != nil && *pr.Email != "" {
			return *pr.Email
		}
	}
	return p.Translator.T(p.Locale, "someone", nil)
}

func (p *Processor) eventName(ctx context.Context, id string) string {
	if p.Events == nil {
		return id
	}
	e, err := p.Events.Get(ctx, id)
	if err != nil {
		p.Log.Debug().Err(err).Str("event_id", id).Msg("event lookup failed")
		return id
	}
	return e.Name
}

func (p *Processor) formatTime(t time.Time) string {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("Mon Jan 2 15:04")
}
