package riderequest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"rideshare/internal/apperrors"
	"rideshare/internal/attendance"
	"rideshare/internal/metrics"
	"rideshare/internal/queue"
)

// SendInput describes a request the sender wants to make.
type SendInput struct {
	SenderID    string
	RecipientID string
	EventID     string
	Type        attendance.Direction
	// SenderAttendance supplies the proposed times. It may be nil or lack legs.
	SenderAttendance *attendance.Record
}

// Dispatcher creates ride requests and hands them to the delivery queue.
type Dispatcher struct {
	store     Store
	publisher queue.Publisher
	log       zerolog.Logger
	now       func() time.Time
	newID     func() string
}

// NewDispatcher creates a dispatcher. publisher may be nil.
func NewDispatcher(store Store, publisher queue.Publisher, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		store:     store,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Send persists exactly one new pending, unread request. Repeated calls create repeated records.
func (d *Dispatcher) Send(ctx context.Context, in SendInput) (Request, error) {
	if in.SenderID == "" || in.RecipientID == "" || in.EventID == "" {
		return Request{}, apperrors.Validation("sender, recipient and event are required")
	}
	if in.SenderID == in.RecipientID {
		return Request{}, apperrors.Validation("cannot send a ride request to yourself")
	}
	if !in.Type.Valid() {
		return Request{}, apperrors.Validation("request type must be arrival or departure")
	}

	req := Request{
		ID:          d.newID(),
		SenderID:    in.SenderID,
		RecipientID: in.RecipientID,
		EventID:     in.EventID,
		Type:        in.Type,
		Status:      StatusPending,
		CreatedAt:   d.now(),
		Read:        false,
	}
	if rec := in.SenderAttendance; rec != nil {
		req.SenderArrivalTime = legTime(rec.Arrival)
		req.SenderDepartureTime = legTime(rec.Departure)
	}

	err := d.store.Insert(ctx, req)
	metrics.RideRequests.WithLabelValues(string(req.Type), metrics.Outcome(err)).Inc()
	if err != nil {
		d.log.Error().Err(err).
			Str("sender_id", req.SenderID).
			Str("recipient_id", req.RecipientID).
			Str("event_id", req.EventID).
			Msg("persist ride request failed")
		return Request{}, apperrors.Wrap(apperrors.ErrRequestSendFailed, err, "failed to send ride request")
	}

	if d.publisher != nil {
		if err := d.publisher.Publish(ctx, queue.RideRequestMessage(req.ID)); err != nil {
			d.log.Warn().Err(err).Str("request_id", req.ID).Msg("enqueue ride request notification failed")
		}
	}
	d.log.Info().Str("request_id", req.ID).Str("type", string(req.Type)).Msg("ride request sent")
	return req, nil
}

// ListForRecipient returns the recipient's inbox, newest first.
func (d *Dispatcher) ListForRecipient(ctx context.Context, recipientID string, page Page) ([]Request, error) {
	if recipientID == "" {
		return nil, apperrors.Validation("recipient required")
	}
	return d.store.ListByRecipient(ctx, recipientID, page.normalize())
}

// ListSent returns requests the sender has made, newest first.
func (d *Dispatcher) ListSent(ctx context.Context, senderID string, page Page) ([]Request, error) {
	if senderID == "" {
		return nil, apperrors.Validation("sender required")
	}
	return d.store.ListBySender(ctx, senderID, page.normalize())
}

// Get loads a single request. A missing request is ErrNotFound.
func (d *Dispatcher) Get(ctx context.Context, id string) (Request, error) {
	req, err := d.store.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req == nil {
		return Request{}, apperrors.NotFound("ride request not found")
	}
	return *req, nil
}

func legTime(leg *attendance.Leg) *time.Time {
	if leg == nil || leg.Time.IsZero() {
		return nil
	}
	t := leg.Time
	return &t
}
