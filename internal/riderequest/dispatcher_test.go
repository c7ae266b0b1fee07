package riderequest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"rideshare/internal/apperrors"
	"rideshare/internal/attendance"
	"rideshare/internal/queue"
)

type failingStore struct{ MemoryStore }

func (*failingStore) Insert(context.Context, Request) error { return errors.New("write rejected") }

type recordingPublisher struct {
	msgs []queue.Message
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, msg queue.Message) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func newTestDispatcher(store Store, pub queue.Publisher) *Dispatcher {
	d := NewDispatcher(store, pub, zerolog.Nop())
	n := 0
	d.newID = func() string {
		n++
		return fmt.Sprintf("req-%d", n)
	}
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	d.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return d
}

func senderRecord() *attendance.Record {
	return &attendance.Record{
		UserID: "alice", EventID: "conf", Attending: true,
		Arrival: &attendance.Leg{Airport: "SFO", Time: time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)},
	}
}

func TestSendPersistsPendingUnread(t *testing.T) {
	store := NewMemoryStore()
	pub := &recordingPublisher{}
	d := newTestDispatcher(store, pub)

	req, err := d.Send(context.Background(), SendInput{
		SenderID: "alice", RecipientID: "bob", EventID: "conf",
		Type: attendance.Arrival, SenderAttendance: senderRecord(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if req.Status != StatusPending || req.Read {
		t.Fatalf("status = %s read = %v, want pending/false", req.Status, req.Read)
	}
	if req.SenderArrivalTime == nil || !req.SenderArrivalTime.Equal(senderRecord().Arrival.Time) {
		t.Fatalf("arrival time = %v", req.SenderArrivalTime)
	}
	if req.SenderDepartureTime != nil {
		t.Fatalf("departure time should be nil, got %v", req.SenderDepartureTime)
	}

	stored, err := store.Get(context.Background(), req.ID)
	if err != nil || stored == nil {
		t.Fatalf("stored = %v, err = %v", stored, err)
	}
	if len(pub.msgs) != 1 || pub.msgs[0].Type != queue.TypeRideRequest {
		t.Fatalf("published = %+v", pub.msgs)
	}
	var id string
	if err := pub.msgs[0].Decode(&id); err != nil || id != req.ID {
		t.Fatalf("published id = %q, err = %v", id, err)
	}
}

func TestSendIsNotIdempotent(t *testing.T) {
	store := NewMemoryStore()
	d := newTestDispatcher(store, nil)
	in := SendInput{SenderID: "alice", RecipientID: "bob", EventID: "conf", Type: attendance.Arrival}

	first, err := d.Send(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.Send(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == second.ID {
		t.Fatal("expected distinct request ids")
	}
	if store.Len() != 2 {
		t.Fatalf("stored %d requests, want 2", store.Len())
	}
}

func TestSendWithoutSenderTimes(t *testing.T) {
	d := newTestDispatcher(NewMemoryStore(), nil)
	req, err := d.Send(context.Background(), SendInput{
		SenderID: "alice", RecipientID: "bob", EventID: "conf", Type: attendance.Departure,
		SenderAttendance: &attendance.Record{UserID: "alice", EventID: "conf", Attending: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if req.SenderArrivalTime != nil || req.SenderDepartureTime != nil {
		t.Fatalf("expected nil times, got %v / %v", req.SenderArrivalTime, req.SenderDepartureTime)
	}
}

func TestSendValidation(t *testing.T) {
	d := newTestDispatcher(NewMemoryStore(), nil)
	cases := map[string]SendInput{
		"self":         {SenderID: "alice", RecipientID: "alice", EventID: "conf", Type: attendance.Arrival},
		"no recipient": {SenderID: "alice", EventID: "conf", Type: attendance.Arrival},
		"no event":     {SenderID: "alice", RecipientID: "bob", Type: attendance.Arrival},
		"unknown type": {SenderID: "alice", RecipientID: "bob", EventID: "conf", Type: "layover"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := d.Send(context.Background(), in); !errors.Is(err, apperrors.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSendPersistenceFailure(t *testing.T) {
	pub := &recordingPublisher{}
	d := newTestDispatcher(&failingStore{}, pub)
	_, err := d.Send(context.Background(), SendInput{
		SenderID: "alice", RecipientID: "bob", EventID: "conf", Type: attendance.Arrival,
	})
	if !errors.Is(err, apperrors.ErrRequestSendFailed) {
		t.Fatalf("expected ErrRequestSendFailed, got %v", err)
	}
	if len(pub.msgs) != 0 {
		t.Fatal("nothing should be published when the write fails")
	}
}

func TestSendPublishFailureDoesNotFail(t *testing.T) {
	store := NewMemoryStore()
	d := newTestDispatcher(store, &recordingPublisher{err: errors.New("redis down")})
	if _, err := d.Send(context.Background(), SendInput{
		SenderID: "alice", RecipientID: "bob", EventID: "conf", Type: attendance.Arrival,
	}); err != nil {
		t.Fatalf("publish failure leaked: %v", err)
	}
	if store.Len() != 1 {
		t.Fatal("request should be persisted")
	}
}

func TestListsNewestFirst(t *testing.T) {
	d := newTestDispatcher(NewMemoryStore(), nil)
	ctx := context.Background()
	for _, to := range []string{"bob", "carol", "bob"} {
		if _, err := d.Send(ctx, SendInput{SenderID: "alice", RecipientID: to, EventID: "conf", Type: attendance.Arrival}); err != nil {
			t.Fatal(err)
		}
	}

	inbox, err := d.ListForRecipient(ctx, "bob", Page{})
	if err != nil {
		t.Fatal(err)
	}
	if len(inbox) != 2 || inbox[0].ID != "req-3" || inbox[1].ID != "req-1" {
		t.Fatalf("inbox = %+v", inbox)
	}

	sent, err := d.ListSent(ctx, "alice", Page{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(sent) != 2 || sent[0].ID != "req-2" {
		t.Fatalf("sent = %+v", sent)
	}

	if _, err := d.Get(ctx, "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
