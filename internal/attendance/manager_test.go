package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"rideshare/internal/apperrors"
)

type recordingListener struct {
	got []Record
	err error
}

func (l *recordingListener) AttendanceChanged(_ context.Context, rec Record) error {
	l.got = append(l.got, rec)
	return l.err
}

func strPtr(s string) *string { return &s }

func newTestManager(listeners ...Listener) (*Manager, *MemoryStore) {
	store := NewMemoryStore()
	m := NewManager(store, zerolog.Nop(), listeners...)
	m.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	return m, store
}

var (
	alice = Identity{UserID: "alice", Name: strPtr("Alice"), PhotoURL: strPtr("https://img/alice.png")}
	sfo   = Leg{Airport: "SFO", Time: time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)}
	sjc   = Leg{Airport: "SJC", Time: time.Date(2025, 3, 12, 18, 30, 0, 0, time.UTC)}
)

func TestSetAttendanceCreatesRecord(t *testing.T) {
	m, _ := newTestManager()
	rec, err := m.SetAttendance(context.Background(), alice, "ev1", true, nil)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if !rec.Attending || rec.Arrival != nil || rec.Departure != nil {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.UserName == nil || *rec.UserName != "Alice" {
		t.Fatalf("user name not denormalized: %+v", rec.UserName)
	}

	got, err := m.Get(context.Background(), "alice", "ev1")
	if err != nil || got == nil {
		t.Fatalf("get: %v %v", got, err)
	}
	if !got.UpdatedAt.Equal(m.now()) {
		t.Fatalf("updated_at = %s", got.UpdatedAt)
	}
}

func TestGetAbsentRecord(t *testing.T) {
	m, _ := newTestManager()
	got, err := m.Get(context.Background(), "nobody", "ev1")
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil; got %v, %v", got, err)
	}
}

func TestTravelDetailsImplyAttending(t *testing.T) {
	m, _ := newTestManager()
	rec, err := m.SetAttendance(context.Background(), alice, "ev1", false, &TravelDetails{Arrival: SetTo(sfo)})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if !rec.Attending {
		t.Fatal("setting a leg must mark the user as attending")
	}
	if rec.Arrival == nil || *rec.Arrival != sfo {
		t.Fatalf("arrival = %+v", rec.Arrival)
	}
}

func TestKeepClearSet(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()
	if _, err := m.SetAttendance(ctx, alice, "ev1", true, &TravelDetails{Arrival: SetTo(sfo), Departure: SetTo(sjc)}); err != nil {
		t.Fatal(err)
	}

	rec, err := m.SetAttendance(ctx, alice, "ev1", true, &TravelDetails{Arrival: Keep(), Departure: Clear()})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Arrival == nil || *rec.Arrival != sfo {
		t.Fatalf("keep lost the arrival leg: %+v", rec.Arrival)
	}
	if rec.Departure != nil {
		t.Fatalf("clear left the departure leg: %+v", rec.Departure)
	}
}

func TestRevokeDeletesTravelDetails(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager()
	if _, err := m.SetAttendance(ctx, alice, "ev1", true, &TravelDetails{Arrival: SetTo(sfo), Departure: SetTo(sjc)}); err != nil {
		t.Fatal(err)
	}
	rec, err := m.SetAttendance(ctx, alice, "ev1", false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Attending || rec.Arrival != nil || rec.Departure != nil {
		t.Fatalf("revoke must clear legs: %+v", rec)
	}
	stored, _ := store.Get(ctx, "alice", "ev1")
	if stored.Arrival != nil || stored.Departure != nil {
		t.Fatalf("stored record still has legs: %+v", stored)
	}
}

func TestSetAttendanceRejectsPartialLeg(t *testing.T) {
	m, store := newTestManager()
	_, err := m.SetAttendance(context.Background(), alice, "ev1", true, &TravelDetails{Arrival: SetTo(Leg{Airport: "SFO"})})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if rec, _ := store.Get(context.Background(), "alice", "ev1"); rec != nil {
		t.Fatal("nothing should be written on validation failure")
	}
}

func TestListenerNotifiedAndFailureIgnored(t *testing.T) {
	l := &recordingListener{err: errors.New("queue down")}
	m, _ := newTestManager(l)
	if _, err := m.SetAttendance(context.Background(), alice, "ev1", true, nil); err != nil {
		t.Fatalf("listener failure must not fail the save: %v", err)
	}
	if len(l.got) != 1 || l.got[0].UserID != "alice" {
		t.Fatalf("listener calls = %+v", l.got)
	}
}

func TestDisplayNameFallsBackToEmail(t *testing.T) {
	id := Identity{UserID: "u", Email: strPtr("u@example.com")}
	if got := id.DisplayName(); got == nil || *got != "u@example.com" {
		t.Fatalf("display name = %v", got)
	}
	if (Identity{UserID: "u"}).DisplayName() != nil {
		t.Fatal("expected nil display name")
	}
}
