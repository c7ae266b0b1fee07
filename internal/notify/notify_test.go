package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"rideshare/internal/attendance"
	"rideshare/internal/event"
	"rideshare/internal/matching"
	"rideshare/internal/profile"
	"rideshare/internal/queue"
	"rideshare/internal/riderequest"
)

type recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recorder) Notify(_ context.Context, n Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
	return nil
}

func TestTranslatorFallbacks(t *testing.T) {
	tr := NewTranslator("en", zerolog.Nop())
	if got := tr.T("fr", "direction_arrival", nil); got != "arrivée" {
		t.Fatalf("fr = %q", got)
	}
	if got := tr.T("de", "direction_departure", nil); got != "departure" {
		t.Fatalf("unknown locale should fall back to default, got %q", got)
	}
	if got := tr.T("en", "no_such_key", nil); got != "no_such_key" {
		t.Fatalf("missing key = %q", got)
	}
	if got := NewTranslator("???", zerolog.Nop()).T("", "someone", nil); got != "Another attendee" {
		t.Fatalf("bad default locale = %q", got)
	}
}

type fixture struct {
	proc       *Processor
	notices    *recorder
	attendance *attendance.MemoryStore
	dispatcher *riderequest.Dispatcher
}

func newFixture(t *testing.T, locale string) fixture {
	t.Helper()
	ctx := context.Background()
	att := attendance.NewMemoryStore()
	profiles := profile.NewMemoryStore()
	events := event.NewMemoryStore(event.Event{ID: "conf", Name: "GopherCon"})
	dispatcher := riderequest.NewDispatcher(riderequest.NewMemoryStore(), nil, zerolog.Nop())

	name := "Ada"
	if _, err := profiles.Upsert(ctx, profile.Profile{UserID: "ada", DisplayName: &name}); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	return fixture{
		proc: &Processor{
			Requests:   dispatcher,
			Profiles:   profiles,
			Attendance: att,
			Events:     event.NewCatalog(events),
			Matcher:    matching.NewMatcher(att, zerolog.Nop()),
			Notifier:   rec,
			Translator: NewTranslator("en", zerolog.Nop()),
			Locale:     locale,
			Location:   time.UTC,
			Log:        zerolog.Nop(),
		},
		notices:    rec,
		attendance: att,
		dispatcher: dispatcher,
	}
}

func TestProcessorRideRequest(t *testing.T) {
	f := newFixture(t, "fr")
	req, err := f.dispatcher.Send(context.Background(), riderequest.SendInput{
		SenderID: "ada", RecipientID: "bob", EventID: "conf", Type: attendance.Departure,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := f.proc.Handle(context.Background(), queue.RideRequestMessage(req.ID)); err != nil {
		t.Fatal(err)
	}
	if len(f.notices.notices) != 1 {
		t.Fatalf("notices = %+v", f.notices.notices)
	}
	n := f.notices.notices[0]
	if n.RecipientID != "bob" || n.Kind != KindRideRequest || n.RequestID != req.ID {
		t.Fatalf("notice = %+v", n)
	}
	want := "Ada propose de partager un trajet pour votre départ à GopherCon."
	if n.Text != want {
		t.Fatalf("text = %q, want %q", n.Text, want)
	}
}

func TestProcessorAttendanceChangedNotifiesMatches(t *testing.T) {
	f := newFixture(t, "en")
	ctx := context.Background()
	land := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	name := "Ada"
	for _, rec := range []attendance.Record{
		{UserID: "ada", EventID: "conf", Attending: true, UserName: &name,
			Arrival: &attendance.Leg{Airport: "SFO", Time: land}},
		{UserID: "bob", EventID: "conf", Attending: true,
			Arrival: &attendance.Leg{Airport: "SFO", Time: land.Add(30 * time.Minute)}},
		{UserID: "cat", EventID: "conf", Attending: true,
			Arrival: &attendance.Leg{Airport: "SFO", Time: land.Add(31 * time.Minute)}},
	} {
		if err := f.attendance.Upsert(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	if err := f.proc.Handle(ctx, queue.AttendanceChangedMessage("ada", "conf")); err != nil {
		t.Fatal(err)
	}
	if len(f.notices.notices) != 1 || f.notices.notices[0].RecipientID != "bob" {
		t.Fatalf("notices = %+v", f.notices.notices)
	}
	text := f.notices.notices[0].Text
	if !strings.Contains(text, "Ada lands at SFO around Mon Mar 10 14:00") || !strings.Contains(text, "GopherCon") {
		t.Fatalf("text = %q", text)
	}
}

func TestProcessorSkipsNonAttending(t *testing.T) {
	f := newFixture(t, "en")
	ctx := context.Background()
	if err := f.attendance.Upsert(ctx, attendance.Record{UserID: "ada", EventID: "conf"}); err != nil {
		t.Fatal(err)
	}
	if err := f.proc.Handle(ctx, queue.AttendanceChangedMessage("ada", "conf")); err != nil {
		t.Fatal(err)
	}
	if err := f.proc.Handle(ctx, queue.AttendanceChangedMessage("ghost", "conf")); err != nil {
		t.Fatal(err)
	}
	if len(f.notices.notices) != 0 {
		t.Fatalf("unexpected notices %+v", f.notices.notices)
	}
}

func TestProcessorRejectsUnknownType(t *testing.T) {
	f := newFixture(t, "en")
	err := f.proc.Handle(context.Background(), queue.Message{Type: "checkin", Body: []byte(`"1"`)})
	if !errors.Is(err, ErrUnknownMessage) {
		t.Fatalf("err = %v", err)
	}
}
