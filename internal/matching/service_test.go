package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"rideshare/internal/apperrors"
	"rideshare/internal/attendance"
	"rideshare/internal/profile"
)

type failingProfiles struct{}

func (failingProfiles) GetByIDs(context.Context, []string) ([]profile.Profile, error) {
	return nil, errors.New("profiles offline")
}

func seedTrip(t *testing.T) *attendance.MemoryStore {
	t.Helper()
	store := attendance.NewMemoryStore()
	for _, rec := range []attendance.Record{
		{UserID: "A", EventID: "E", Attending: true,
			Arrival:   &attendance.Leg{Airport: "SFO", Time: at(0)},
			Departure: &attendance.Leg{Airport: "SJC", Time: at(48 * time.Hour)}},
		{UserID: "B", EventID: "E", Attending: true,
			Arrival: &attendance.Leg{Airport: "SFO", Time: at(20 * time.Minute)}},
		{UserID: "C", EventID: "E", Attending: true,
			Departure: &attendance.Leg{Airport: "SJC", Time: at(48*time.Hour - 10*time.Minute)}},
	} {
		if err := store.Upsert(context.Background(), rec); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func TestServiceForUser(t *testing.T) {
	store := seedTrip(t)
	profiles := profile.NewMemoryStore()
	name := "Bea"
	if _, err := profiles.Upsert(context.Background(), profile.Profile{UserID: "B", DisplayName: &name}); err != nil {
		t.Fatal(err)
	}
	svc := NewService(store, NewMatcher(store, zerolog.Nop()), NewEnricher(profiles, 2))

	got, err := svc.ForUser(context.Background(), "A", "E")
	if err != nil {
		t.Fatal(err)
	}
	if got.Arrival.Err != nil || len(got.Arrival.Matches) != 1 || got.Arrival.Matches[0].UserID != "B" {
		t.Fatalf("arrival = %+v", got.Arrival)
	}
	if got.Arrival.Matches[0].Profile == nil || *got.Arrival.Matches[0].Profile.DisplayName != "Bea" {
		t.Fatal("arrival match not enriched")
	}
	if got.Departure.Err != nil || len(got.Departure.Matches) != 1 || got.Departure.Matches[0].UserID != "C" {
		t.Fatalf("departure = %+v", got.Departure)
	}
	if got.Departure.Matches[0].Profile != nil {
		t.Fatal("C has no profile and should stay nil")
	}
}

func TestServiceForUserWithoutRecord(t *testing.T) {
	store := seedTrip(t)
	svc := NewService(store, NewMatcher(store, zerolog.Nop()), NewEnricher(profile.NewMemoryStore(), 1))
	got, err := svc.ForUser(context.Background(), "nobody", "E")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Arrival.Skipped || !got.Departure.Skipped {
		t.Fatalf("expected both directions skipped, got %+v", got)
	}
}

func TestServiceEnrichmentFailureIsPerDirection(t *testing.T) {
	store := seedTrip(t)
	svc := NewService(store, NewMatcher(store, zerolog.Nop()), NewEnricher(failingProfiles{}, 1))
	got, err := svc.ForUser(context.Background(), "A", "E")
	if err != nil {
		t.Fatal(err)
	}
	for name, d := range map[string]DirectionMatches{"arrival": got.Arrival, "departure": got.Departure} {
		if !errors.Is(d.Err, apperrors.ErrEnrichmentFailed) || d.Matches != nil {
			t.Fatalf("%s = %+v, want enrichment failure", name, d)
		}
	}
}

func TestServiceQueryFailureLeavesOtherDirection(t *testing.T) {
	store := seedTrip(t)
	matcher := NewMatcher(directionSource{failing: attendance.Arrival, inner: store}, zerolog.Nop())
	svc := NewService(store, matcher, NewEnricher(profile.NewMemoryStore(), 1))
	got, err := svc.ForUser(context.Background(), "A", "E")
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(got.Arrival.Err, apperrors.ErrMatchQueryFailed) {
		t.Fatalf("arrival err = %v", got.Arrival.Err)
	}
	if got.Departure.Err != nil || len(got.Departure.Matches) != 1 {
		t.Fatalf("departure = %+v", got.Departure)
	}
}
