package attendance

import (
	"strings"
	"testing"
	"time"
)

func TestTravelersSQL(t *testing.T) {
	s := NewPostgresStore(nil)
	from := time.Date(2025, 3, 10, 13, 30, 0, 0, time.UTC)
	to := from.Add(time.Hour)

	query, args, err := s.travelersSQL(TravelerQuery{
		EventID: "ev1", Direction: Departure, Airport: "SFO", From: from, To: to, ExcludeUserID: "alice",
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"departure_airport = $", "departure_time >= $", "departure_time <= $", "user_id <> $", "ORDER BY departure_time, user_id"} {
		if !strings.Contains(query, want) {
			t.Errorf("query %q missing %q", query, want)
		}
	}
	if len(args) != 6 {
		t.Fatalf("args = %v", args)
	}

	if _, _, err := s.travelersSQL(TravelerQuery{Direction: "sideways"}); err == nil {
		t.Fatal("unknown direction must fail")
	}
}

func TestUpsertSQLWritesNullLegs(t *testing.T) {
	s := NewPostgresStore(nil)
	query, args, err := s.upsertSQL(Record{UserID: "u", EventID: "e", Attending: false, UpdatedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(query, "ON CONFLICT (user_id, event_id)") {
		t.Fatalf("not an upsert: %s", query)
	}
	for i := 3; i <= 6; i++ {
		switch v := args[i].(type) {
		case *string:
			if v != nil {
				t.Fatalf("arg %d should be NULL, got %v", i, *v)
			}
		case *time.Time:
			if v != nil {
				t.Fatalf("arg %d should be NULL, got %v", i, *v)
			}
		default:
			t.Fatalf("arg %d has unexpected type %T", i, v)
		}
	}
}
