package riderequest

import (
	"strings"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"

	"rideshare/internal/attendance"
)

func TestInsertSQLKeepsNullTimes(t *testing.T) {
	s := NewPostgresStore(nil)
	query, args, err := s.insertSQL(Request{
		ID: "r1", SenderID: "a", RecipientID: "b", EventID: "e", Type: attendance.Arrival,
		Status: StatusPending, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(query, "INSERT INTO ride_requests") || strings.Contains(query, "ON CONFLICT") {
		t.Fatalf("unexpected insert %q", query)
	}
	if len(args) != len(requestColumns) {
		t.Fatalf("args = %d, want %d", len(args), len(requestColumns))
	}
	if ts, ok := args[5].(*time.Time); !ok || ts != nil {
		t.Fatalf("sender_arrival_time arg = %#v, want typed nil", args[5])
	}
	if args[7] != "pending" || args[9] != false {
		t.Fatalf("status/read args = %v/%v", args[7], args[9])
	}
}

func TestListSQLPaginates(t *testing.T) {
	s := NewPostgresStore(nil)
	query, args, err := s.listSQL(sq.Eq{"recipient_id": "bob"}, Page{Limit: 1000, Offset: -3})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"recipient_id = $1", "ORDER BY created_at DESC, id", "LIMIT 200", "OFFSET 0"} {
		if !strings.Contains(query, want) {
			t.Errorf("query %q missing %q", query, want)
		}
	}
	if len(args) != 1 {
		t.Fatalf("args = %v", args)
	}
}
