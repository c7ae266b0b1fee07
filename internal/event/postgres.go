package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists events; airports are a JSONB array.
type PostgresStore struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

var _ Store = (*PostgresStore)(nil)

var eventColumns = []string{"id", "name", "location", "city", "state", "start_date", "end_date", "description", "airports"}

func (s *PostgresStore) upcomingSQL(now time.Time) (string, []any, error) {
	return s.sb.Select(eventColumns...).
		From("events").
		Where(sq.GtOrEq{"end_date": now}).
		OrderBy("end_date", "start_date", "id").
		ToSql()
}

func (s *PostgresStore) ListUpcoming(ctx context.Context, now time.Time) ([]Event, error) {
	query, args, err := s.upcomingSQL(now)
	if err != nil {
		return nil, fmt.Errorf("build events query: %w", err)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Event, error) {
	query, args, err := s.sb.Select(eventColumns...).From("events").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build event query: %w", err)
	}
	e, err := scanEvent(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query event: %w", err)
	}
	return &e, nil
}

func (s *PostgresStore) Save(ctx context.Context, e Event) (Event, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	airports, err := json.Marshal(nonNil(e.Airports))
	if err != nil {
		return Event{}, fmt.Errorf("encode airports: %w", err)
	}
	query, args, err := s.sb.Insert("events").
		Columns(eventColumns...).
		Values(e.ID, e.Name, e.Location, e.City, e.State, e.StartDate, e.EndDate, e.Description, airports).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			location = EXCLUDED.location,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			description = EXCLUDED.description,
			airports = EXCLUDED.airports`).
		ToSql()
	if err != nil {
		return Event{}, fmt.Errorf("build event upsert: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return Event{}, fmt.Errorf("save event: %w", err)
	}
	return e, nil
}

func scanEvent(row pgx.Row) (Event, error) {
	var (
		e        Event
		airports []byte
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Location, &e.City, &e.State,
		&e.StartDate, &e.EndDate, &e.Description, &airports); err != nil {
		return Event{}, err
	}
	if len(airports) > 0 {
		if err := json.Unmarshal(airports, &e.Airports); err != nil {
			return Event{}, fmt.Errorf("decode airports: %w", err)
		}
	}
	return e, nil
}

func nonNil(a []Airport) []Airport {
	if a == nil {
		return []Airport{}
	}
	return a
}
