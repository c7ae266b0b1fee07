package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists attendance records in Postgres. Absent legs are stored as NULL
// in both columns of the leg.
type PostgresStore struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

// NewPostgresStore creates a store on top of a pgx pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

var _ Store = (*PostgresStore)(nil)

var recordColumns = []string{
	"user_id", "event_id", "attending",
	"arrival_airport", "arrival_time", "departure_airport", "departure_time",
	"user_name", "user_photo_url", "updated_at",
}

func (s *PostgresStore) Get(ctx context.Context, userID, eventID string) (*Record, error) {
	query, args, err := s.sb.Select(recordColumns...).
		From("attendance").
		Where(sq.Eq{"user_id": userID, "event_id": eventID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build attendance query: %w", err)
	}
	rec, err := scanRecord(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	return &rec, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, rec Record) error {
	query, args, err := s.upsertSQL(rec)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

func (s *PostgresStore) upsertSQL(rec Record) (string, []any, error) {
	arrAirport, arrTime := legValues(rec.Arrival)
	depAirport, depTime := legValues(rec.Departure)
	query, args, err := s.sb.Insert("attendance").
		Columns(recordColumns...).
		Values(rec.UserID, rec.EventID, rec.Attending,
			arrAirport, arrTime, depAirport, depTime,
			rec.UserName, rec.UserPhotoURL, rec.UpdatedAt).
		Suffix(`ON CONFLICT (user_id, event_id) DO UPDATE SET
			attending = EXCLUDED.attending,
			arrival_airport = EXCLUDED.arrival_airport,
			arrival_time = EXCLUDED.arrival_time,
			departure_airport = EXCLUDED.departure_airport,
			departure_time = EXCLUDED.departure_time,
			user_name = EXCLUDED.user_name,
			user_photo_url = EXCLUDED.user_photo_url,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build attendance upsert: %w", err)
	}
	return query, args, nil
}

func (s *PostgresStore) FindTravelers(ctx context.Context, q TravelerQuery) ([]Record, error) {
	query, args, err := s.travelersSQL(q)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query travelers: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan traveler: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) travelersSQL(q TravelerQuery) (string, []any, error) {
	airportCol, timeCol, err := legColumns(q.Direction)
	if err != nil {
		return "", nil, err
	}
	b := s.sb.Select(recordColumns...).
		From("attendance").
		Where(sq.Eq{"event_id": q.EventID, "attending": true, airportCol: q.Airport}).
		Where(sq.GtOrEq{timeCol: q.From}).
		Where(sq.LtOrEq{timeCol: q.To})
	if q.ExcludeUserID != "" {
		b = b.Where(sq.NotEq{"user_id": q.ExcludeUserID})
	}
	query, args, err := b.OrderBy(timeCol, "user_id").ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build travelers query: %w", err)
	}
	return query, args, nil
}

func legColumns(d Direction) (airport, at string, err error) {
	switch d {
	case Arrival:
		return "arrival_airport", "arrival_time", nil
	case Departure:
		return "departure_airport", "departure_time", nil
	}
	return "", "", fmt.Errorf("unknown direction %q", d)
}

func legValues(leg *Leg) (*string, *time.Time) {
	if leg == nil {
		return nil, nil
	}
	airport, at := leg.Airport, leg.Time
	return &airport, &at
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec                    Record
		arrAirport, depAirport *string
		arrTime, depTime       *time.Time
	)
	if err := row.Scan(&rec.UserID, &rec.EventID, &rec.Attending,
		&arrAirport, &arrTime, &depAirport, &depTime,
		&rec.UserName, &rec.UserPhotoURL, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	rec.Arrival = legFromColumns(arrAirport, arrTime)
	rec.Departure = legFromColumns(depAirport, depTime)
	return rec, nil
}

func legFromColumns(airport *string, at *time.Time) *Leg {
	if airport == nil || at == nil {
		return nil
	}
	return &Leg{Airport: *airport, Time: at.UTC()}
}
