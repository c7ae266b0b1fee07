package riderequest

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rideshare/internal/attendance"
)

// PostgresStore persists requests in the ride_requests table.
type PostgresStore struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

var _ Store = (*PostgresStore)(nil)

var requestColumns = []string{
	"id", "sender_id", "recipient_id", "event_id", "type",
	"sender_arrival_time", "sender_departure_time", "status", "created_at", "read",
}

func (s *PostgresStore) Insert(ctx context.Context, r Request) error {
	query, args, err := s.insertSQL(r)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert ride request: %w", err)
	}
	return nil
}

func (s *PostgresStore) insertSQL(r Request) (string, []any, error) {
	query, args, err := s.sb.Insert("ride_requests").
		Columns(requestColumns...).
		Values(r.ID, r.SenderID, r.RecipientID, r.EventID, string(r.Type),
			r.SenderArrivalTime, r.SenderDepartureTime, string(r.Status), r.CreatedAt, r.Read).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build ride request insert: %w", err)
	}
	return query, args, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Request, error) {
	query, args, err := s.sb.Select(requestColumns...).
		From("ride_requests").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ride request query: %w", err)
	}
	r, err := scanRequest(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query ride request: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) ListByRecipient(ctx context.Context, recipientID string, page Page) ([]Request, error) {
	return s.list(ctx, sq.Eq{"recipient_id": recipientID}, page)
}

func (s *PostgresStore) ListBySender(ctx context.Context, senderID string, page Page) ([]Request, error) {
	return s.list(ctx, sq.Eq{"sender_id": senderID}, page)
}

func (s *PostgresStore) listSQL(where sq.Eq, page Page) (string, []any, error) {
	page = page.normalize()
	query, args, err := s.sb.Select(requestColumns...).
		From("ride_requests").
		Where(where).
		OrderBy("created_at DESC", "id").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset)).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build ride request list: %w", err)
	}
	return query, args, nil
}

func (s *PostgresStore) list(ctx context.Context, where sq.Eq, page Page) ([]Request, error) {
	query, args, err := s.listSQL(where, page)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ride requests: %w", err)
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ride request: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (Request, error) {
	var (
		r           Request
		typ, status string
	)
	if err := row.Scan(&r.ID, &r.SenderID, &r.RecipientID, &r.EventID, &typ,
		&r.SenderArrivalTime, &r.SenderDepartureTime, &status, &r.CreatedAt, &r.Read); err != nil {
		return Request{}, err
	}
	r.Type = attendance.Direction(typ)
	r.Status = Status(status)
	return r, nil
}
