package profile

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists profiles in the user_profiles table.
type PostgresStore struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

var _ Store = (*PostgresStore)(nil)

var profileColumns = []string{"user_id", "display_name", "photo_url", "email", "created_at", "last_login"}

func (s *PostgresStore) Upsert(ctx context.Context, p Profile) (Profile, error) {
	query, args, err := s.sb.Insert("user_profiles").
		Columns("user_id", "display_name", "photo_url", "email").
		Values(p.UserID, p.DisplayName, p.PhotoURL, p.Email).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			display_name = COALESCE(EXCLUDED.display_name, user_profiles.display_name),
			photo_url = COALESCE(EXCLUDED.photo_url, user_profiles.photo_url),
			email = COALESCE(EXCLUDED.email, user_profiles.email),
			last_login = NOW()
		RETURNING user_id, display_name, photo_url, email, created_at, last_login`).
		ToSql()
	if err != nil {
		return Profile{}, fmt.Errorf("build profile upsert: %w", err)
	}
	out, err := scanProfile(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return Profile{}, fmt.Errorf("upsert profile: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (*Profile, error) {
	query, args, err := s.sb.Select(profileColumns...).
		From("user_profiles").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build profile query: %w", err)
	}
	p, err := scanProfile(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) GetByIDs(ctx context.Context, ids []string) ([]Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := s.byIDsSQL(ids)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	out := make([]Profile, 0, len(ids))
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// byIDsSQL renders a bounded user_id IN (...) query.
func (s *PostgresStore) byIDsSQL(ids []string) (string, []any, error) {
	if len(ids) > MaxBatchSize {
		return "", nil, ErrBatchTooLarge
	}
	query, args, err := s.sb.Select(profileColumns...).
		From("user_profiles").
		Where(sq.Eq{"user_id": ids}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build profiles query: %w", err)
	}
	return query, args, nil
}

func (s *PostgresStore) SetPhotoURL(ctx context.Context, userID, url string) error {
	query, args, err := s.sb.Insert("user_profiles").
		Columns("user_id", "photo_url").
		Values(userID, url).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET photo_url = EXCLUDED.photo_url").
		ToSql()
	if err != nil {
		return fmt.Errorf("build photo update: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update photo: %w", err)
	}
	return nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.UserID, &p.DisplayName, &p.PhotoURL, &p.Email, &p.CreatedAt, &p.LastLogin)
	return p, err
}
