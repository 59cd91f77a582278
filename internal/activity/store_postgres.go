package activity

import (
	"context"
	"database/sql"

	"leadflow/pkg/platform/sentinel"
	txcontext "leadflow/pkg/platform/tx"
)

// PostgresStore persists activities in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Insert(ctx context.Context, a Activity) error {
	query := `
		INSERT INTO activities (id, lead_id, user_id, type, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		a.ID, a.LeadID, a.UserID, a.Type, a.Note, a.CreatedAt)
	if err != nil {
		return sentinel.Unavailable("insert activity", err)
	}
	return nil
}

func (s *PostgresStore) ListByLead(ctx context.Context, leadID string) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lead_id, user_id, type, note, created_at
		FROM activities
		WHERE lead_id = $1
		ORDER BY created_at DESC, id DESC
	`, leadID)
	if err != nil {
		return nil, sentinel.Unavailable("list activities", err)
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.LeadID, &a.UserID, &a.Type, &a.Note, &a.CreatedAt); err != nil {
			return nil, sentinel.Unavailable("scan activity row", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, sentinel.Unavailable("iterate activity rows", err)
	}
	return out, nil
}

func (s *PostgresStore) CountByType(ctx context.Context) (map[Type]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM activities GROUP BY type`)
	if err != nil {
		return nil, sentinel.Unavailable("count activities", err)
	}
	defer rows.Close()

	counts := make(map[Type]int)
	for rows.Next() {
		var t Type
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, sentinel.Unavailable("scan activity count", err)
		}
		counts[t] = n
	}
	if err := rows.Err(); err != nil {
		return nil, sentinel.Unavailable("iterate activity counts", err)
	}
	return counts, nil
}
