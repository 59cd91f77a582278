package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"leadflow/pkg/platform/sentinel"
	txcontext "leadflow/pkg/platform/tx"
)

// PostgresStore persists the trail in PostgreSQL. Append joins any
// transaction carried in context so the entry commits atomically with the
// lead mutation it records.
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

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	var meta []byte
	if entry.Meta != nil {
		var err error
		meta, err = json.Marshal(entry.Meta)
		if err != nil {
			return fmt.Errorf("marshal audit meta: %w", err)
		}
	}
	query := `
		INSERT INTO lead_history (id, lead_id, action, actor_id, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		entry.ID, entry.LeadID, entry.Action, entry.ActorID, meta, entry.CreatedAt)
	if err != nil {
		return sentinel.Unavailable("insert lead history", err)
	}
	return nil
}

func (s *PostgresStore) ListByLead(ctx context.Context, leadID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lead_id, action, actor_id, meta, created_at
		FROM lead_history
		WHERE lead_id = $1
		ORDER BY created_at DESC, id DESC
	`, leadID)
	if err != nil {
		return nil, sentinel.Unavailable("list lead history", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var meta []byte
		if err := rows.Scan(&e.ID, &e.LeadID, &e.Action, &e.ActorID, &meta, &e.CreatedAt); err != nil {
			return nil, sentinel.Unavailable("scan history row", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Meta); err != nil {
				return nil, fmt.Errorf("unmarshal history meta: %w", err)
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, sentinel.Unavailable("iterate history rows", err)
	}
	return out, nil
}
