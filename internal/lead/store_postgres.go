package lead

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"leadflow/pkg/platform/sentinel"
	txcontext "leadflow/pkg/platform/tx"
)

// PostgresStore persists leads in PostgreSQL. Mutations join any transaction
// carried in context so they commit atomically with their audit entry.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const leadColumns = `id, name, email, phone, company, source, status, owner_id, deleted, created_at`

func (s *PostgresStore) Insert(ctx context.Context, l Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		l.ID, l.Name, l.Email, l.Phone, l.Company, l.Source, l.Status, l.OwnerID, l.Deleted, l.CreatedAt)
	if err != nil {
		return sentinel.Unavailable("insert lead", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (Lead, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE deleted = false`
	var args []any
	if filter.OwnerID != "" {
		query += ` AND owner_id = $1`
		args = append(args, filter.OwnerID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sentinel.Unavailable("list leads", err)
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		l, err := scanLeadRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, sentinel.Unavailable("iterate lead rows", err)
	}
	return out, nil
}

// UpdatePartial applies only the supplied fields. Tombstoned rows are not
// eligible targets, matching the lifecycle's visibility rule.
func (s *PostgresStore) UpdatePartial(ctx context.Context, id string, fields Fields) (Lead, error) {
	sets := make([]string, 0, 7)
	args := make([]any, 0, 8)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if fields.Name != nil {
		add("name", *fields.Name)
	}
	if fields.Email != nil {
		add("email", *fields.Email)
	}
	if fields.Phone != nil {
		add("phone", *fields.Phone)
	}
	if fields.Company != nil {
		add("company", *fields.Company)
	}
	if fields.Source != nil {
		add("source", *fields.Source)
	}
	if fields.Status != nil {
		add("status", string(*fields.Status))
	}
	if fields.OwnerID != nil {
		add("owner_id", *fields.OwnerID)
	}
	if len(sets) == 0 {
		return s.FindByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE leads SET %s
		WHERE id = $%d AND deleted = false
		RETURNING `+leadColumns,
		strings.Join(sets, ", "), len(args))

	return scanLead(s.execer(ctx).QueryRowContext(ctx, query, args...))
}

func (s *PostgresStore) Tombstone(ctx context.Context, id string) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE leads SET deleted = true WHERE id = $1 AND deleted = false`, id)
	if err != nil {
		return sentinel.Unavailable("tombstone lead", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return sentinel.Unavailable("tombstone lead", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanLead(row *sql.Row) (Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Company, &l.Source,
		&l.Status, &l.OwnerID, &l.Deleted, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lead{}, sentinel.ErrNotFound
		}
		return Lead{}, sentinel.Unavailable("scan lead", err)
	}
	return l, nil
}

func scanLeadRows(rows *sql.Rows) (Lead, error) {
	var l Lead
	err := rows.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Company, &l.Source,
		&l.Status, &l.OwnerID, &l.Deleted, &l.CreatedAt)
	if err != nil {
		return Lead{}, sentinel.Unavailable("scan lead row", err)
	}
	return l, nil
}
