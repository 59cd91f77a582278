package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"leadflow/internal/identity"
	"leadflow/pkg/platform/sentinel"
)

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed user store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Insert(ctx context.Context, u User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return sentinel.Unavailable("insert user", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, created_at FROM users WHERE id = $1`, id))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, created_at FROM users WHERE lower(email) = lower($1)`, email))
}

func (s *PostgresStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, password_hash, role, created_at FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, sentinel.Unavailable("list users", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

func (s *PostgresStore) ListByRoles(ctx context.Context, roles ...identity.Role) ([]User, error) {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, password_hash, role, created_at FROM users WHERE role = ANY($1) ORDER BY created_at, id`,
		pq.Array(names))
	if err != nil {
		return nil, sentinel.Unavailable("list users by role", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

func (s *PostgresStore) scanOne(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, sentinel.ErrNotFound
		}
		return User{}, sentinel.Unavailable("scan user", err)
	}
	return u, nil
}

func scanAll(rows *sql.Rows) ([]User, error) {
	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, sentinel.Unavailable("scan user row", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, sentinel.Unavailable("iterate user rows", err)
	}
	return out, nil
}
