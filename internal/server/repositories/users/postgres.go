package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/dbx"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint
// violation (class 23, integrity constraint violation).
const uniqueViolation = "23505"

// PostgresRepository implements the credential store over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user row. The uniqueness check happens inside the
// insert itself, so there is no race window between checking and inserting.
func (r *PostgresRepository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (login, password)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, user.Login, user.Password); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Verify checks that a row with exactly matching login and password exists.
// A miss returns common.ErrorNotFound regardless of whether the login or
// the password was wrong.
func (r *PostgresRepository) Verify(ctx context.Context, login string, password string) error {
	query := `
		SELECT login FROM users
		WHERE login = $1 AND password = $2
	`
	var got string
	if err := r.db.QueryRowContext(ctx, query, login, password).Scan(&got); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
