package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/dbx"
)

// PostgresRepository implements the session store over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Put upserts a session row keyed by its token.
func (r *PostgresRepository) Put(ctx context.Context, session *Session) error {
	query := `
		INSERT INTO sessions (session_id, login, expires)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id) DO UPDATE SET login = $2, expires = $3
	`
	if _, err := r.db.ExecContext(ctx, query, session.SessionID, session.Login, session.Expires); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Get returns the session row for the given token.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, sessionID string) (*Session, error) {
	query := `
		SELECT session_id, login, expires
		FROM sessions
		WHERE session_id = $1
	`
	session := &Session{}
	if err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&session.SessionID, &session.Login, &session.Expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return session, nil
}

// Delete removes a session by its token and reports whether a row existed.
func (r *PostgresRepository) Delete(ctx context.Context, sessionID string) (bool, error) {
	query := `
		DELETE FROM sessions
		WHERE session_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, sessionID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected > 0, nil
}

// DeleteAllForLogin removes every session owned by the given login.
func (r *PostgresRepository) DeleteAllForLogin(ctx context.Context, login string) error {
	query := `
		DELETE FROM sessions
		WHERE login = $1
	`
	if _, err := r.db.ExecContext(ctx, query, login); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteExpired bulk-removes rows whose expiry has passed.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM sessions
		WHERE expires < $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected, nil
}
