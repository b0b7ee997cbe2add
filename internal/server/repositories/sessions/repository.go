// Package sessions declares the server-side repository contract for the
// session store.
package sessions

import (
	"context"
	"time"
)

// Session is a single-slot bearer session row. At most one non-expired
// row exists per login; a new login replaces all prior rows.
type Session struct {
	SessionID string
	Login     string
	Expires   time.Time
}

// Repository defines operations over the sessions table.
type Repository interface {
	// Put upserts a session row.
	Put(ctx context.Context, session *Session) error

	// Get looks up a session by its token. Implementations must return
	// common.ErrorNotFound when the token is absent.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Delete removes a session by its token and reports whether a row
	// was actually deleted. Deleting an absent token is not an error.
	Delete(ctx context.Context, sessionID string) (bool, error)

	// DeleteAllForLogin removes every session owned by the given login.
	DeleteAllForLogin(ctx context.Context, login string) error

	// DeleteExpired bulk-removes all rows with expires earlier than now
	// and returns the number of deleted rows.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
