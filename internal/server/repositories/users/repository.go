// Package users declares the server-side repository contract for the
// credential store.
package users

import (
	"context"
	"time"
)

// User is a registered account. Passwords are stored and compared as
// opaque strings; the service intentionally performs no hashing.
type User struct {
	Login     string
	Password  string
	CreatedAt time.Time
}

// Repository defines operations for creating and verifying user accounts.
type Repository interface {
	// Create inserts a new user row. Uniqueness of the login is checked
	// at insert time; implementations must return common.ErrorAlreadyExists
	// when the login is already taken.
	Create(ctx context.Context, user *User) error

	// Verify succeeds iff a row exists with exactly matching login and
	// password. Implementations must return common.ErrorNotFound when no
	// such row exists, without distinguishing an unknown login from a
	// wrong password.
	Verify(ctx context.Context, login string, password string) error
}
