// Package services contains the business-logic layer between the transport
// and the repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/dbx"
	"github.com/dmitrijs2005/gophdrive/internal/server/config"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/users"
	"github.com/google/uuid"
)

// newSessionToken is a seam for testing token generation.
var newSessionToken = uuid.NewString

// AuthService implements account registration and the session lifecycle:
// creation, validation, invalidation, and the expired-session sweep.
// At most one valid session exists per login; issuing a new one atomically
// replaces all prior sessions for that login.
type AuthService struct {
	db                      *sql.DB
	repomanager             repomanager.RepositoryManager
	sessionValidityDuration time.Duration
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                      db,
		repomanager:             m,
		sessionValidityDuration: cfg.SessionValidityDuration,
	}
}

// replaceSession deletes every session for the login and inserts a fresh one
// using the same transactional handle, so the single-session invariant holds
// even under concurrent logins.
func (s *AuthService) replaceSession(ctx context.Context, tx dbx.DBTX, login string) (string, error) {
	repo := s.repomanager.Sessions(tx)

	if err := repo.DeleteAllForLogin(ctx, login); err != nil {
		return "", fmt.Errorf("error deleting previous sessions: %w", err)
	}

	token := newSessionToken()
	session := &sessions.Session{
		SessionID: token,
		Login:     login,
		Expires:   time.Now().Add(s.sessionValidityDuration),
	}
	if err := repo.Put(ctx, session); err != nil {
		return "", fmt.Errorf("error creating session: %w", err)
	}

	return token, nil
}

// Register creates a new user and issues its first session token in a single
// transaction. A taken login yields common.ErrorAlreadyExists; the uniqueness
// check happens inside the insert, not as a separate existence query.
func (s *AuthService) Register(ctx context.Context, login string, password string) (string, error) {

	var token string

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user := &users.User{Login: login, Password: password}

		if err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return err
		}

		var err error
		token, err = s.replaceSession(ctx, tx, login)
		return err
	})

	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return "", common.ErrorAlreadyExists
		}
		return "", fmt.Errorf("error registering user: %w", err)
	}

	return token, nil
}

// Login verifies credentials and issues a new session token, atomically
// evicting any session the user already had. A lookup miss returns
// common.ErrorInvalidCredentials without distinguishing an unknown login
// from a wrong password.
func (s *AuthService) Login(ctx context.Context, login string, password string) (string, error) {

	if err := s.repomanager.Users(s.db).Verify(ctx, login, password); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorInvalidCredentials
		}
		return "", common.ErrorInternal
	}

	var token string

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		token, err = s.replaceSession(ctx, tx, login)
		return err
	})

	if err != nil {
		return "", fmt.Errorf("error creating session: %w", err)
	}

	return token, nil
}

// Validate resolves a session token to its owning login. It succeeds only
// while expires is strictly in the future; expired and unknown tokens are
// both reported as common.ErrorInvalidSession.
func (s *AuthService) Validate(ctx context.Context, sessionID string) (string, error) {

	session, err := s.repomanager.Sessions(s.db).Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorInvalidSession
		}
		return "", common.ErrorInternal
	}

	if !session.Expires.After(time.Now()) {
		return "", common.ErrorInvalidSession
	}

	return session.Login, nil
}

// Invalidate deletes the session if present and reports whether it existed.
// Logging out an unknown token is a soft status, not an error.
func (s *AuthService) Invalidate(ctx context.Context, sessionID string) (bool, error) {

	found, err := s.repomanager.Sessions(s.db).Delete(ctx, sessionID)
	if err != nil {
		return false, common.ErrorInternal
	}

	return found, nil
}

// SweepExpired bulk-removes all sessions whose expiry has passed. The
// gateway calls it once per inbound request before dispatching, which
// bounds staleness of the sessions table to one request's worth of delay.
func (s *AuthService) SweepExpired(ctx context.Context) error {
	if _, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx, time.Now()); err != nil {
		return err
	}
	return nil
}
