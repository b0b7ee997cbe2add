package http

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const loginKey ctxKey = "login"

// sweepSessions removes expired sessions before any request is routed,
// which bounds staleness of the session table to one request's worth of
// delay. A failed sweep is logged but does not reject the request.
func (s *Server) sweepSessions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.auth.SweepExpired(r.Context()); err != nil {
			s.logger.Warn(r.Context(), "session sweep failed", "error", err.Error())
		}
		next.ServeHTTP(w, r)
	})
}

// requireSession resolves the bearer token to its owning login and stores
// it in the request context. Missing, unknown, and expired tokens all get
// the same unauthorized response.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "invalid session")
			return
		}

		login, err := s.auth.Validate(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid session")
			return
		}

		ctx := context.WithValue(r.Context(), loginKey, login)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the session token from the Authorization header.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, prefix))
}

// loginFromContext returns the login placed into the context by
// requireSession.
func loginFromContext(ctx context.Context) (string, bool) {
	login, ok := ctx.Value(loginKey).(string)
	return login, ok
}
