// Package http implements the HTTP-facing access gateway: it parses
// requests, runs the per-request session sweep, resolves session tokens,
// and dispatches to the auth service and the sandboxed file store.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/services"
	"github.com/dmitrijs2005/gophdrive/internal/server/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	address string
	auth    *services.AuthService
	files   *storage.FileStore
	logger  logging.Logger
}

func NewServer(address string, l logging.Logger, auth *services.AuthService, files *storage.FileStore) *Server {
	return &Server{
		address: address,
		logger:  l.With("module", "http_server"),
		auth:    auth,
		files:   files,
	}
}

// Handler builds the chi router. The expired-session sweep runs before
// routing on every request; this ordering is part of the service contract,
// not an implementation detail.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.sweepSessions)

	r.Get("/ping", s.handlePing)
	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/files", func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/", s.handleList)
		r.Get("/{name}", s.handleDownload)
		r.Get("/{name}/info", s.handleStat)
		r.Put("/{name}", s.handleUpload)
		r.Delete("/{name}", s.handleDelete)
	})

	return r
}

func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
