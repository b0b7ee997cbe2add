package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/go-chi/chi/v5"
)

type authRequest struct {
	Type     string `json:"type"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type listResponse struct {
	Files []string `json:"files"`
}

type fileInfoResponse struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps sandbox errors to transport statuses: bad filenames
// are rejected before any I/O, a path escaping the sandbox is access-denied
// (never reported as not-found), and anything unexpected is a generic 500.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorInvalidFilename):
		writeError(w, http.StatusBadRequest, "invalid filename")
	case errors.Is(err, common.ErrorAccessDenied):
		writeError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "file not found")
	default:
		s.logger.Error(r.Context(), err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {

	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Type != "reg" {
		writeError(w, http.StatusBadRequest, "invalid request type")
		return
	}

	token, err := s.auth.Register(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			writeError(w, http.StatusConflict, "user already registered")
			return
		}
		s.logger.Error(r.Context(), err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.logger.Info(r.Context(), "Registered", "login", req.Login)
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {

	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Type != "login" {
		writeError(w, http.StatusBadRequest, "invalid request type")
		return
	}

	token, err := s.auth.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid login or password")
			return
		}
		s.logger.Error(r.Context(), err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{SessionID: token})
}

// handleLogout invalidates the supplied token. Logging out an unknown or
// already-invalidated token is a soft "not_found" status, never an error.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {

	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusBadRequest, "missing session token")
		return
	}

	found, err := s.auth.Invalidate(r.Context(), token)
	if err != nil {
		s.logger.Error(r.Context(), err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := "ok"
	if !found {
		status = "not_found"
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: status})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {

	login, ok := loginFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid session")
		return
	}

	names, err := s.files.List(login)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Files: names})
}

func (s *Server) handleStat(w http.ResponseWriter, r *http.Request) {

	login, ok := loginFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid session")
		return
	}

	info, err := s.files.Stat(login, chi.URLParam(r, "name"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, fileInfoResponse{Name: info.Name, Size: info.Size, Modified: info.Modified})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {

	login, ok := loginFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid session")
		return
	}
	defer r.Body.Close()

	if err := s.files.Write(login, chi.URLParam(r, "name"), r.Body); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {

	login, ok := loginFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid session")
		return
	}

	rc, info, err := s.files.Open(login, chi.URLParam(r, "name"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, info.Name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Error(r.Context(), "download interrupted", "file", info.Name, "error", err.Error())
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {

	login, ok := loginFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid session")
		return
	}

	if err := s.files.Delete(login, chi.URLParam(r, "name")); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}
