// Package api implements the HTTP client for the GophDrive server API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/gophdrive/internal/common"
)

// Client talks to the GophDrive server and keeps the current session token.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{}}
}

// Token returns the session token obtained by Register or Login.
func (c *Client) Token() string {
	return c.token
}

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

// FileInfo mirrors the server's stat response.
type FileInfo struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// statusError maps transport statuses back to the shared sentinel errors.
func statusError(code int) error {
	switch code {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return common.ErrorInvalidSession
	case http.StatusBadRequest:
		return common.ErrorInvalidFilename
	case http.StatusForbidden:
		return common.ErrorAccessDenied
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrorAlreadyExists
	default:
		return fmt.Errorf("server returned status %d", code)
	}
}

func (c *Client) authenticate(ctx context.Context, path string, req authRequest) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusConflict:
		return "", common.ErrorAlreadyExists
	case http.StatusUnauthorized:
		return "", common.ErrorInvalidCredentials
	default:
		return "", statusError(resp.StatusCode)
	}

	var out sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}

	c.token = out.SessionID
	return out.SessionID, nil
}

// Register creates an account and stores the issued session token.
func (c *Client) Register(ctx context.Context, login, password string) error {
	_, err := c.authenticate(ctx, "/register", authRequest{Type: "reg", Login: login, Password: password})
	return err
}

// Login authenticates and stores the issued session token. Any session the
// user had on another device is evicted by the server.
func (c *Client) Login(ctx context.Context, login, password string) error {
	_, err := c.authenticate(ctx, "/login", authRequest{Type: "login", Login: login, Password: password})
	return err
}

// Logout invalidates the current session token. It succeeds even when the
// token is already gone on the server.
func (c *Client) Logout(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/logout", nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode); err != nil {
		return err
	}

	c.token = ""
	return nil
}

// List returns the names of the user's stored files.
func (c *Client) List(ctx context.Context) ([]string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/files", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode); err != nil {
		return nil, err
	}

	var out listResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// Stat returns metadata of a single stored file.
func (c *Client) Stat(ctx context.Context, name string) (*FileInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/files/"+name+"/info", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode); err != nil {
		return nil, err
	}

	out := &FileInfo{}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upload stores the content under the given name, overwriting any
// previous version.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) error {
	req, err := c.newRequest(ctx, http.MethodPut, "/files/"+name, r)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return statusError(resp.StatusCode)
}

// Download streams the named file into w.
func (c *Client) Download(ctx context.Context, name string, w io.Writer) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/files/"+name, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode); err != nil {
		return err
	}

	_, err = io.Copy(w, resp.Body)
	return err
}

// Delete removes the named file.
func (c *Client) Delete(ctx context.Context, name string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/files/"+name, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return statusError(resp.StatusCode)
}
