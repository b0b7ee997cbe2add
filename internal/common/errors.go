// Package common defines shared constants and sentinel errors used across
// client and server layers of GophDrive. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal           = errors.New("internal error")
	ErrorInvalidCredentials = errors.New("invalid login or password")

	// Session errors (missing or expired token, indistinguishable to callers).
	ErrorInvalidSession = errors.New("invalid session")

	// File store errors.
	ErrorInvalidFilename = errors.New("invalid filename")
	ErrorAccessDenied    = errors.New("access denied")
)
