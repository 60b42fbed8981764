// Package common defines shared constants and sentinel errors used across
// the transfery server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Certificate errors (invalid, malformed or expired certificate).
	ErrInvalidCertificate = errors.New("invalid certificate")

	// Upload lifecycle errors.
	ErrUploadSessionNotFound = errors.New("upload session not found")
)
