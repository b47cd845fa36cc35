// Package apperr holds the sentinel errors shared across the content layers.
package apperr

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidPath        = errors.New("invalid path")
	ErrValidation         = errors.New("validation failed")
	ErrNotAllowed         = errors.New("operation not allowed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
)
