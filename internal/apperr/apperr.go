// Package apperr defines the error kinds shared by repositories, services and
// handlers. Callers wrap them with fmt.Errorf("...: %w", apperr.ErrX) and test
// with errors.Is.
package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)
