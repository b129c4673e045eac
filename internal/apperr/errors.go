// Package apperr defines sentinel errors shared across featlint packages.
package apperr

import "errors"

var (
	// ErrNotFound marks a required path or record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists marks an output target that would be overwritten.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNoSession marks an automation session that has not been started.
	ErrNoSession = errors.New("session not started")
)
