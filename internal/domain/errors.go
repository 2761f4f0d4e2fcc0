package domain

import "errors"

var (
	// ErrNotFound is returned when a session does not exist or does not
	// belong to the caller. Ownership failures map to the same error so
	// the API never leaks whether a foreign session exists.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for caller mistakes such as empty
	// message content.
	ErrValidation = errors.New("validation failed")
)
