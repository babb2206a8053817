package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidArgument indicates a malformed or out-of-range input
	// that slipped past the outer boundary.
	ErrInvalidArgument = errors.New("invalid argument")
)
