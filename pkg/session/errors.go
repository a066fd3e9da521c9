package session

import "errors"

// Session store errors.
var (
	// ErrNotFound is returned when no provider is remembered.
	ErrNotFound = errors.New("session: not found")

	// ErrStorage is returned when the backing store cannot be read or written.
	ErrStorage = errors.New("session: storage failure")

	// ErrInvalidKind is returned when saving an empty or "none" kind.
	ErrInvalidKind = errors.New("session: invalid provider kind")
)
