package internal

import "errors"

var (
	// ErrInvalidRegistration is returned when a provider is registered with an
	// empty kind or a nil implementation.
	ErrInvalidRegistration = errors.New("socialauth: invalid provider registration")

	// ErrMetrics is returned by New when the coordinator metrics cannot be registered.
	ErrMetrics = errors.New("socialauth: metrics registration failed")
)
