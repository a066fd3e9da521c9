package federated

import "errors"

var (
	// ErrNotConfigured is the cause of the SetupError returned before Setup succeeded.
	ErrNotConfigured = errors.New("federated: provider is not set up")

	// ErrMissingUserID is returned when the profile carries no user identifier.
	ErrMissingUserID = errors.New("federated: profile has no user id")

	// ErrCorruptToken is returned when the stored token cannot be decoded.
	ErrCorruptToken = errors.New("federated: stored token is corrupt")
)
