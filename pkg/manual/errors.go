package manual

import "errors"

var (
	// ErrNoDirectory is the cause of the SetupError returned without a Directory.
	ErrNoDirectory = errors.New("manual: no account directory configured")

	// ErrAccountExists is returned by Register for a taken username.
	ErrAccountExists = errors.New("manual: account already exists")

	// ErrMissingUsername is returned when the username is empty.
	ErrMissingUsername = errors.New("manual: username is required")

	// ErrWeakPassword is returned when the password is shorter than MinPasswordLength.
	ErrWeakPassword = errors.New("manual: password is too short")

	// ErrDirectory is returned when the directory backend cannot be read or written.
	ErrDirectory = errors.New("manual: account directory failure")
)
