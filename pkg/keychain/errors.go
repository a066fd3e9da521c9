package keychain

import "errors"

var (
	// ErrNotFound is returned when a key does not exist.
	ErrNotFound = errors.New("keychain: item not found")

	// ErrNoKeychain is returned when a scope has no backing keychain.
	ErrNoKeychain = errors.New("keychain: not configured")

	// ErrAccess is returned when the backing store cannot be read or written.
	ErrAccess = errors.New("keychain: access failed")
)
