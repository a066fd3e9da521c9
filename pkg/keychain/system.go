package keychain

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// System stores items in the operating system's credential store
// (macOS Keychain, Secret Service on Linux, Windows Credential Manager).
type System struct{}

// NewSystem returns a keychain backed by the OS credential store.
func NewSystem() *System {
	return &System{}
}

// Get returns the value stored under key.
func (System) Get(service, key string) (string, error) {
	v, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", errors.Join(ErrAccess, err)
	}
	return v, nil
}

// Set stores value under key.
func (System) Set(service, key, value string) error {
	if err := keyring.Set(service, key, value); err != nil {
		return errors.Join(ErrAccess, err)
	}
	return nil
}

// Delete removes key.
func (System) Delete(service, key string) error {
	if err := keyring.Delete(service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return errors.Join(ErrAccess, err)
	}
	return nil
}

var _ Keychain = System{}
