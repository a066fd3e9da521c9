package keychain

import (
	"errors"
)

// BaseService is appended to the configured prefix for every service name.
const BaseService = ".ANAuthLogin"

// Keychain stores small secrets grouped by service name.
// Implementations must be safe for concurrent use.
type Keychain interface {
	// Get returns the value stored under key.
	// Returns ErrNotFound if the key does not exist.
	Get(service, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(service, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(service, key string) error
}

// ServiceName builds a namespaced service name:
// prefix + ".ANAuthLogin" + suffix.
func ServiceName(prefix, suffix string) string {
	return prefix + BaseService + suffix
}

// Scope binds a keychain to one service name.
type Scope struct {
	kc      Keychain
	service string
}

// NewScope returns a Scope for service.
func NewScope(kc Keychain, service string) Scope {
	return Scope{kc: kc, service: service}
}

// Service returns the bound service name.
func (s Scope) Service() string {
	return s.service
}

// Get returns the value for key, or ErrNotFound.
func (s Scope) Get(key string) (string, error) {
	if s.kc == nil {
		return "", ErrNotFound
	}
	return s.kc.Get(s.service, key)
}

// Lookup returns the value for key and whether it was present.
// Read errors other than ErrNotFound are reported as absent.
func (s Scope) Lookup(key string) (string, bool) {
	v, err := s.Get(key)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

// Set stores value for key. An empty value deletes the key.
func (s Scope) Set(key, value string) error {
	if s.kc == nil {
		return ErrNoKeychain
	}
	if value == "" {
		return s.kc.Delete(s.service, key)
	}
	return s.kc.Set(s.service, key, value)
}

// Delete removes the given keys, returning the joined errors.
func (s Scope) Delete(keys ...string) error {
	if s.kc == nil {
		return nil
	}
	var errs []error
	for _, k := range keys {
		if err := s.kc.Delete(s.service, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
