package provider

import (
	"errors"
	"fmt"
)

// Coordinator-level errors.
var (
	// ErrSetup is matched by every *SetupError.
	ErrSetup = errors.New("provider: setup failed")

	// ErrSignInFailed is returned bare when no session or provider applies,
	// and joined with the cause when a provider flow fails.
	ErrSignInFailed = errors.New("provider: could not sign in, please try again")

	// ErrProviderUnavailable is matched by every *UnavailableError.
	ErrProviderUnavailable = errors.New("provider: sign in type unavailable")

	// ErrSessionRestore is returned when no restorable native session exists.
	ErrSessionRestore = errors.New("provider: could not restore session, please re-login")

	// ErrBusy is returned when an interactive operation is already outstanding.
	ErrBusy = errors.New("provider: another sign in operation is in progress")
)

// Provider-specific errors. The coordinator passes these through unchanged.
var (
	ErrCancelled           = errors.New("provider: cancelled by user")
	ErrPermissionDeclined  = errors.New("provider: permission is declined")
	ErrProfileFetch        = errors.New("provider: could not fetch user profile")
	ErrCredentialRevoked   = errors.New("provider: credential revoked")
	ErrInvalidResponse     = errors.New("provider: no valid auth tokens in response")
	ErrAuthorizationFailed = errors.New("provider: authorization failed")
	ErrNotHandled          = errors.New("provider: authorization not handled")
	ErrNoAppleID           = errors.New("provider: no Apple ID signed in on this device")
	ErrKeychain            = errors.New("provider: no valid auth tokens can be read from keychain")
	ErrInvalidCredentials  = errors.New("provider: invalid username or password")
)

// SetupError reports missing configuration for one provider.
type SetupError struct {
	Err  error
	Kind Kind
}

// NewSetupError returns a SetupError for kind with an optional cause.
func NewSetupError(kind Kind, cause error) *SetupError {
	return &SetupError{Kind: kind, Err: cause}
}

func (e *SetupError) Error() string {
	msg := "Other SDK setup failed"
	switch e.Kind {
	case KindGoogle, KindFacebook:
		msg = e.Kind.label() + " SDK setup failed"
	case KindApple:
		msg = "Apple Sign In setup failed"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is reports ErrSetup as a match.
func (e *SetupError) Is(target error) bool {
	return target == ErrSetup
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// UnavailableError reports a kind that has no registered provider.
type UnavailableError struct {
	Kind Kind
}

func (e *UnavailableError) Error() string {
	if l := e.Kind.label(); l != "" && e.Kind != KindManual {
		return l + " sign in is unavailable."
	}
	return "Sign in unavailable."
}

// Is reports ErrProviderUnavailable as a match.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrProviderUnavailable
}

// SignInFailed joins ErrSignInFailed with cause.
// A nil cause returns the bare sentinel.
func SignInFailed(cause error) error {
	if cause == nil {
		return ErrSignInFailed
	}
	return errors.Join(ErrSignInFailed, cause)
}
