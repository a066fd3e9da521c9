package apple

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/socialauth/pkg/provider"
)

var (
	// ErrNoAuthorizer is the cause of the SetupError returned when no Authorizer is configured.
	ErrNoAuthorizer = errors.New("apple: no authorizer configured")

	// ErrUserMismatch is returned when the identity token's subject differs from the credential user.
	ErrUserMismatch = errors.New("apple: identity token subject does not match user")

	// ErrMalformedToken is returned when the identity token cannot be parsed.
	ErrMalformedToken = errors.New("apple: malformed identity token")

	// ErrEmptyAuthorization is returned when the platform returned no credential.
	ErrEmptyAuthorization = errors.New("apple: authorization carries no credential")
)

// ErrorCode mirrors the platform's authorization error codes.
type ErrorCode int

const (
	CodeUnknown ErrorCode = iota + 1000
	CodeCanceled
	CodeInvalidResponse
	CodeNotHandled
	CodeFailed
)

// AuthorizationError is reported by an Authorizer.
type AuthorizationError struct {
	Err  error
	Code ErrorCode
}

func (e *AuthorizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("apple: authorization error %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("apple: authorization error %d", e.Code)
}

func (e *AuthorizationError) Unwrap() error {
	return e.Err
}

// mapError turns an Authorizer error into the provider error taxonomy.
func mapError(err error) error {
	var aerr *AuthorizationError
	if !errors.As(err, &aerr) {
		return provider.SignInFailed(err)
	}
	switch aerr.Code {
	case CodeCanceled:
		return errors.Join(provider.ErrCancelled, err)
	case CodeFailed:
		return errors.Join(provider.ErrAuthorizationFailed, err)
	case CodeInvalidResponse:
		return errors.Join(provider.ErrInvalidResponse, err)
	case CodeNotHandled:
		return errors.Join(provider.ErrNotHandled, err)
	case CodeUnknown:
		return errors.Join(provider.ErrNoAppleID, err)
	default:
		return provider.SignInFailed(err)
	}
}
