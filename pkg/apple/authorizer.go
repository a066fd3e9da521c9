package apple

import (
	"context"
	"strings"

	"github.com/dmitrymomot/socialauth/pkg/provider"
)

// Scope is an Apple ID authorization scope.
type Scope string

const (
	ScopeFullName Scope = "name"
	ScopeEmail    Scope = "email"
)

// Request describes one authorization round with the platform.
type Request struct {
	// Presenter anchors the system sheet. Nil for silent requests.
	Presenter provider.Presenter
	Scopes    []Scope
	// IncludePassword also offers saved passwords for the app's domain.
	IncludePassword bool
	// Silent asks the platform not to show UI.
	Silent bool
}

// PersonName holds the name components Apple returns on first authorization.
type PersonName struct {
	Given  string
	Middle string
	Family string
}

// String joins the non-empty components with spaces.
func (n PersonName) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{n.Given, n.Middle, n.Family} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// AppleIDCredential is the platform's Apple ID authorization result.
// Email and FullName are only present the first time the user authorizes the app.
type AppleIDCredential struct {
	FullName          PersonName
	User              string
	Email             string
	IdentityToken     string
	AuthorizationCode string
}

// PasswordCredential is a saved password picked by the user.
type PasswordCredential struct {
	User     string
	Password string
}

// Authorization carries exactly one of the two credential types.
type Authorization struct {
	AppleID  *AppleIDCredential
	Password *PasswordCredential
}

// Authorizer performs the platform authorization.
// Errors should be *AuthorizationError so they map onto provider errors.
type Authorizer interface {
	Authorize(ctx context.Context, req Request) (Authorization, error)
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(ctx context.Context, req Request) (Authorization, error)

// Authorize calls f(ctx, req).
func (f AuthorizerFunc) Authorize(ctx context.Context, req Request) (Authorization, error) {
	return f(ctx, req)
}

// CredentialState is the platform's view of a user's Apple ID credential.
type CredentialState int

const (
	StateNotFound CredentialState = iota
	StateAuthorized
	StateRevoked
	StateTransferred
)

// StateChecker asks the platform for the credential state of a user.
type StateChecker interface {
	CredentialState(ctx context.Context, userID string) (CredentialState, error)
}

// StateCheckerFunc adapts a function to the StateChecker interface.
type StateCheckerFunc func(ctx context.Context, userID string) (CredentialState, error)

// CredentialState calls f(ctx, userID).
func (f StateCheckerFunc) CredentialState(ctx context.Context, userID string) (CredentialState, error) {
	return f(ctx, userID)
}
