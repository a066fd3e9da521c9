package provider

import (
	"context"
)

// Provider is the uniform contract every identity source implements.
//
// Implementations own their native session and credential cache. All blocking
// operations take a context; cancelling it abandons the wait and surfaces as an
// error. A provider serves at most one interactive operation at a time and
// rejects a second one with ErrBusy.
type Provider interface {
	// CurrentIdentity returns the provider's cached credential without
	// blocking, independent of which provider the coordinator considers active.
	CurrentIdentity() (Credential, bool)

	// HasPreviousSignIn asks the provider's native session store whether a
	// session exists. It may round-trip to an OS service.
	HasPreviousSignIn(ctx context.Context) bool

	// Setup configures the provider. It is idempotent and returns a
	// *SetupError when required configuration is missing.
	Setup(cfg SetupConfig) error

	// SignIn runs the provider's interactive flow and returns exactly one result.
	SignIn(ctx context.Context, req SignInRequest) (Credential, error)

	// SignOut clears the native session and any cached credential.
	// Signing out twice succeeds both times.
	SignOut(ctx context.Context) (bool, error)

	// RestoreSession silently re-authenticates from a stored native session.
	// Returns an error matching ErrSessionRestore when none exists.
	RestoreSession(ctx context.Context) (Credential, error)

	// HandleCallback lets the provider consume a platform redirect.
	// Returns true when the provider claimed it.
	HandleCallback(cb Callback) bool

	// InvalidateOnExternalError clears the local session without network calls.
	InvalidateOnExternalError()
}

// SignUpProvider is a Provider that can also create accounts.
// Sign-up capability is declared at registration time.
type SignUpProvider interface {
	Provider

	// SignUp creates an account and signs it in.
	SignUp(ctx context.Context, req SignUpRequest) (Credential, error)
}

// Presenter is the UI boundary used by interactive providers.
// Present shows the given authorization URL to the user (browser, web view,
// system sheet) and returns once it has been handed off. The outcome arrives
// separately through the provider's HandleCallback.
type Presenter interface {
	Present(ctx context.Context, authURL string) error
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc func(ctx context.Context, authURL string) error

// Present calls f(ctx, authURL).
func (f PresenterFunc) Present(ctx context.Context, authURL string) error {
	return f(ctx, authURL)
}
