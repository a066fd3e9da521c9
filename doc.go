// Package socialauth provides one sign-in interface over several identity
// providers (Google, Facebook, Apple, and username/password) with a single
// persisted active session.
//
// A Coordinator keeps a registry of providers and remembers which one the user
// last signed in with. On relaunch the remembered provider is resumed and
// RestoreSession re-authenticates it silently.
//
// # Quick Start
//
//	dir, err := manual.OpenFileDirectory("accounts.yaml")
//	if err != nil {
//	    return err
//	}
//
//	auth, err := socialauth.New(ctx, session.NewFileStore("prefs.json"),
//	    socialauth.WithProvider(socialauth.KindGoogle, federated.NewGoogle()),
//	    socialauth.WithProvider(socialauth.KindFacebook, federated.NewFacebook()),
//	    socialauth.WithProvider(socialauth.KindApple, apple.New(apple.WithAuthorizer(authz))),
//	    socialauth.WithSignUpProvider(socialauth.KindManual, manual.New(dir)),
//	)
//	if err != nil {
//	    return err
//	}
//
//	err = auth.Setup(socialauth.SetupConfig{
//	    GoogleClientID:        os.Getenv("GOOGLE_CLIENT_ID"),
//	    FacebookAppID:         os.Getenv("FACEBOOK_APP_ID"),
//	    RedirectURL:           "http://127.0.0.1:8765/callback",
//	    KeychainServicePrefix: "com.example.app",
//	})
//
// # Sessions
//
// Exactly one session is active at a time. SignIn, SignUp and
// RestoreSessionExplicit make their provider active; SignOut and
// InvalidateOnExternalError clear it. Signing in with another provider moves
// the active session without signing the previous provider out.
//
//	if auth.ActiveKind() != socialauth.KindNone {
//	    cred, err := auth.RestoreSession(ctx)
//	    if errors.Is(err, socialauth.ErrSessionRestore) {
//	        // ask the user to sign in again
//	    }
//	}
//
// Only one sign-in or restore runs at a time. Overlapping calls fail with
// ErrBusy instead of waiting.
//
// # Revocation
//
// Providers publish CredentialRevoked on the hub when a credential is revoked
// outside the application:
//
//	auth.Revocations().Subscribe(socialauth.CredentialRevoked, ui, func(string) {
//	    auth.InvalidateOnExternalError(ctx)
//	})
//
// WithInvalidateOnRevocation wires this automatically.
//
// # Errors
//
// Provider errors are returned unchanged. The coordinator adds:
//
//   - ErrProviderUnavailable: no provider registered for the kind
//   - ErrSignInFailed: RestoreSession without an active session
//   - ErrBusy: another operation is in progress
//   - ErrStorage: the session store could not be written
//
// # Packages
//
//   - pkg/provider: provider contract, credential model, error taxonomy
//   - pkg/session: session stores (memory, file, Redis)
//   - pkg/federated: Google and Facebook providers
//   - pkg/apple: Sign in with Apple provider
//   - pkg/manual: username/password provider with sign-up
//   - pkg/keychain: secure storage for provider credentials
//   - pkg/notify: revocation broadcast
//   - pkg/logger: structured logging with Sentry support
package socialauth
