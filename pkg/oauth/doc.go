// Package oauth provides OAuth2 authorization code flow backends for federated
// sign-in providers.
//
// This package includes a Provider interface and concrete implementations for Google
// and Facebook, plus Flow, which tracks a single pending authorization between
// opening the provider's page and receiving its redirect.
//
// # Features
//
//   - Provider interface for pluggable OAuth2 implementations
//   - Google OAuth2 with email verification and OpenID ID token passthrough
//   - Facebook Login over the Graph API
//   - PKCE for public (secret-less) clients
//   - Token refresh for silent session restore
//   - Functional options for custom HTTP clients (testing, custom transports)
//   - Configuration structs with env tags for environment-based setup
//   - Sentinel errors with "oauth:" prefix for consistent error handling
//
// # Usage
//
//	provider, err := oauth.NewGoogleProvider(oauth.GoogleConfig{
//		ClientID:    os.Getenv("GOOGLE_OAUTH_CLIENT_ID"),
//		RedirectURL: "http://127.0.0.1:8765/callback",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	flow := oauth.NewFlow()
//	auth, err := flow.Begin()
//	if err != nil {
//		return err
//	}
//	openBrowser(provider.AuthCodeURL(auth.State, auth.AuthCodeOptions()...))
//
//	// elsewhere, the redirect handler calls flow.Resolve(r.URL)
//
//	redirect, err := flow.Wait(ctx)
//	if err != nil {
//		return err
//	}
//	if err := redirect.Err(); err != nil {
//		return err
//	}
//	token, err := provider.Exchange(ctx, redirect.Code, "", auth.ExchangeOptions()...)
//	if err != nil {
//		return err
//	}
//	user, err := provider.FetchUserInfo(ctx, token)
//
// # Testing
//
// Use WithHTTPClient to inject a test transport for unit testing:
//
//	provider, err := oauth.NewGoogleProvider(cfg, oauth.WithHTTPClient(ts.Client()))
//
// # Error Handling
//
// The package provides sentinel errors for specific failure modes:
//
//   - ErrMissingClientID: Constructor called without client ID
//   - ErrEmailNotVerified: Google reports unverified email
//   - ErrFetchFailed: HTTP request to provider failed
//   - ErrNilResponse: Provider returned nil HTTP response
//   - ErrRequestFailed: Provider returned non-OK HTTP status
//   - ErrDecodeFailed: Failed to decode provider JSON response
//   - ErrFlowInProgress, ErrFlowCancelled, ErrNoPendingFlow: Flow lifecycle
//
// Errors reported through the redirect URL are returned as *RedirectError:
//
//	var rerr *oauth.RedirectError
//	if errors.As(err, &rerr) && rerr.UserDenied() {
//		// user closed the dialog
//	}
//
// # Security
//
//   - Flow generates a fresh state and PKCE verifier per authorization and
//     only accepts redirects carrying that state
//   - Use loopback or HTTPS redirect URIs
//   - Store tokens in the keychain, never in preferences
package oauth
