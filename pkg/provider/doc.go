// Package provider defines the contract shared by every sign-in provider and
// the provider-agnostic model they produce.
//
// # Model
//
// A Kind identifies a provider ("googleLogin", "facebookLogin", ...). Providers
// map their native authentication result into a Credential at the moment of
// success; the mapping is provider-specific but always yields a complete value.
//
// # Contract
//
// Provider covers setup, interactive sign-in, silent restore, sign-out,
// platform callback handling and local invalidation. Providers that can create
// accounts also implement SignUpProvider and are registered as such explicitly.
//
// # Errors
//
// Setup failures are *SetupError (matching ErrSetup); unknown kinds are
// *UnavailableError (matching ErrProviderUnavailable). Provider-specific
// variants such as ErrCancelled are passed to callers unchanged:
//
//	cred, err := coord.SignIn(ctx, provider.KindGoogle, req)
//	if errors.Is(err, provider.ErrCancelled) {
//		return nil // user closed the sheet
//	}
package provider
