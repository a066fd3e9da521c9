// Package apple implements Sign in with Apple as a provider.
//
// The platform interaction is behind two small interfaces: Authorizer runs the
// authorization sheet and StateChecker reports whether a user's credential is
// still valid. Apple returns the user's name and email only on the first
// authorization, so both are cached in the keychain and substituted later.
//
// After an Apple ID sign-in the provider listens on its hub for
// PlatformRevoked. When the platform bridge publishes it (or calls
// CredentialRevoked directly), the cached profile is removed and
// notify.CredentialRevoked is published for the application.
package apple
