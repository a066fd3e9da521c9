// Package internal provides the authentication coordinator behind socialauth.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/socialauth" instead, which re-exports the public API.
//
// # Model
//
// A Coordinator holds an ordered registry of providers keyed by provider.Kind
// and one active session pointer. The pointer is persisted through a
// session.Store so a relaunch resumes the same provider:
//
//	NoSession --SignIn/SignUp/RestoreSessionExplicit(k)--> Active(k)
//	Active(k) --RestoreSession--> Active(k)
//	Active(k) --SignIn(k')--> Active(k')
//	Active(k) --SignOut/InvalidateOnExternalError--> NoSession
//
// Switching to another provider leaves the previous provider's own session in
// place; only the pointer moves.
//
// # Consistency
//
// On success the kind is saved to the store before the pointer moves and
// before the credential is returned. On failure neither changes and the
// provider's error is returned unchanged. A store failure is reported as an
// error matching session.ErrStorage.
//
// # Concurrency
//
// SignIn, SignUp, RestoreSession and RestoreSessionExplicit share a single
// in-flight slot. A second call fails immediately with provider.ErrBusy; calls
// are never queued. Store writes and pointer updates are serialized.
// SignOut and InvalidateOnExternalError clear only the session they started
// with, so a sign-in that commits while a sign-out is in progress stays active.
//
// HandleCallback offers a redirect to the provider running the in-flight
// operation first, so a federated sign-in can complete before its provider is
// active, and then to the active provider.
//
// # Observability
//
// Pass a logger built with logger.DefaultExtractors to get provider and
// operation attributes on every record. WithMetrics registers:
//
//   - socialauth_operations_total{operation, provider, result}
//   - socialauth_active_session{provider}
package internal
