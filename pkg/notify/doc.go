// Package notify is a small in-process publish/subscribe hub.
//
// The Apple provider publishes CredentialRevoked on the hub when the platform
// reports a revoked credential. Applications subscribe to react, typically by
// returning to their sign-in screen:
//
//	hub := notify.Default()
//	hub.Subscribe(notify.CredentialRevoked, screen, func(string) {
//		screen.ShowSignIn()
//	})
//
// Delivery is synchronous and recovers handler panics, logging them through
// the hub's logger.
package notify
