package apple

import (
	"github.com/dmitrymomot/socialauth/pkg/keychain"
	"github.com/dmitrymomot/socialauth/pkg/notify"
)

// Option configures the Apple provider.
type Option func(*Provider)

// WithAuthorizer sets the platform authorizer. Required.
func WithAuthorizer(a Authorizer) Option {
	return func(p *Provider) {
		p.authorizer = a
	}
}

// WithStateChecker sets the credential state checker used by HasPreviousSignIn.
// Without one, a stored user identifier counts as a previous sign-in.
func WithStateChecker(c StateChecker) Option {
	return func(p *Provider) {
		p.checker = c
	}
}

// WithKeychain sets where the user identifier, cached profile and saved
// password are stored. Default: an in-memory keychain.
func WithKeychain(kc keychain.Keychain) Option {
	return func(p *Provider) {
		if kc != nil {
			p.kc = kc
		}
	}
}

// WithHub sets the hub used both for the platform's revocation signal and
// for publishing notify.CredentialRevoked. Default: notify.Default().
func WithHub(h *notify.Hub) Option {
	return func(p *Provider) {
		if h != nil {
			p.hub = h
		}
	}
}
