package federated

import (
	"net/http"

	"github.com/dmitrymomot/socialauth/pkg/keychain"
	"github.com/dmitrymomot/socialauth/pkg/oauth"
)

// Option configures a federated Provider.
type Option func(*options)

type options struct {
	keychain     keychain.Keychain
	backend      oauth.Provider
	clientSecret string
	scopes       []string
	oauthOpts    []oauth.Option
}

// WithKeychain sets where tokens and cached profile fields are stored.
// Default: an in-memory keychain.
func WithKeychain(kc keychain.Keychain) Option {
	return func(o *options) {
		if kc != nil {
			o.keychain = kc
		}
	}
}

// WithHTTPClient sets the HTTP client used for token and profile requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.oauthOpts = append(o.oauthOpts, oauth.WithHTTPClient(c))
	}
}

// WithScopes overrides the default scopes requested at sign-in.
func WithScopes(scopes ...string) Option {
	return func(o *options) {
		o.scopes = scopes
	}
}

// WithClientSecret configures a confidential client.
// Public clients leave it empty and rely on PKCE.
func WithClientSecret(secret string) Option {
	return func(o *options) {
		o.clientSecret = secret
	}
}

// WithBackend replaces the OAuth backend built during Setup.
// Setup still validates the configuration.
func WithBackend(b oauth.Provider) Option {
	return func(o *options) {
		o.backend = b
	}
}
