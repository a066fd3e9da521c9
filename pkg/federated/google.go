package federated

import (
	"errors"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/socialauth/pkg/oauth"
	"github.com/dmitrymomot/socialauth/pkg/provider"
)

// GoogleKeychainSuffix namespaces the Google keychain service.
const GoogleKeychainSuffix = ".GoogleSignIn"

// NewGoogle creates the Google provider. Setup requires SetupConfig.GoogleClientID.
// Authorization requests offline access so RestoreSession can refresh tokens.
func NewGoogle(opts ...Option) *Provider {
	return newProvider(variant{
		kind:          provider.KindGoogle,
		suffix:        GoogleKeychainSuffix,
		newBackend:    newGoogleBackend,
		redirectError: googleRedirectError,
		authToken:     googleAuthToken,
		authOptions:   []oauth2.AuthCodeOption{oauth2.AccessTypeOffline},
	}, opts)
}

func newGoogleBackend(cfg provider.SetupConfig, o *options) (oauth.Provider, error) {
	return oauth.NewGoogleProvider(oauth.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: o.clientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       o.scopes,
	}, o.oauthOpts...)
}

// Google reports a dismissed consent screen as access_denied without a reason.
func googleRedirectError(e *oauth.RedirectError) error {
	if e.AccessDenied() {
		return errors.Join(provider.ErrCancelled, e)
	}
	return provider.SignInFailed(e)
}

// The OpenID ID token identifies the user to backends; the access token is a fallback.
func googleAuthToken(token *oauth2.Token, idToken string) string {
	if idToken != "" {
		return idToken
	}
	return token.AccessToken
}
