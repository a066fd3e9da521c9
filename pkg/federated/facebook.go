package federated

import (
	"errors"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/socialauth/pkg/oauth"
	"github.com/dmitrymomot/socialauth/pkg/provider"
)

// FacebookKeychainSuffix namespaces the Facebook keychain service.
const FacebookKeychainSuffix = ".FacebookSignIn"

// NewFacebook creates the Facebook provider. Setup requires SetupConfig.FacebookAppID.
func NewFacebook(opts ...Option) *Provider {
	return newProvider(variant{
		kind:          provider.KindFacebook,
		suffix:        FacebookKeychainSuffix,
		newBackend:    newFacebookBackend,
		redirectError: facebookRedirectError,
		authToken:     facebookAuthToken,
	}, opts)
}

func newFacebookBackend(cfg provider.SetupConfig, o *options) (oauth.Provider, error) {
	return oauth.NewFacebookProvider(oauth.FacebookConfig{
		AppID:       cfg.FacebookAppID,
		AppSecret:   o.clientSecret,
		RedirectURL: cfg.RedirectURL,
		Scopes:      o.scopes,
	}, o.oauthOpts...)
}

// Facebook distinguishes a dismissed dialog (user_denied) from declined permissions.
func facebookRedirectError(e *oauth.RedirectError) error {
	switch {
	case e.UserDenied():
		return errors.Join(provider.ErrCancelled, e)
	case e.AccessDenied():
		return errors.Join(provider.ErrPermissionDeclined, e)
	default:
		return provider.SignInFailed(e)
	}
}

func facebookAuthToken(token *oauth2.Token, _ string) string {
	return token.AccessToken
}
