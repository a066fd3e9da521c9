// Package federated implements the Google and Facebook sign-in providers on
// top of the OAuth2 backends in pkg/oauth.
//
// Sign-in opens the provider's authorization page through the request's
// Presenter and blocks until the redirect arrives through HandleCallback,
// the context is cancelled, or the user signs out. Only one authorization
// can be pending per provider; a second SignIn fails with provider.ErrBusy.
//
// Tokens are kept in the keychain under
// KeychainServicePrefix + ".ANAuthLogin" + ".GoogleSignIn" (or ".FacebookSignIn"),
// together with the last seen email and display name, which are substituted
// when a later profile omits them.
//
//	google := federated.NewGoogle(federated.WithKeychain(keychain.NewSystem()))
//	if err := google.Setup(provider.SetupConfig{
//		GoogleClientID: clientID,
//		RedirectURL:    "http://127.0.0.1:8765/callback",
//	}); err != nil {
//		return err
//	}
package federated
