package provider

import (
	"net/url"
)

// SetupConfig is handed to every registered provider at application start.
// Each provider reads only the fields it needs and reports a SetupError when
// a required one is missing.
type SetupConfig struct {
	// Application is an opaque handle to the embedding application.
	Application any
	// LaunchOptions are passed through untouched to providers that want them.
	LaunchOptions map[string]any

	GoogleClientID string
	FacebookAppID  string
	// RedirectURL is where federated providers expect the authorization
	// redirect to land. It is delivered back through HandleCallback.
	RedirectURL string

	// KeychainServicePrefix namespaces every provider's keychain service name.
	KeychainServicePrefix string
}

// SignInRequest carries the caller-side context of an interactive sign-in.
type SignInRequest struct {
	// Presenter shows provider UI. Providers that need one fail with a
	// SetupError when it is nil.
	Presenter Presenter

	// Username and Password are used by credential-based providers only.
	Username string
	Password string
}

// SignUpRequest carries new-account parameters for sign-up capable providers.
type SignUpRequest struct {
	Attributes  map[string]string
	Username    string
	Password    string
	DisplayName string
	Email       string
}

// Callback is a platform redirect delivered to the application,
// e.g. the OAuth redirect URL after the user approved access.
type Callback struct {
	App     any
	URL     *url.URL
	Options map[string]any
}
